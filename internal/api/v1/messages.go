package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/planner/internal/domain"
	redisstore "github.com/gosuda/planner/internal/store/redis"
	"github.com/gosuda/planner/internal/wire"
)

type SendMessageInput struct {
	Body struct {
		Room     string     `json:"room" minLength:"1" maxLength:"100" doc:"Chat room name"`
		Message  string     `json:"message" minLength:"1" maxLength:"4000" doc:"Message text"`
		SenderID *uuid.UUID `json:"sender_id,omitempty" doc:"Sending user ID"`
	}
}

type SendMessageOutput struct {
	Body struct {
		Success   bool      `json:"success"`
		MessageID uuid.UUID `json:"message_id"`
	}
}

type GetMessagesInput struct {
	Room string `path:"room" doc:"Chat room name"`
}

type GetMessagesOutput struct {
	Body struct {
		Success  bool              `json:"success"`
		Messages []*domain.Message `json:"messages"`
	}
}

// RegisterMessageRoutes registers chat history routes. Messages posted over
// HTTP are also relayed to the room's realtime subscribers when pub is set.
// GET /get_messages returns at most historyLimit messages.
func RegisterMessageRoutes(api huma.API, store DataStore, pub Publisher, historyLimit int) {
	huma.Register(api, huma.Operation{
		OperationID: "send-message",
		Method:      http.MethodPost,
		Path:        "/send_message",
		Summary:     "Post a chat message to a room",
		Tags:        []string{"Messages"},
	}, func(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
		room, ok := wire.NormalizeRoom(input.Body.Room)
		if !ok {
			return nil, huma.Error422UnprocessableEntity("invalid room")
		}
		if !wire.ValidMessage(input.Body.Message) {
			return nil, huma.Error422UnprocessableEntity("invalid message")
		}

		var senderName string
		if input.Body.SenderID != nil {
			u, err := store.Users().GetByID(ctx, *input.Body.SenderID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, huma.Error404NotFound("sender not found")
				}
				return nil, huma.Error500InternalServerError("failed to validate sender", err)
			}
			senderName = u.Username
		}

		m := &domain.Message{
			ID:         uuid.New(),
			Room:       room,
			SenderID:   input.Body.SenderID,
			SenderName: senderName,
			Content:    input.Body.Message,
			Timestamp:  time.Now(),
		}

		if err := store.Messages().Create(ctx, m); err != nil {
			return nil, huma.Error500InternalServerError("failed to store message", err)
		}

		if pub != nil {
			relay(ctx, pub, m)
		}

		out := &SendMessageOutput{}
		out.Body.Success = true
		out.Body.MessageID = m.ID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-messages",
		Method:      http.MethodGet,
		Path:        "/get_messages/{room}",
		Summary:     "Get recent messages of a room",
		Tags:        []string{"Messages"},
	}, func(ctx context.Context, input *GetMessagesInput) (*GetMessagesOutput, error) {
		msgs, err := store.Messages().ListByRoom(ctx, input.Room, historyLimit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list messages", err)
		}
		if msgs == nil {
			msgs = []*domain.Message{}
		}

		out := &GetMessagesOutput{}
		out.Body.Success = true
		out.Body.Messages = msgs
		return out, nil
	})
}

// relay publishes m to its room. The message is already stored, so a
// publish failure is logged and not returned to the caller.
func relay(ctx context.Context, pub Publisher, m *domain.Message) {
	frame, err := wire.Encode(wire.EventMessage, wire.MessageEvent{
		ID:         m.ID,
		Room:       m.Room,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
		Timestamp:  m.Timestamp,
	})
	if err != nil {
		log.Error().Err(err).Str("room", m.Room).Msg("encode relayed message")
		return
	}
	if err := pub.Publish(ctx, redisstore.RoomChannel(m.Room), frame); err != nil {
		log.Warn().Err(err).Str("room", m.Room).Msg("relay message")
	}
}
