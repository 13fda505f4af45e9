package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/planner/internal/domain"
	"github.com/gosuda/planner/internal/util"
)

type RegisterUserInput struct {
	Body struct {
		Username string `json:"username" minLength:"1" maxLength:"80" doc:"Unique display name"`
		Email    string `json:"email" maxLength:"254" doc:"Contact email"`
	}
}

type RegisterUserOutput struct {
	Body struct {
		Success bool         `json:"success"`
		User    *domain.User `json:"user"`
	}
}

// UserSummary is the public view of a user.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Online   bool      `json:"online"`
}

type ListUsersOutput struct {
	Body struct {
		Success bool          `json:"success"`
		Users   []UserSummary `json:"users"`
	}
}

// RegisterUserRoutes registers user routes. presence may be nil, in which
// case every user is reported offline.
func RegisterUserRoutes(api huma.API, store DataStore, presence Presence) {
	huma.Register(api, huma.Operation{
		OperationID: "register-user",
		Method:      http.MethodPost,
		Path:        "/register",
		Summary:     "Register a user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *RegisterUserInput) (*RegisterUserOutput, error) {
		username := strings.TrimSpace(input.Body.Username)
		if username == "" {
			return nil, huma.Error422UnprocessableEntity("username must not be blank")
		}
		if !util.IsValidEmail(input.Body.Email) {
			return nil, huma.Error422UnprocessableEntity("invalid email address")
		}

		u := &domain.User{
			ID:        uuid.New(),
			Username:  username,
			Email:     input.Body.Email,
			CreatedAt: time.Now(),
		}

		if err := store.Users().Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("username already taken")
			}
			return nil, huma.Error500InternalServerError("failed to register user", err)
		}

		out := &RegisterUserOutput{}
		out.Body.Success = true
		out.Body.User = u
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/get_users",
		Summary:     "List users",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
		users, err := store.Users().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list users", err)
		}

		var online map[uuid.UUID]bool
		if presence != nil {
			online, err = presence.Online(ctx)
			if err != nil {
				// Presence is advisory; the list is still useful without it.
				log.Warn().Err(err).Msg("presence lookup")
			}
		}

		out := &ListUsersOutput{}
		out.Body.Success = true
		out.Body.Users = make([]UserSummary, 0, len(users))
		for _, u := range users {
			out.Body.Users = append(out.Body.Users, UserSummary{
				ID:       u.ID,
				Username: u.Username,
				Online:   online[u.ID],
			})
		}
		return out, nil
	})
}
