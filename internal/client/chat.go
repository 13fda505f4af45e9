package client

import (
	"context"

	"github.com/gosuda/planner/internal/realtime"
)

// ChatCommands forwards chat actions to the realtime connection.
type ChatCommands struct {
	rt *realtime.Client
}

// NewChatCommands wraps rt, which may be nil.
func NewChatCommands(rt *realtime.Client) *ChatCommands {
	return &ChatCommands{rt: rt}
}

func (cc *ChatCommands) SendMessage(ctx context.Context, room, message string) error {
	return cc.rt.SendMessage(ctx, room, message)
}

func (cc *ChatCommands) JoinRoom(ctx context.Context, room string) error {
	return cc.rt.JoinRoom(ctx, room)
}

func (cc *ChatCommands) LeaveRoom(ctx context.Context, room string) error {
	return cc.rt.LeaveRoom(ctx, room)
}
