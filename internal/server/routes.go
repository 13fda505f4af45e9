package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/planner/internal/api/v1"
	"github.com/gosuda/planner/internal/api/ws"
)

func registerAPIRoutes(api huma.API, store v1.DataStore, backplane Backplane, historyLimit int) {
	v1.RegisterTaskRoutes(api, store)
	v1.RegisterMessageRoutes(api, store, backplane, historyLimit)
	v1.RegisterUserRoutes(api, store, backplane)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/ws", hub.ServeWS)
}
