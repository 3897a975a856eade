package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matchguru/match-rooms-backend/internal/ws"
)

func SetupRoutes(api *API) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/rooms", api.ListRooms)
	r.Post("/session", api.CreateSession)

	// Session-gated routes
	r.Get("/session", api.GetSession)
	r.Delete("/session", api.DeleteSession)
	r.Get("/rooms/{roomID}", api.GetRoom)
	r.Post("/rooms/{roomID}/vote", api.CastVote)
	r.Post("/rooms/{roomID}/messages", api.PostMessage)
	r.Get("/ws", ws.Handler(api.Hub, api.Gate, api.Log))

	return r
}
