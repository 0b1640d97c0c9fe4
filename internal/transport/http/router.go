package http

import (
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, wsServer *ws.Server, verifier httpmw.Verifier, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// WS endpoint authenticates itself via access_token
	r.Get("/ws", wsServer.HandleWS)

	// Logging stays off the WS route: the wrapper would hide http.Hijacker
	// from the upgrader.
	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.Logging)
		pr.Use(httpmw.Auth(verifier))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Get("/rooms/{id}/online", h.RoomOnline)
		pr.Get("/users/{id}/online", h.UserOnline)
		pr.Get("/stats", h.Stats)
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
