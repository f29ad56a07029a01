package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// RouterOptions carries the cross-cutting settings of the HTTP surface.
type RouterOptions struct {
	CORSOrigins []string
	Logger      logrus.FieldLogger
}

// NewRouter mounts the REST API, the image proxy and the websocket play loop.
func NewRouter(opts RouterOptions, api *APIHandler, proxy *ImageProxy, ws *WSHandler) http.Handler {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: opts.Logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// The websocket stays outside the timeout middleware; a round outlives 30s.
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(ar chi.Router) {
		ar.Use(middleware.Timeout(30 * time.Second))
		ar.Get("/topics", api.ListTopics)
		ar.Get("/topics/{topicID}/round", api.BuildRound)
		ar.Post("/score", api.Score)
		ar.Post("/cache/invalidate", api.InvalidateCache)
		ar.Post("/request-deck", api.RequestDeck)
		ar.Get("/image-proxy", proxy.ServeHTTP)
	})
	return r
}
