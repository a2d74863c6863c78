// Package httpapi exposes a read-only inspection surface over a lowered
// program's stored graph, grounded on the teacher's server/app.go and
// server/handlers.go (§13). Unlike the teacher's separate server module
// this is folded into the root module, since the new domain has no
// frontend SPA to serve alongside it.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/plume-oss/plume-driver/internal/store"
)

// App holds the HTTP handler's dependencies.
type App struct {
	store *store.Store
}

// NewApp creates an App reading from db.
func NewApp(db *store.Store) *App {
	return &App{store: db}
}

// Handler returns the HTTP handler: a chi router with recovery, RealIP,
// the teacher's permissive CORS middleware, and the read-only routes.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/methods", a.handleMethods)
		r.Get("/method", a.handleMethod)
		r.Get("/node", a.handleNode)
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
