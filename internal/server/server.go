package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pfrost/cinelog/internal/catalog"
	"github.com/pfrost/cinelog/internal/handler"
	"github.com/pfrost/cinelog/internal/middleware"
	"github.com/pfrost/cinelog/internal/store"
	ws "github.com/pfrost/cinelog/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	movieH       *handler.MovieHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, catalogClient *catalog.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	movieStore := store.NewMovieStore(db)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		movieH:       handler.NewMovieHandler(movieStore, catalogClient, hub, logger.With("component", "movie")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /{$}", s.authH.HomePage)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("GET /logout", s.authH.Logout)
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /movies", s.movieH.List)
	mux.HandleFunc("POST /add", s.movieH.Add)
	mux.HandleFunc("POST /submit", s.movieH.Submit)
	mux.HandleFunc("POST /edit", s.movieH.Edit)
	mux.HandleFunc("POST /update", s.movieH.Update)
	mux.HandleFunc("POST /delete", s.movieH.Delete)

	// WebSocket for live list refresh
	mux.HandleFunc("GET /ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))
}
