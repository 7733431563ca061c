package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/pathfinder/internal/captcha"
	"github.com/terra-clan/pathfinder/internal/catalog"
	"github.com/terra-clan/pathfinder/internal/chat"
	"github.com/terra-clan/pathfinder/internal/config"
	"github.com/terra-clan/pathfinder/internal/filter"
	"github.com/terra-clan/pathfinder/internal/services"
	"github.com/terra-clan/pathfinder/internal/session"
)

// Deps are the services the HTTP layer routes to
type Deps struct {
	Catalog  *catalog.Loader
	Captcha  *captcha.Service
	Sessions *session.Manager
	Filters  *filter.Store
	Chat     *chat.Service
	Health   *services.Registry
}

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	catalog        *catalog.Loader
	captcha        *captcha.Service
	sessions       *session.Manager
	filters        *filter.Store
	chat           *chat.Service
	health         *services.Registry
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		config:         cfg,
		catalog:        deps.Catalog,
		captcha:        deps.Captcha,
		sessions:       deps.Sessions,
		filters:        deps.Filters,
		chat:           deps.Chat,
		health:         deps.Health,
		authMiddleware: NewAuthMiddleware(deps.Sessions),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// Websocket upgrades must not run under the request timeout
		r.With(s.authMiddleware.Authenticate).Get("/chat/ws", s.handleChatWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// Catalog (public)
			r.Get("/learning-paths", s.handleListLearningPaths)
			r.Get("/learning-paths/{id}", s.handleGetLearningPath)
			r.Get("/careers", s.handleListCareers)
			r.Get("/careers/{id}", s.handleGetCareer)

			// Captcha (public)
			r.Route("/captcha", func(r chi.Router) {
				r.Post("/", s.handleCreateCaptcha)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetCaptcha)
					r.Get("/image.svg", s.handleCaptchaImage)
					r.Get("/audio", s.handleCaptchaAudio)
					r.Post("/refresh", s.handleRefreshCaptcha)
					r.Post("/verify", s.handleVerifyCaptcha)
				})
			})

			r.Post("/auth/login", s.handleLogin)

			// Session routes
			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware.Authenticate)

				r.Post("/auth/logout", s.handleLogout)

				r.Route("/me", func(r chi.Router) {
					r.Get("/", s.handleMe)

					r.Get("/profile", s.handleGetProfile)
					r.Put("/profile", s.handleUpdateProfile)
					r.Post("/profile/{field}", s.handleAddProfileItem)
					r.Delete("/profile/{field}/{index}", s.handleRemoveProfileItem)

					r.Get("/filters", s.handleGetFilters)
					r.Post("/filters/toggle", s.handleToggleFilter)
					r.Put("/filters/query", s.handleSetFilterQuery)
					r.Delete("/filters", s.handleClearFilters)
					r.Get("/learning-paths", s.handleMyLearningPaths)
				})

				r.Get("/chat/messages", s.handleListMessages)
				r.Post("/chat/messages", s.handleSendMessage)
				r.Delete("/chat/messages", s.handleClearMessages)
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
