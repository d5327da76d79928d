package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-app-api/internal/service"
	"github.com/BuzzLyutic/todo-app-api/pkg/respond"
)

// NewRouter собирает все маршруты сервиса
func NewRouter(authHandler *AuthHandler, taskHandler *TaskHandler, authService *service.AuthService, logger *zap.Logger, corsOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
	})

	authenticate := Authenticator(authService, logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(authenticate).Get("/me", authHandler.Me)
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/", taskHandler.Create)
		r.Get("/", taskHandler.List)
		r.Get("/{id}", taskHandler.Get)
		r.Patch("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
	})

	r.With(authenticate).Get("/api/stats", taskHandler.Stats)

	return r
}
