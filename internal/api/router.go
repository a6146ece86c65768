package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/isdelr/todo-manager-be/internal/api/handlers"
	"github.com/isdelr/todo-manager-be/internal/auth"
	"github.com/isdelr/todo-manager-be/internal/models"
	"github.com/isdelr/todo-manager-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	tokens *auth.TokenService,
	authService services.AuthServiceProvider,
	userService services.UserServiceProvider,
	todoService services.TodoServiceProvider,
	auditService services.AuditServiceProvider,
	corsOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack. Recoverer is the outermost catch-all: a
	// panic in a handler becomes a logged 500, never a leaked stack trace.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(authService, userService)
	todoHandler := handlers.NewTodoHandler(todoService)
	eventHandler := handlers.NewEventHandler(auditService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Group(func(r chi.Router) {
				r.Use(tokens.Middleware())
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/todo", func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Get("/", todoHandler.GetAll)
			r.Post("/", todoHandler.Create)
			r.Get("/search", todoHandler.Search)
			r.Get("/stats", todoHandler.Stats)
			r.Get("/category/{name}", todoHandler.GetByCategory)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", todoHandler.GetByID)
				r.Put("/", todoHandler.Update)
				r.Delete("/", todoHandler.Delete)
				r.Patch("/toggle", todoHandler.Toggle)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Use(auth.RequireRole(models.RoleAdmin))
			r.Get("/events", eventHandler.GetRecent)
		})
	})

	return r
}
