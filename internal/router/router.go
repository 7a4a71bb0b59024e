package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"projecthub/internal/config"
	"projecthub/internal/handler"
	"projecthub/internal/middleware"
	"projecthub/internal/model"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Project *handler.ProjectHandler
	Audit   *handler.AuditHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, handlers Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", handlers.Auth.Register)
			auth.Post("/login", handlers.Auth.Login)
			auth.Post("/refresh-token", handlers.Auth.Refresh)
			auth.With(authMiddleware.RequireAuth).Post("/logout", handlers.Auth.Logout)
			auth.With(authMiddleware.RequireAuth).Get("/me", handlers.Auth.Me)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(authMiddleware.RequireAuth)
			users.With(authMiddleware.RequireRoles(model.RoleAdmin)).Get("/", handlers.User.List)
			users.Put("/{id}", handlers.User.Update)
			users.With(authMiddleware.RequireRoles(model.RoleAdmin)).Delete("/{id}", handlers.User.Delete)
		})

		api.Route("/projects", func(projects chi.Router) {
			projects.Use(authMiddleware.RequireAuth)
			projects.Post("/", handlers.Project.Create)
			projects.Get("/", handlers.Project.List)
			projects.Put("/{id}", handlers.Project.Update)
			projects.Delete("/{id}", handlers.Project.Delete)
		})

		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin)).Get("/audit", handlers.Audit.List)
	})

	return r
}
