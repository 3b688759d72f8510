package api

import (
	"net/http"
	"time"

	"sales_system/internal/api/handler"
	apiMiddleware "sales_system/internal/api/middleware"
	"sales_system/internal/app/service"
	"sales_system/internal/common/security"
	"sales_system/internal/domain/model"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	accessService *service.AccessService,
	userService *service.UserService,
	sessions service.SessionStore,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the bearer token if present, puts claims in context. The
	// session middleware below decides whether a route needs one.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", func(ar chi.Router) {
			authHandler.RegisterPublicRoutes(ar)

			ar.Group(func(priv chi.Router) {
				priv.Use(apiMiddleware.Authenticator(sessions))
				authHandler.RegisterPrivateRoutes(priv)
			})
		})

		// Module discovery (any authenticated role)
		accessHandler := handler.NewAccessHandler(accessService)
		v1.Route("/modules", func(mr chi.Router) {
			mr.Use(apiMiddleware.Authenticator(sessions))
			accessHandler.RegisterRoutes(mr)
		})

		// User management (users module, manage_users permission)
		userHandler := handler.NewUserHandler(userService)
		v1.Route("/users", func(ur chi.Router) {
			ur.Use(apiMiddleware.Authenticator(sessions))
			ur.Use(apiMiddleware.RequireModule(accessService, model.ModuleUsers))
			ur.Use(apiMiddleware.RequirePermission(accessService, model.PermManageUsers))
			userHandler.RegisterRoutes(ur)
		})
	})

	return r
}
