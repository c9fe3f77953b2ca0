package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vncsmyrnk/auth-service/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth   *AuthHandler
	User   *UserHandler
	Health *HealthHandler
}

func NewHandler(h Handlers, authService ports.AuthService, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	})
	if h.Health != nil {
		r.Get("/healthz", h.Health.Health)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up", h.Auth.SignUp)
		r.Post("/sign-in", h.Auth.SignIn)
		r.Post("/refresh", h.Auth.Refresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authService, logger))
		r.Post("/logout", h.Auth.Logout)
		r.Get("/me", h.User.GetMe)
	})

	return otelhttp.NewHandler(r, "auth-service")
}
