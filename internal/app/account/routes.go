package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрирует swagger-спецификацию для /docs.
	_ "github.com/magabrotheeeer/account-service/docs"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/signin"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/account-service/internal/http/metrics"
	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	accountservice "github.com/magabrotheeeer/account-service/internal/services/account"
)

// RouteDeps собирает зависимости маршрутов.
type RouteDeps struct {
	Logger         *slog.Logger
	Service        *accountservice.Service
	DB             health.Pinger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, deps RouteDeps) {
	logger := deps.Logger
	svc := deps.Service

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		deps.Metrics.Middleware,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))

		r.Route("/v1", func(r chi.Router) {
			// Открытые конечные точки
			r.Post("/auth/signup", signup.New(logger, svc).ServeHTTP)
			r.Post("/auth/signin", signin.New(logger, svc).ServeHTTP)

			// Группа с проверкой сессионного токена
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.JWTMiddleware(svc, logger))
				r.Post("/auth/logout", logout.New(logger).ServeHTTP)
				r.Get("/user/profile", read.New(logger, svc).ServeHTTP)
				r.Put("/user/profile", update.New(logger, svc).ServeHTTP)
				r.Delete("/user/profile", remove.New(logger, svc).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, deps.DB).ServeHTTP)
	r.Handle("/metrics", deps.Metrics.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
