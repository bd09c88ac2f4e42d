package http

import (
	"net/http"

	"github.com/go-accounts-api/internal/application/auth"
	"github.com/go-accounts-api/internal/config"
	"github.com/go-accounts-api/internal/infrastructure/dynamo"
	"github.com/go-accounts-api/internal/infrastructure/google"
	jwtinfra "github.com/go-accounts-api/internal/infrastructure/jwt"
	"github.com/go-accounts-api/internal/infrastructure/smtp"
	"github.com/go-accounts-api/internal/infrastructure/storage"
	"github.com/go-accounts-api/internal/transport/http/handler"
	appmiddleware "github.com/go-accounts-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	Mailer      smtp.Mailer
	Templates   *smtp.Templates
	JWTProvider *jwtinfra.Provider
	Google      *google.Client
	Avatars     storage.AvatarStorage
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider, deps.UserRepo)

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:  deps.UserRepo,
		Mailer:    deps.Mailer,
		Templates: deps.Templates,
		Tokens:    deps.JWTProvider,
		Google:    deps.Google,
		Avatars:   deps.Avatars,
		BaseURL:   cfg.BaseURL,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	resetH := handler.NewPasswordResetHandler(authSvc)
	avatarH := handler.NewAvatarHandler(authSvc)
	googleH := handler.NewGoogleHandler(authSvc)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health-check", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			// ── Public routes (no auth) ──────────────────────────────────
			r.With(sensitiveRL.Limit).Post("/register", authH.Register)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.Get("/verify/{verificationCode}", authH.VerifyEmail)
			r.With(sensitiveRL.Limit).Post("/verify", authH.ResendVerifyEmail)
			r.With(sensitiveRL.Limit).Post("/request-reset-password", resetH.Request)
			r.Post("/reset-password/{resetToken}", resetH.Reset)
			r.Get("/get-oauth-url", googleH.LoginURL)
			r.Get("/google-redirect", googleH.Redirect)

			// ── Authenticated routes ─────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(authMw)

				r.Get("/current", authH.Current)
				r.Post("/logout", authH.Logout)
				r.Patch("/avatars", avatarH.Update)
			})
		})
	})

	// Locally stored avatars are served as static files.
	if cfg.AvatarStorage == config.AvatarStorageLocal {
		fs := http.StripPrefix("/avatars/", http.FileServer(http.Dir(cfg.AvatarsDir)))
		r.Get("/avatars/*", fs.ServeHTTP)
	}

	return r
}
