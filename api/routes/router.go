package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scholarly-app/scholarly-backend/api/controllers"
	"github.com/scholarly-app/scholarly-backend/api/middleware"
	"github.com/scholarly-app/scholarly-backend/internal/accesscontrol"
	"github.com/scholarly-app/scholarly-backend/internal/content"
	"github.com/scholarly-app/scholarly-backend/internal/lifecycle"
	"github.com/scholarly-app/scholarly-backend/internal/plans"
	"github.com/scholarly-app/scholarly-backend/internal/setup"
	"github.com/scholarly-app/scholarly-backend/pkg/auth/session"
	"github.com/scholarly-app/scholarly-backend/pkg/config"
	"github.com/scholarly-app/scholarly-backend/pkg/db"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
	"github.com/scholarly-app/scholarly-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	lifecycleService lifecycle.Service,
	accessControlService accesscontrol.Service,
	planService plans.Service,
	contentService content.Service,
	setupService setup.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	resendPolicy := middleware.NewAuthRateLimitPolicy(
		"resend",
		cfg.AuthRateLimit.ResendWindow,
		cfg.AuthRateLimit.ResendIPLimit,
		cfg.AuthRateLimit.ResendEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.HealthDeps(dbP, redisClient)))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, redisClient, logg)).Post("/signup", controllers.AuthSignUp(lifecycleService, logg))
		r.Post("/confirm-email", controllers.AuthConfirmEmail(lifecycleService, logg))
		r.With(middleware.AuthRateLimit(resendPolicy, redisClient, logg)).Post("/resend-confirmation", controllers.AuthResendConfirmation(lifecycleService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(lifecycleService, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1/setup", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, redisClient, logg)).Post("/super-admin", controllers.SetupSuperAdmin(setupService, logg))
	})

	// Published content stays readable without a session.
	r.Get("/api/v1/content", controllers.ContentList(contentService, true, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		// The wizard and the caller's own profile are reachable before
		// completion; everything else sits behind the gate.
		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileMe(lifecycleService, logg))
			r.Post("/complete", controllers.ProfileComplete(lifecycleService, logg))
			r.With(middleware.RequireCompletedProfile(lifecycleService, logg)).
				Post("/reset-password", controllers.ProfileResetPassword(accessControlService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCompletedProfile(lifecycleService, logg))

			r.Patch("/profiles/{profileId}", controllers.ProfileUpdate(lifecycleService, logg))
			r.Get("/features", controllers.ProfileFeatures(planService, logg))
			r.Route("/plans", func(r chi.Router) {
				r.Get("/", controllers.PlanList(planService, logg))
				r.Get("/{planId}", controllers.PlanGet(planService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireCompletedProfile(lifecycleService, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(accessControlService, logg))
			r.Post("/{profileId}/promote", controllers.AdminPromote(accessControlService, logg))
			r.Post("/{profileId}/demote", controllers.AdminDemote(accessControlService, logg))
			r.Patch("/{profileId}/status", controllers.AdminSetStatus(accessControlService, logg))
			r.Post("/{profileId}/reset-password", controllers.AdminResetPassword(accessControlService, logg))
		})

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", controllers.PlanCreate(planService, logg))
			r.Patch("/{planId}", controllers.PlanUpdate(planService, logg))
			r.Delete("/{planId}", controllers.PlanDelete(planService, logg))
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/", controllers.ContentList(contentService, false, logg))
			r.Post("/", controllers.ContentCreate(contentService, logg))
			r.Patch("/{itemId}", controllers.ContentUpdate(contentService, logg))
			r.Delete("/{itemId}", controllers.ContentDelete(contentService, logg))
		})
	})

	return r
}
