package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/scholarly-app/scholarly-backend/api/routes"
	"github.com/scholarly-app/scholarly-backend/internal/accesscontrol"
	"github.com/scholarly-app/scholarly-backend/internal/content"
	"github.com/scholarly-app/scholarly-backend/internal/identity"
	"github.com/scholarly-app/scholarly-backend/internal/lifecycle"
	"github.com/scholarly-app/scholarly-backend/internal/plans"
	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	"github.com/scholarly-app/scholarly-backend/internal/setup"
	"github.com/scholarly-app/scholarly-backend/pkg/auth/session"
	"github.com/scholarly-app/scholarly-backend/pkg/config"
	"github.com/scholarly-app/scholarly-backend/pkg/db"
	"github.com/scholarly-app/scholarly-backend/pkg/featuregate"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
	"github.com/scholarly-app/scholarly-backend/pkg/mailer"
	"github.com/scholarly-app/scholarly-backend/pkg/migrate"
	"github.com/scholarly-app/scholarly-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	profileRepo := profiles.NewRepository(dbClient.DB())

	identityProvider, err := identity.NewLocalProvider(identity.ProviderParams{
		Accounts:    identity.NewRepository(dbClient.DB()),
		Tokens:      redisClient,
		Mailer:      mailer.NewLogMailer(cfg.Mailer, logg),
		PasswordCfg: cfg.Password,
		IdentityCfg: cfg.Identity,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity provider", err)
		os.Exit(1)
	}

	lifecycleService, err := lifecycle.NewService(lifecycle.ServiceParams{
		Provider: identityProvider,
		Profiles: profileRepo,
		TxRunner: dbClient,
		Sessions: sessionManager,
		JWTCfg:   cfg.JWT,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lifecycle service", err)
		os.Exit(1)
	}

	accessControlService, err := accesscontrol.NewService(accesscontrol.ServiceParams{
		Profiles: profileRepo,
		Provider: identityProvider,
		TxRunner: dbClient,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create access control service", err)
		os.Exit(1)
	}

	planService, err := plans.NewService(plans.ServiceParams{
		Plans:    plans.NewRepository(dbClient.DB()),
		Profiles: profileRepo,
		Gate:     featuregate.New(cfg.Subscription.FallbackFeatures),
		TxRunner: dbClient,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create plan service", err)
		os.Exit(1)
	}

	contentService, err := content.NewService(content.ServiceParams{
		Content:  content.NewRepository(dbClient.DB()),
		Profiles: profileRepo,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create content service", err)
		os.Exit(1)
	}

	setupService, err := setup.NewService(setup.ServiceParams{
		Profiles: profileRepo,
		AccountsFor: func(tx *gorm.DB) setup.AccountWriter {
			return identity.NewRepository(tx)
		},
		TxRunner:    dbClient,
		SetupCfg:    cfg.Setup,
		PasswordCfg: cfg.Password,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create setup service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			lifecycleService,
			accessControlService,
			planService,
			contentService,
			setupService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
