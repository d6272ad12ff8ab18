package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/firesight-ai/firesight-backend/api/routes"
	"github.com/firesight-ai/firesight-backend/internal/auth"
	"github.com/firesight-ai/firesight-backend/internal/scans"
	"github.com/firesight-ai/firesight-backend/internal/users"
	"github.com/firesight-ai/firesight-backend/pkg/config"
	"github.com/firesight-ai/firesight-backend/pkg/db"
	"github.com/firesight-ai/firesight-backend/pkg/googleid"
	"github.com/firesight-ai/firesight-backend/pkg/logger"
	"github.com/firesight-ai/firesight-backend/pkg/metrics"
	"github.com/firesight-ai/firesight-backend/pkg/migrate"
	"github.com/firesight-ai/firesight-backend/pkg/predictor"
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

	userRepo := users.NewRepository(dbClient.DB())
	scanRepo := scans.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registrationService, err := auth.NewRegistrationService(auth.RegistrationServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create registration service", err)
		os.Exit(1)
	}

	verifier, err := googleid.NewVerifier(cfg.Google.ClientID)
	if err != nil {
		logg.Error(context.Background(), "failed to create google verifier", err)
		os.Exit(1)
	}

	googleService, err := auth.NewGoogleService(auth.GoogleServiceParams{
		UserRepo:  userRepo,
		Verifier:  verifier,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create google service", err)
		os.Exit(1)
	}

	scorer, err := predictor.NewClient(cfg.Predictor)
	if err != nil {
		logg.Error(context.Background(), "failed to create predictor client", err)
		os.Exit(1)
	}

	scanService, err := scans.NewService(scans.ServiceParams{
		ScanRepo:        scanRepo,
		Scorer:          scorer,
		PredictorConfig: cfg.Predictor,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scan service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

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
		Handler: routes.NewRouter(routes.Deps{
			Config:              cfg,
			Logger:              logg,
			DB:                  dbClient,
			UserResolver:        userRepo,
			HTTPMetrics:         httpMetrics,
			AuthService:         authService,
			RegistrationService: registrationService,
			GoogleService:       googleService,
			ScanService:         scanService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
