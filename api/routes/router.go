package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/firesight-ai/firesight-backend/api/controllers"
	"github.com/firesight-ai/firesight-backend/api/middleware"
	"github.com/firesight-ai/firesight-backend/internal/auth"
	"github.com/firesight-ai/firesight-backend/internal/scans"
	"github.com/firesight-ai/firesight-backend/pkg/config"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
	"github.com/firesight-ai/firesight-backend/pkg/logger"
	"github.com/firesight-ai/firesight-backend/pkg/metrics"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.Pinger
	UserResolver middleware.UserResolver
	HTTPMetrics  *metrics.HTTPMetrics

	AuthService         auth.Service
	RegistrationService auth.RegistrationService
	GoogleService       auth.GoogleService
	ScanService         scans.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	authenticated := middleware.Auth(cfg.JWT, deps.UserResolver, logg)
	adminOnly := middleware.RequireRole(enums.RoleAdmin, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.RegistrationService, logg))
		r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/google", controllers.AuthGoogle(deps.GoogleService, logg))
		r.With(authenticated).Get("/user", controllers.AuthProfile(logg))
	})

	r.Route("/api/scans", func(r chi.Router) {
		r.With(authenticated).Post("/analyze", controllers.ScansAnalyze(deps.ScanService, logg))
		r.With(authenticated).Get("/my-history", controllers.ScansMyHistory(deps.ScanService, logg))
		// Ungated on purpose: the shipped web client submits feedback
		// without a token. See ScansFeedback.
		r.Patch("/feedback/{scanId}", controllers.ScansFeedback(deps.ScanService, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.With(authenticated, adminOnly).Get("/master-history", controllers.AdminMasterHistory(deps.ScanService, logg))
		// Ungated on purpose: the retraining pipeline fetches this
		// anonymously. See AdminTrainingData.
		r.Get("/rl-training-data", controllers.AdminTrainingData(deps.ScanService, logg))
	})

	return r
}
