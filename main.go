package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Amund211/riftrewind/internal/adapters/backendclient"
	"github.com/Amund211/riftrewind/internal/adapters/cache"
	"github.com/Amund211/riftrewind/internal/adapters/database"
	"github.com/Amund211/riftrewind/internal/adapters/snapshotrepository"
	"github.com/Amund211/riftrewind/internal/app"
	"github.com/Amund211/riftrewind/internal/config"
	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/ports"
	"github.com/Amund211/riftrewind/internal/reporting"
	"github.com/Amund211/riftrewind/internal/session"
	"github.com/Amund211/riftrewind/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	_ "golang.org/x/crypto/x509roots/fallback"
)

const serviceName = "riftrewind"

func main() {
	instanceID := uuid.New().String()

	jsonHandler := slog.NewJSONHandler(os.Stdout, nil)
	logger := slog.New(jsonHandler).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	if project := config.GoogleCloudProject(); project != "" {
		logger = slog.New(logging.NewGoogleCloudTracingLogHandler(jsonHandler, project)).With("instanceID", instanceID)
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	if config.OTelEnabled() {
		shutdownOTel, err := telemetry.SetupOTelSDK(context.Background(), serviceName)
		if err != nil {
			fail("Failed to initialize OpenTelemetry", "error", err.Error())
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(ctx); err != nil {
				logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
			}
		}()
		logger.Info("Initialized OpenTelemetry")
	}

	httpClient := &http.Client{
		Timeout:   config.BackendTimeout(),
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	backend, err := backendclient.NewBackendClientOrMock(config, httpClient)
	if err != nil {
		fail("Failed to initialize backend client", "error", err.Error())
	}
	logger.Info("Initialized backend client")

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	var snapshotRepo snapshotrepository.SnapshotRepository
	if config.IsDevelopment() && config.DBHost() == "" {
		logger.Info("No database configured, keeping recap snapshots in memory")
		snapshotRepo = snapshotrepository.NewInMemory()
	} else {
		logger.Info("Initializing database connection")
		db, err := database.NewPostgresDatabaseFromConfig(config)
		if err != nil {
			fail("Failed to initialize database", "error", err.Error())
		}
		logger.Info("Initialized database connection")

		repositorySchemaName := database.GetSchemaName(!config.IsProduction())

		err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(context.Background(), repositorySchemaName)
		if err != nil {
			fail("Failed to migrate database", "error", err.Error())
		}

		snapshotRepo = snapshotrepository.NewPostgres(db, repositorySchemaName)
	}
	logger.Info("Initialized SnapshotRepository")

	registry, stopRegistry := session.NewRegistry(config.SessionIdleTTL(), backend)
	defer stopRegistry()
	sessionMiddleware := session.NewMiddleware(registry, !config.IsDevelopment())

	iconCache := cache.NewTTLCache[string](1 * time.Hour)

	handlers := ports.Handlers{
		GetRecap:        app.BuildGetRecap(backend, snapshotRepo, time.Now),
		GetComparison:   app.BuildGetComparison(backend),
		SendChatMessage: app.BuildSendChatMessage(),
		GetSummonerIcon: app.BuildGetSummonerIcon(iconCache, backend),
		ResetSession:    app.BuildResetSession(registry),
	}

	router := ports.NewRouter(handlers, logger, sentryMiddleware, sessionMiddleware)

	logger.Info("Init complete")
	err = http.ListenAndServe(fmt.Sprintf(":%s", config.Port()), router)
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
