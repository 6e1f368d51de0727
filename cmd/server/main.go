package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/heraldhq/herald-api/internal/analytics"
	"github.com/heraldhq/herald-api/internal/catalog"
	"github.com/heraldhq/herald-api/internal/channel"
	"github.com/heraldhq/herald-api/internal/config"
	"github.com/heraldhq/herald-api/internal/directory"
	"github.com/heraldhq/herald-api/internal/dispatch"
	"github.com/heraldhq/herald-api/internal/handlers"
	"github.com/heraldhq/herald-api/internal/ledger"
	"github.com/heraldhq/herald-api/internal/metrics"
	"github.com/heraldhq/herald-api/internal/middleware"
	"github.com/heraldhq/herald-api/internal/migration"
	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/preference"
	"github.com/heraldhq/herald-api/internal/repository"
	"github.com/heraldhq/herald-api/internal/routes"
	"github.com/heraldhq/herald-api/internal/trigger"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config      *config.Config
	db          *sql.DB
	logger      zerolog.Logger
	directory   *directory.Directory
	catalog     catalog.Service
	preferences preference.Service
	deliveries  ledger.Service
	stats       analytics.Service
	dispatcher  *dispatch.Dispatcher
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	gooseAdapter := migration.NewGooseAdapter(logger)
	goose.SetLogger(gooseAdapter)

	metrics.Init()

	// Load configuration.
	cfg := config.Load()

	app := &application{
		config: cfg,
		logger: logger,
	}

	// Wire storage, repositories and the org directory.
	app.initStorage(logger)
	if app.db != nil {
		defer app.db.Close()
	}

	// Delivery channels and the reminder dispatcher.
	registry := app.initChannels(logger)
	app.dispatcher = dispatch.New(
		app.catalog,
		app.directory,
		app.preferences,
		app.deliveries,
		registry,
		dispatch.Config{
			Workers:         cfg.Dispatch.Workers,
			DeliveryTimeout: cfg.Dispatch.DeliveryTimeout,
			RatePerSec:      cfg.Dispatch.RatePerSec,
		},
		logger,
	)

	// Recurring reminder trigger; manual triggering stays available
	// through the API either way.
	trg := trigger.New(app.dispatcher, cfg.Dispatch.Interval, logger)
	if err := trg.Start(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start reminder trigger")
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter(logger)
	meteredRouter := middleware.MetricsMiddleware(router)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(meteredRouter)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"http://localhost:3000"}),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type"}),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, trg, logger)

	logger.Info().Msg("Application terminated.")
}

// initStorage connects the repositories for the configured driver and loads
// the org directory snapshot.
func (app *application) initStorage(logger zerolog.Logger) {
	var (
		alertRepo    repository.AlertRepository
		prefRepo     repository.PreferenceRepository
		deliveryRepo repository.DeliveryRepository
	)

	switch app.config.Storage.Driver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", app.config.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to the database")
		}
		if err := db.Ping(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to ping database")
		}

		// Run database migrations.
		if err := migration.RunMigrations(db); err != nil {
			logger.Fatal().Err(err).Msg("Failed to run migrations")
		}

		app.db = db
		alertRepo = repository.NewAlertRepository(db)
		prefRepo = repository.NewPreferenceRepository(db)
		deliveryRepo = repository.NewDeliveryRepository(db)

		dir, err := directory.Load(context.Background(), repository.NewDirectoryRepository(db))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load org directory")
		}
		app.directory = dir

	case config.DriverMemory:
		alertRepo = repository.NewMemoryAlertRepository()
		prefRepo = repository.NewMemoryPreferenceRepository()
		deliveryRepo = repository.NewMemoryDeliveryRepository()
		app.directory = directory.New(seedTeams(app.config.Directory), seedUsers(app.config.Directory))

	default:
		logger.Fatal().Msgf("Unknown storage driver: %s", app.config.Storage.Driver)
	}

	app.catalog = catalog.NewService(alertRepo, logger)
	app.preferences = preference.NewService(prefRepo, logger)
	app.deliveries = ledger.NewService(deliveryRepo, logger)
	app.stats = analytics.NewService(alertRepo, prefRepo, deliveryRepo, logger)

	logger.Info().
		Str("driver", app.config.Storage.Driver).
		Int("users", app.directory.Size()).
		Msg("Storage initialized")
}

// initChannels binds a sender for each delivery type. Email stays unbound
// when SMTP is not configured; alerts targeting it are skipped with a
// warning at dispatch time.
func (app *application) initChannels(logger zerolog.Logger) *channel.Registry {
	registry := channel.NewRegistry()
	registry.Bind(models.DeliveryInApp, channel.NewInApp(logger))

	email, err := channel.NewEmail(app.config.Channels.Email, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Email channel not configured; email alerts will be skipped")
	} else {
		registry.Bind(models.DeliveryEmail, email)
	}

	registry.Bind(models.DeliverySMS, channel.NewSMS(app.config.Channels.SMS, logger))

	return registry
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(logger zerolog.Logger) http.Handler {
	alertHandler := handlers.NewAlertHandler(app.catalog, logger)
	userHandler := handlers.NewUserHandler(app.directory, app.catalog, app.preferences, logger)
	dispatchHandler := handlers.NewDispatchHandler(app.dispatcher, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(app.stats, logger)

	return routes.NewRouter(alertHandler, userHandler, dispatchHandler, analyticsHandler)
}

func seedTeams(dir config.DirectoryConfig) []models.Team {
	teams := make([]models.Team, 0, len(dir.Teams))
	for _, t := range dir.Teams {
		teams = append(teams, models.Team{ID: t.ID, Name: t.Name})
	}
	return teams
}

func seedUsers(dir config.DirectoryConfig) []models.User {
	users := make([]models.User, 0, len(dir.Users))
	for _, u := range dir.Users {
		users = append(users, models.User{ID: u.ID, Name: u.Name, TeamID: u.TeamID, Email: u.Email, Phone: u.Phone})
	}
	return users
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, trg *trigger.Trigger, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}

	// Stop the recurring reminder trigger.
	logger.Info().Msg("Stopping reminder trigger...")
	trg.Stop()
	logger.Info().Msg("Reminder trigger stopped.")
}
