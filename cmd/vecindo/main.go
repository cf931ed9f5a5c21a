package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	authgoogle "github.com/vecindo/vecindo/internal/auth/google"
	"github.com/vecindo/vecindo/internal/auth/token"
	"github.com/vecindo/vecindo/internal/config"
	"github.com/vecindo/vecindo/internal/db"
	"github.com/vecindo/vecindo/internal/docsearch"
	"github.com/vecindo/vecindo/internal/finance"
	"github.com/vecindo/vecindo/internal/logging"
	"github.com/vecindo/vecindo/internal/mail"
	"github.com/vecindo/vecindo/internal/secrets"
	"github.com/vecindo/vecindo/internal/version"
	"github.com/vecindo/vecindo/internal/web/handlers"
	"github.com/vecindo/vecindo/internal/web/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	slog.SetDefault(setupLogger(cfg.LogLevel, cfg.LogFormat))
	slog.Info("starting vecindo", "version", version.Version)

	// Initialize database
	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Sealed-value box for tokens at rest
	box, err := secrets.NewBox([]byte(cfg.EncryptionKey))
	if err != nil {
		slog.Error("failed to initialize encryption", "error", err)
		os.Exit(1)
	}

	// OAuth + token manager
	oauthCfg := authgoogle.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret)
	tokenMgr := token.NewManager(database, box, oauthCfg)

	// Pipelines
	syncer := mail.NewSyncer(database, tokenMgr, mail.DialGmail, cfg.SyncPageSize)
	sender := mail.NewSender(database, tokenMgr, mail.DialGmail)
	importer := finance.NewImporter(database)

	presets, err := finance.LoadPresets(cfg.MappingPresetsPath)
	if err != nil {
		slog.Error("failed to load mapping presets", "error", err)
		os.Exit(1)
	}
	if len(presets) > 0 {
		slog.Info("loaded mapping presets", "count", len(presets))
	}

	var searcher docsearch.Searcher
	if cfg.DocSearchURL != "" {
		searcher = docsearch.NewClient(cfg.DocSearchURL)
		slog.Info("document search enabled", "url", cfg.DocSearchURL)
	}

	// Create router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(logging.Middleware)

	// Public routes
	r.Get("/healthz", handlers.HealthHandler())

	// OAuth flow
	r.Get("/auth/google/connect", authgoogle.HandleConnect(oauthCfg))
	r.Get("/auth/google/callback", authgoogle.HandleCallback(oauthCfg, tokenMgr))

	// API routes (API key required)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(database))

		r.Post("/admin/apikey", handlers.RegenerateAPIKeyHandler(database))

		r.Post("/communities", handlers.CreateCommunityHandler(database))
		r.Get("/communities", handlers.ListCommunitiesHandler(database))

		r.Route("/communities/{communityID}", func(r chi.Router) {
			// Mailbox
			r.Get("/integration", handlers.IntegrationStatusHandler(tokenMgr))
			r.Delete("/integration", handlers.DisconnectHandler(tokenMgr))
			r.Post("/sync", handlers.SyncHandler(syncer))
			r.Get("/messages", handlers.ListMessagesHandler(database))
			r.Post("/messages", handlers.SendMessageHandler(sender))

			// Finance
			r.Post("/periods", handlers.OpenPeriodHandler(database))
			r.Get("/periods", handlers.ListPeriodsHandler(database))
			r.Post("/units/reconcile", handlers.ReconcileUnitsHandler(database))

			// CRM
			r.Post("/contacts", handlers.CreateContactHandler(database))
			r.Get("/contacts", handlers.ListContactsHandler(database))
			r.Post("/tasks", handlers.CreateTaskHandler(database))
			r.Get("/tasks", handlers.ListTasksHandler(database))
			r.Get("/activities", handlers.ListActivitiesHandler(database))

			// Documents
			r.Get("/documents/search", handlers.SearchDocumentsHandler(searcher))
		})

		r.Patch("/messages/{messageID}/status", handlers.UpdateMessageStatusHandler(database))
		r.Post("/periods/{periodID}/import", handlers.ImportChargesHandler(database, importer, presets))
		r.Get("/presets", handlers.ListPresetsHandler(presets))
		r.Patch("/contacts/{contactID}", handlers.UpdateContactHandler(database))
		r.Delete("/contacts/{contactID}", handlers.DeleteContactHandler(database))
		r.Patch("/tasks/{taskID}", handlers.MoveTaskHandler(database))
		r.Delete("/tasks/{taskID}", handlers.DeleteTaskHandler(database))
	})

	addr := cfg.Addr()
	slog.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level, format string) *slog.Logger {
	logLevel := parseLevel(level)

	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	}
	// Pretty colored output for console
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.DateTime,
	}))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
