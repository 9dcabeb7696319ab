package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gif-player/internal/database"
	"gif-player/internal/handlers"
	"gif-player/internal/logging"
	"gif-player/internal/middleware"
	"gif-player/internal/pipeline"
	"gif-player/internal/player"
	"gif-player/internal/probe"
	"gif-player/internal/startup"
	"gif-player/internal/store"
	"gif-player/internal/thumbnail"
	"gif-player/internal/transcode"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	ctx := context.Background()

	// Initialize registry database
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize registry: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Seed the default strategy once; later changes via the settings
	// API win over the environment.
	if current := db.DefaultStrategy(ctx, ""); !current.Valid() {
		if err := db.SetDefaultStrategy(ctx, config.DefaultStrategy); err != nil {
			logging.Warn("Failed to seed default strategy: %v", err)
		}
	}

	// libvips speeds up thumbnail extraction when present; the pure-Go
	// decoder covers its absence.
	if err := thumbnail.InitVips(); err != nil {
		logging.Warn("libvips unavailable, using pure-Go decoding: %v", err)
	}
	defer thumbnail.ShutdownVips()

	fs := store.NewDisk()
	invoker := transcode.NewFFmpeg(config.FFmpegPath)
	runner := transcode.NewRunner(invoker, fs, config.TranscodeTimeout)
	prober := probe.New(runner, fs, db, config.FixturePath)

	// Probe once at startup so the verdict is cached before the first
	// pipeline run.
	capability, err := prober.Probe(ctx)
	if err != nil {
		logging.Warn("Initial capability probe failed: %v", err)
	}
	startup.LogCapabilityInit(capability.Available, string(capability.Reason), capability.Reason.Message())

	extractor := thumbnail.New(fs)
	orchestrator := pipeline.New(db, fs, extractor, runner, prober)
	renderer := player.New(db)

	h := handlers.New(db, orchestrator, prober, renderer)

	router := mux.NewRouter()
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.RegisterRoutes(router)

	startup.LogHTTPRoutes(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
