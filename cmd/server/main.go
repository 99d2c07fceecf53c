package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/jrramp/arecheoedu/internal/config"
	"github.com/jrramp/arecheoedu/internal/handlers"
	"github.com/jrramp/arecheoedu/internal/logging"
	"github.com/jrramp/arecheoedu/internal/metrics"
	"github.com/jrramp/arecheoedu/internal/services"
	"github.com/jrramp/arecheoedu/internal/storage"
)

var (
	configFilePath = flag.String("config", "config.yaml", "path to config file")
	printRoutes    = flag.Bool("print-routes", false, "print the route table and exit")
)

const shutdownTimeout = 5 * time.Second

func main() {
	flag.Parse()

	bootLog := logging.New("info", "json", os.Stdout)

	if err := config.LoadDotEnv(".env"); err != nil {
		bootLog.Fatal().Err(err).Msg("loading .env")
	}

	fileParts, err := config.ProcessConfigPath(*configFilePath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("processing config path")
	}

	cfg, err := config.NewFileSystemLoader().Load(fileParts.FileName, fileParts.Path, config.DefaultEnvPrefix, config.NewDefaultEnvBinder())
	if err != nil {
		bootLog.Fatal().Err(err).Msg("loading config")
	}

	err = cfg.Validate()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("validating config")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	m := metrics.New()

	backend, err := storage.Open(ctx, cfg.StorageOptions(), log.With().Str("subsystem", "storage").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("opening storage")
	}
	defer backend.Close()

	storage.Bootstrap(ctx, backend, storage.DefaultSeeds(cfg.Storage.SeedDirectory()), log.With().Str("subsystem", "bootstrap").Logger())

	hub := services.NewChangeHub(m, log)
	go hub.Run(ctx)

	storeLog := log.With().Str("subsystem", "document_store").Logger()
	contentService := services.NewContentService(
		storage.NewPresentations(backend, storeLog, m),
		storage.NewQuizzes(backend, storeLog, m),
		hub,
		log,
	)

	handlerLog := log.With().Str("subsystem", "handlers").Logger()
	h := handlers.Handlers{
		Presentations: handlers.NewPresentationHandler(contentService, handlerLog),
		Quizzes:       handlers.NewQuizHandler(contentService, handlerLog),
		Health:        handlers.NewHealthHandler(cfg.Server.Port, handlerLog),
		Import:        handlers.NewImportHandler(contentService, handlerLog),
		Changes:       handlers.NewChangesHandler(hub, handlerLog),
		Metrics:       promhttp.HandlerFor(metrics.Registry(m), promhttp.HandlerOpts{}),
	}

	opts := handlers.RouteOptions{
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		AdminToken:     cfg.Auth.AdminToken,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}

	if *printRoutes {
		if err := handlers.PrintRoutes(handlers.NewRouter(h, opts, handlerLog), os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("printing routes")
		}
		return
	}

	if cfg.Auth.AdminToken == "" {
		log.Warn().Msg("no admin token configured, write routes are open")
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handlers.SetupRoutes(h, opts, handlerLog),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		var err error

		if cfg.TLS.Enabled {
			server.TLSConfig = &tls.Config{
				MinVersion: getTLSVersion(cfg.TLS.MinVersion),
			}

			log.Info().
				Str("addr", server.Addr).
				Str("cert_file", cfg.TLS.CertFile).
				Str("key_file", cfg.TLS.KeyFile).
				Str("min_version", cfg.TLS.MinVersion).
				Msg("starting HTTPS server")

			err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			log.Info().Str("addr", server.Addr).Msg("starting HTTP server")

			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("serving")
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}
}

// getTLSVersion converts string version to tls.Version constant
func getTLSVersion(version string) uint16 {
	switch version {
	case "1.0":
		return tls.VersionTLS10
	case "1.1":
		return tls.VersionTLS11
	case "1.2":
		return tls.VersionTLS12
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
