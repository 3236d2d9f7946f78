package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/archivist/internal/config"
	"github.com/kailas-cloud/archivist/internal/db/sqldb"
	"github.com/kailas-cloud/archivist/internal/domain/catalog"
	logpkg "github.com/kailas-cloud/archivist/internal/logger"
	"github.com/kailas-cloud/archivist/internal/metrics"
	documentrepo "github.com/kailas-cloud/archivist/internal/repository/document"
	"github.com/kailas-cloud/archivist/internal/repository/pagecount"
	chiTransport "github.com/kailas-cloud/archivist/internal/transport/chi"
	s3Transport "github.com/kailas-cloud/archivist/internal/transport/s3"
	"github.com/kailas-cloud/archivist/internal/transport/xtender"
	documentuc "github.com/kailas-cloud/archivist/internal/usecase/document"
	healthuc "github.com/kailas-cloud/archivist/internal/usecase/health"
	"github.com/kailas-cloud/archivist/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting archivist API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("metadata_driver", cfg.Metadata.Driver),
		zap.String("bucket", cfg.Storage.Bucket),
	)

	metrics.RegisterUpstreamMetrics()

	registry, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded",
		zap.String("source", catalogSource(cfg.Catalog)),
		zap.Int("entities", len(registry.Entities())))

	ctx := context.Background()

	// Page counts are optional: without a metadata database every listing
	// reports X-Page-Counts: unavailable.
	var (
		pages         documentuc.PageCounter
		metadataProbe healthuc.Pinger
	)
	if cfg.Metadata.Enabled() {
		store, err := sqldb.Open(ctx, sqldb.Config{
			Driver:   cfg.Metadata.Driver,
			DSN:      cfg.Metadata.DSN,
			MaxConns: cfg.Metadata.MaxConnections,
		})
		if err != nil {
			logger.Fatal("Failed to open metadata database", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close metadata database", zap.Error(err))
			}
		}()

		readiness := time.Duration(cfg.Metadata.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			// Enrichment degrades per request; the service still starts.
			logger.Warn("Metadata database not ready", zap.Error(err))
		} else {
			logger.Info("Connected to metadata database")
		}

		repo, err := pagecount.New(store, cfg.Metadata.Table)
		if err != nil {
			logger.Fatal("Invalid metadata table", zap.Error(err))
		}
		pages = repo
		metadataProbe = store
	}

	axClient, err := xtender.NewClient(xtender.Config{
		AdHocQueryPath:  cfg.Repository.AdHocQueryPath,
		IndexLookupPath: cfg.Repository.IndexLookupPath,
		Credentials:     cfg.Repository.Credentials,
		Timeout:         time.Duration(cfg.Repository.TimeoutSec) * time.Second,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal("Failed to create repository client", zap.Error(err))
	}

	objects, err := s3Transport.NewStore(s3Transport.Config{
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Endpoint:        cfg.Storage.Endpoint,
		URLTTL:          time.Duration(cfg.Storage.URLTTLSec) * time.Second,
		DownloadTimeout: time.Duration(cfg.Storage.DownloadTimeoutSec) * time.Second,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal("Failed to create object store", zap.Error(err))
	}

	docSvc := documentuc.New(registry, documentrepo.New(axClient), pages, objects)
	healthSvc := healthuc.New(map[string]healthuc.Pinger{
		healthuc.ComponentMetadata: metadataProbe,
	})

	server := chiTransport.NewServer(registry, docSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Registry, error) {
	if cfg.File == "" {
		return catalog.Default(), nil
	}
	reg, err := catalog.LoadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", cfg.File, err)
	}
	return reg, nil
}

func catalogSource(cfg config.CatalogConfig) string {
	if cfg.File == "" {
		return "built-in"
	}
	return cfg.File
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.String("page_counts", ww.Header().Get(chiTransport.PageCountsHeader)),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
