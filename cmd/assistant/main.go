// cmd/assistant/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"trip-assistant/internal/api"
	"trip-assistant/internal/assistant/catalog"
	"trip-assistant/internal/assistant/chat"
	"trip-assistant/internal/assistant/generator"
	"trip-assistant/internal/assistant/ingest"
	"trip-assistant/internal/assistant/intent"
	"trip-assistant/internal/assistant/retriever"
	"trip-assistant/internal/assistant/session"
	"trip-assistant/internal/assistant/slots"
	"trip-assistant/internal/assistant/vectorstore"
	"trip-assistant/internal/common/config"
	"trip-assistant/internal/common/database"
	"trip-assistant/internal/common/genai"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/common/observability"
	"trip-assistant/pkg/registry"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.FromConfig(cfg.Logging)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting trip assistant...",
		zap.String("version", cfg.App.Version),
		zap.String("vectorBackend", cfg.RAG.VectorBackend),
		zap.String("sessionBackend", cfg.Session.Backend),
	)

	obs := observability.New(cfg.App.Name, cfg.Tracing, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readiness := map[string]api.ReadinessCheck{}

	// catalog
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := catalog.EnsureSchema(ctx, pg.DB); err != nil {
		zapLog.Fatal("catalog schema setup failed", zap.Error(err))
	}
	if err := pg.RegisterMetrics(prometheus.DefaultRegisterer, "catalog"); err != nil {
		zapLog.Warn("postgres pool metrics unavailable", zap.Error(err))
	}
	readiness["postgres"] = pg.Ping
	zapLog.Info("PostgreSQL connected successfully")

	places := catalog.NewPlaceRepository(pg.DB, log)
	routes := catalog.NewRouteRepository(pg.DB, log)

	// model service
	ai := genai.NewClient(genai.ConfigFrom(cfg.GenAI), log)

	// vector store
	ingestCfg := ingest.ConfigFrom(cfg.RAG)
	chunker := ingest.NewChunker(ingestCfg)
	var store vectorstore.Store
	switch cfg.RAG.VectorBackend {
	case config.BackendElasticsearch:
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		esStore := vectorstore.NewElasticsearchStore(es.Client, vectorstore.ESConfig{
			Index:       cfg.RAG.Index,
			Dimensions:  cfg.RAG.Dimensions,
			Concurrency: cfg.RAG.EmbedConcurrency,
		}, chunker, ai, log)
		if err := esStore.Init(ctx); err != nil {
			zapLog.Fatal("vector index setup failed", zap.Error(err))
		}
		readiness["elasticsearch"] = es.Ping
		store = esStore
		zapLog.Info("Elasticsearch connected successfully")
	default:
		store = vectorstore.NewMemoryStore(chunker, ai, cfg.RAG.EmbedConcurrency, log)
	}

	// sessions
	var sessions session.Store
	sessionCfg := session.ConfigFrom(cfg.Session)
	switch cfg.Session.Backend {
	case config.BackendRedis:
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		readiness["redis"] = rdb.Ping
		sessions = session.NewRedisStore(rdb.Client, sessionCfg, log)
		zapLog.Info("Redis connected successfully")
	default:
		sessions = session.NewMemoryStore(sessionCfg)
	}

	// dialogue engine
	taxonomy, err := registry.LoadRegistry(cfg.Intent.TaxonomyPath)
	if err != nil {
		zapLog.Fatal("intent taxonomy load failed", zap.Error(err))
	}
	classifier, err := intent.New(intent.ConfigFrom(cfg.Intent), ai, taxonomy, log)
	if err != nil {
		zapLog.Fatal("intent classifier setup failed", zap.Error(err))
	}

	service := chat.NewService(chat.DefaultConfig(), chat.Deps{
		Sessions:  sessions,
		Intents:   classifier,
		Slots:     slots.New(slots.DefaultConfig(), ai, log),
		Retriever: retriever.New(store, log),
		Generator: generator.New(ai, log),
		Places:    places,
		Routes:    routes,
		Search:    routes,
		Recorder:  obs,
	}, log)

	if cfg.RAG.SeedOnStart {
		seeder := ingest.NewSeeder(ingestCfg, places, store, log)
		go func() {
			if _, err := seeder.Seed(ctx); err != nil {
				zapLog.Error("catalog seeding failed", zap.Error(err))
			}
		}()
	}

	mux := http.NewServeMux()
	api.NewHandler(&api.Config{
		Timeout: config.GetDuration(cfg.Server.WriteTimeout),
	}, service, log).Routes(mux)
	api.HealthRoutes(mux, cfg.App.Version, readiness)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, draining requests...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Trip assistant stopped")
}
