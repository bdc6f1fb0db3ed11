package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/cache"
	"github.com/Kesh3805/autobi/pkg/charts"
	"github.com/Kesh3805/autobi/pkg/config"
	"github.com/Kesh3805/autobi/pkg/handlers"
	"github.com/Kesh3805/autobi/pkg/insights"
	"github.com/Kesh3805/autobi/pkg/llm"
	"github.com/Kesh3805/autobi/pkg/logging"
	"github.com/Kesh3805/autobi/pkg/middleware"
	"github.com/Kesh3805/autobi/pkg/schema"
	"github.com/Kesh3805/autobi/pkg/services"
	"github.com/Kesh3805/autobi/pkg/sqlgen"
	"github.com/Kesh3805/autobi/pkg/store"
)

// Version is set at build time via ldflags
var Version = "dev"

// allowedOrigins are the frontend dev servers permitted by CORS.
var allowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:3001",
	"http://127.0.0.1:3001",
}

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("bind_addr", cfg.BindAddr),
		zap.String("port", cfg.Port),
		zap.String("database", displayDatabase(cfg.Database.Path)),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("llm_available", cfg.LLM.IsAvailable()))

	ctx := context.Background()

	st, err := store.NewStore(ctx, cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer st.Close()

	llmClient, err := llm.NewFromConfig(&llm.Config{
		Provider:        cfg.LLM.Provider,
		Endpoint:        cfg.LLM.Endpoint,
		Model:           cfg.LLM.Model,
		APIKey:          cfg.LLM.APIKey,
		Timeout:         cfg.LLM.Timeout(),
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	}, logger)
	if err != nil {
		logger.Fatal("failed to configure LLM client", zap.Error(err))
	}

	caches := cache.New(cfg.Cache.SchemaTTL(), cfg.Cache.QueryTTL())
	defer caches.Stop()

	profiler := schema.NewProfiler(st, logger)
	generator := sqlgen.NewGenerator(llmClient, logger)
	insightEngine := insights.NewEngine(logger)
	chartSelector := charts.NewSelector(logger)

	queryService := services.NewQueryService(st, profiler, generator, insightEngine, chartSelector, caches, logger)
	suggestionService := services.NewSuggestionService(queryService, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDataHandler(st, queryService, caches, cfg.Upload.MaxBytes, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(queryService, suggestionService, caches, logger).RegisterRoutes(mux)

	handler := middleware.CORS(allowedOrigins)(middleware.RequestLogger(logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting autobi", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func displayDatabase(path string) string {
	if path == "" {
		return ":memory:"
	}
	return path
}
