package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpadapter "github.com/graphragio/gateway/internal/adapters/http"
	"github.com/graphragio/gateway/internal/config"
	"github.com/graphragio/gateway/internal/core/ports"
	"github.com/graphragio/gateway/internal/core/usecase"
	"github.com/graphragio/gateway/internal/infrastructure/artifact"
	"github.com/graphragio/gateway/internal/infrastructure/graphragcfg"
	"github.com/graphragio/gateway/internal/infrastructure/index"
	"github.com/graphragio/gateway/internal/infrastructure/llm/openaichat"
	"github.com/graphragio/gateway/internal/infrastructure/repository/postgres"
	"github.com/graphragio/gateway/internal/infrastructure/resilience"
	"github.com/graphragio/gateway/internal/infrastructure/search"
	"github.com/graphragio/gateway/internal/observability/metrics"
)

const serviceName = "graphrag-gateway"

type App struct {
	Config  config.Config
	Handler http.Handler

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	defs, err := cfg.IndexDefs()
	if err != nil {
		return nil, fmt.Errorf("parse index config: %w", err)
	}

	serverMetrics := metrics.NewHTTPServerMetrics(serviceName)
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	indexDefs := make([]index.Definition, 0, len(defs))
	for _, def := range defs {
		indexDefs = append(indexDefs, index.Definition{Name: def.Name, Root: def.Root, Data: def.Data})
	}

	registry, err := index.NewRegistry(indexDefs, cfg.DefaultIndex, newIndexLoader(cfg, executor), logger,
		index.WithLoadObserver(func(name string, d time.Duration, err error) {
			serverMetrics.RecordIndexLoad(serviceName, name, d, err)
		}))
	if err != nil {
		return nil, fmt.Errorf("build index registry: %w", err)
	}

	var queryLog ports.QueryLog
	closeFn := func() {}
	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewQueryLogRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure query log schema: %w", err)
		}
		queryLog = repo
		closeFn = func() { _ = db.Close() }
	}

	chatUC := usecase.NewChatUseCase(registry, queryLog, usecase.ChatOptions{
		ReferenceBaseURL: cfg.ReferenceBaseURL,
		ShowReferences:   cfg.ShowReferences,
	})
	referenceUC := usecase.NewReferenceUseCase(registry)

	router := httpadapter.NewRouter(chatUC, referenceUC, serverMetrics, httpadapter.RouterOptions{
		APIKey:       cfg.OpenAICompatAPIKey,
		Service:      serviceName,
		RateLimitRPS: cfg.RateLimitRPS,
		RateBurst:    cfg.RateLimitBurst,
		CORSOrigins:  cfg.CORSOriginList(),
		Ready: func(ctx context.Context) error {
			_, err := registry.Engines(ctx, registry.DefaultIndex())
			return err
		},
	})

	return &App{
		Config:  cfg,
		Handler: router.Handler(),
		closeFn: closeFn,
	}, nil
}

// newIndexLoader builds the per-index load pipeline: project settings, then
// parquet tables, then the chat model client and the four engines over them.
func newIndexLoader(cfg config.Config, executor *resilience.Executor) index.Loader {
	return index.LoaderFunc(func(_ context.Context, def index.Definition) (ports.EngineSet, ports.ReferenceStore, error) {
		settings, err := graphragcfg.Load(def.Root)
		if err != nil {
			return nil, nil, err
		}

		dataDir := settings.DataDir(def.Root, def.Data)
		if def.Data == "" && cfg.DataDir != "" && cfg.Indexes == "" {
			dataDir = cfg.DataDir
		}

		tables, err := artifact.Load(dataDir)
		if err != nil {
			return nil, nil, err
		}

		baseURL, apiKey, modelName := cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel
		if model, ok := settings.DefaultChatModel(); ok {
			if baseURL == "" {
				baseURL = model.APIBase
			}
			if apiKey == "" {
				apiKey = model.APIKey
			}
			if modelName == "" {
				modelName = model.Model
			}
		}
		if baseURL == "" || modelName == "" {
			return nil, nil, fmt.Errorf("index %s: no chat model configured in settings.yaml or environment", def.Name)
		}

		chatModel := openaichat.New(baseURL, apiKey, modelName, executor)
		engines := search.NewEngineSet(chatModel, tables, search.Options{
			CommunityLevel: cfg.CommunityLevel,
			ResponseType:   cfg.ResponseType,
		})
		return engines, artifact.NewStore(tables), nil
	})
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
