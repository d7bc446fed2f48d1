package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"parttimepal-backend/internal/analysis"
	"parttimepal-backend/internal/assistant"
	"parttimepal-backend/internal/cvmatch"
	"parttimepal-backend/internal/jobsearch"
	"parttimepal-backend/internal/llm"
	"parttimepal-backend/internal/llm/gemini"
	"parttimepal-backend/internal/normalize"
	"parttimepal-backend/internal/runs"
	"parttimepal-backend/internal/session"
	"parttimepal-backend/internal/shared/config"
	"parttimepal-backend/internal/shared/server"
	"parttimepal-backend/internal/shared/server/middleware"
	"parttimepal-backend/internal/shared/storage/db"
	"parttimepal-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	DB          *sql.DB
	Provider    llm.Provider
	Sessions    *session.Registry
	RunsRepo    runs.Repo
	RateLimiter *middleware.RateLimiter
	Assistant   *assistant.Service
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var runsRepo runs.Repo
	if sqlDB != nil {
		runsRepo = &runs.PGRepo{DB: sqlDB}
	} else {
		runsRepo = runs.NewMemoryRepo()
	}

	sessions := session.NewRegistry(cfg.SessionTTL)
	svc := &assistant.Service{
		Sessions:   sessions,
		Normalizer: normalize.New(provider, cfg.LLMModel, cfg.CVLocalExtract),
		Analysis: &analysis.Service{
			Provider:       provider,
			Model:          cfg.LLMModel,
			ReasoningModel: cfg.LLMReasoningModel,
			ThinkingBudget: cfg.LLMThinkingBudget,
			RunTimeout:     cfg.AnalysisTimeout,
			RedFlags:       analysis.DefaultRedFlags,
		},
		Search: &jobsearch.Service{
			Provider: provider,
			Model:    cfg.LLMModel,
			Logo: jobsearch.LogoResolver{
				Template: cfg.LogoURLTemplate,
				Excluded: jobsearch.DefaultExcludedDomains,
			},
		},
		CV:            &cvmatch.Service{Provider: provider, Model: cfg.LLMModel},
		Runs:          runsRepo,
		SearchTimeout: cfg.SearchTimeout,
	}

	app := &App{
		Config:      cfg,
		DB:          sqlDB,
		Provider:    provider,
		Sessions:    sessions,
		RunsRepo:    runsRepo,
		RateLimiter: middleware.NewRateLimiter(nil),
		Assistant:   svc,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:      cfg,
		Assistant:   assistant.NewHandler(svc, cfg.MaxUploadBytes),
		SessionLive: sessions.Exists,
		RateLimiter: app.RateLimiter,
		DB:          sqlDB,
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.storage", map[string]any{"storage": "memory", "reason": "DATABASE_URL empty"})
		return nil, nil
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.storage", map[string]any{"storage": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}
	telemetry.Info("bootstrap.storage", map[string]any{"storage": "postgres"})
	return sqlDB, nil
}

func buildProvider(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	var base llm.Provider = llm.PlaceholderProvider{}
	if cfg.LLMProvider == "gemini" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		switch {
		case err == nil:
			base = client
		case cfg.IsDevLike():
			telemetry.Warn("bootstrap.provider", map[string]any{"provider": "placeholder", "error": err})
		default:
			return nil, fmt.Errorf("provider: %w", err)
		}
	}
	return llm.Instrument(llm.WithTimeout(base, cfg.LLMTimeout)), nil
}
