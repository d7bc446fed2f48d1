package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parttimepal-backend/internal/runs"
	"parttimepal-backend/internal/shared/config"
)

func TestBuildDevWithoutInfrastructure(t *testing.T) {
	cfg := config.Config{
		Env:             "dev",
		LLMProvider:     "gemini",
		LLMModel:        "gemini-2.5-flash",
		LLMTimeout:      time.Second,
		SessionTTL:      time.Hour,
		RateLimitRPS:    5,
		RateLimitBurst:  20,
		ProviderRPS:     1,
		ProviderBurst:   2,
		MaxUploadBytes:  1 << 20,
		LogoURLTemplate: "https://logo.example/%s",
	}
	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if app.DB != nil {
		t.Fatalf("expected no database without DATABASE_URL")
	}
	if _, ok := app.RunsRepo.(*runs.MemoryRepo); !ok {
		t.Fatalf("expected memory journal, got %T", app.RunsRepo)
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if app.Sessions.Len() != 1 {
		t.Fatalf("expected one live session")
	}
}

func TestBuildProductionRequiresKey(t *testing.T) {
	cfg := config.Config{Env: "production", LLMProvider: "gemini", LLMModel: "gemini-2.5-flash"}
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without GEMINI_API_KEY in production")
	}
}
