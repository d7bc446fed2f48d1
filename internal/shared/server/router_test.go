package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"parttimepal-backend/internal/shared/config"
)

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHealthAndMetricsNeedNoSession(t *testing.T) {
	r := NewRouter(RouterDeps{
		Config:      config.Config{Env: "dev"},
		SessionLive: func(string) bool { return false },
	})
	for _, path := range []string{"/api/v1/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}
}

func TestRateGroupFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got string
	r.POST("/api/v1/verify", func(c *gin.Context) { got = rateGroupFor(c) })
	r.GET("/api/v1/session", func(c *gin.Context) { got = rateGroupFor(c) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/verify", nil))
	if got != rateGroupProvider {
		t.Fatalf("expected provider group, got %q", got)
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	if got != rateGroupDefault {
		t.Fatalf("expected default group, got %q", got)
	}
}
