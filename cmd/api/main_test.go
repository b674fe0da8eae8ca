package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appconfig "github.com/wolfman30/ambutrack-notify/internal/config"
	"github.com/wolfman30/ambutrack-notify/pkg/logging"
)

func TestNewServer(t *testing.T) {
	cfg := &appconfig.Config{
		Port:                "9191",
		CORSAllowedOrigins:  []string{"*"},
		ProviderHTTPTimeout: 10 * time.Second,
	}
	srv := newServer(cfg, logging.Discard())

	if srv.Addr != ":9191" {
		t.Fatalf("unexpected addr %q", srv.Addr)
	}
	if srv.WriteTimeout != 45*time.Second {
		t.Fatalf("expected write timeout to cover the provider chain, got %s", srv.WriteTimeout)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rec.Code)
	}
}
