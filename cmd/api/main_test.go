package main

import (
	"net/http"
	"testing"
	"time"

	appconfig "github.com/microtix/lead-platform/internal/config"
)

func TestNewServerWriteTimeoutCoversWebhook(t *testing.T) {
	srv := newServer(&appconfig.Config{Port: "9000", WebhookTimeout: 2 * time.Minute}, http.NotFoundHandler())
	if srv.Addr != ":9000" {
		t.Fatalf("unexpected addr %s", srv.Addr)
	}
	if srv.WriteTimeout <= 2*time.Minute {
		t.Fatalf("expected write timeout beyond webhook timeout, got %s", srv.WriteTimeout)
	}
}

func TestNewServerMinimumWriteTimeout(t *testing.T) {
	srv := newServer(&appconfig.Config{Port: "8080", WebhookTimeout: time.Second}, http.NotFoundHandler())
	if srv.WriteTimeout != 15*time.Second {
		t.Fatalf("expected default write timeout, got %s", srv.WriteTimeout)
	}
}
