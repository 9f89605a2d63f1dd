package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	"github.com/bizzyglass/bizzyglass-backend/pkg/types"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	rec := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get(envHeader) != "dev" {
		t.Fatalf("expected env header dev got %q", rec.Header().Get(envHeader))
	}
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	deps := map[string]Pinger{
		"db":    pingFunc(func(context.Context) error { return nil }),
		"redis": pingFunc(func(context.Context) error { return errors.New("connection refused") }),
	}
	rec := httptest.NewRecorder()
	HealthReady(cfg, nil, deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Details["redis"] != "connection refused" {
		t.Fatalf("expected redis failure detail got %v", body.Error.Details)
	}
	if _, ok := body.Error.Details["db"]; ok {
		t.Fatal("healthy dependency should not be reported")
	}
}

func TestHealthReadyOK(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "prod"}}
	deps := map[string]Pinger{"db": pingFunc(func(context.Context) error { return nil }), "redis": nil}
	rec := httptest.NewRecorder()
	HealthReady(cfg, nil, deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope types.DataEnvelope[map[string]string]
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["status"] != "ready" {
		t.Fatalf("unexpected payload %v", envelope.Data)
	}
}
