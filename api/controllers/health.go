package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/bizzyglass/bizzyglass-backend/api/responses"
	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
)

const (
	envHeader    = "X-Bizzy-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and answers 503 with the failing
// names when any of them is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		failed := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
