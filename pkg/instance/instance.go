package instance

import (
	"os"

	"github.com/bizzyglass/bizzyglass-backend/pkg/env"
)

// ID identifies this worker replica in logs. BIZZY_INSTANCE_ID wins, then the
// hostname, then a fixed fallback.
func ID() string {
	if id := env.Get("BIZZY_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
