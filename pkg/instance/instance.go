package instance

import (
	"os"

	"github.com/hostelhub/hostelhub-backend/pkg/env"
)

// GetID returns an identifier for this process, used in logs and as the
// cron lock owner. It prefers explicit env vars over the hostname.
func GetID() string {
	if id, ok := env.First("HOSTELHUB_INSTANCE_ID", "WORKER_ID", "DYNO"); ok {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
