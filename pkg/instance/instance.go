package instance

import (
	"os"
	"strings"
)

// EnvInstanceID overrides the detected instance identifier.
const EnvInstanceID = "FARMFRESH_INSTANCE_ID"

// ID names this API process in logs. Falls back to the platform dyno name, then the
// hostname, then "local".
func ID() string {
	for _, key := range []string{EnvInstanceID, "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
