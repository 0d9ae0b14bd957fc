// Package cmd holds shared wiring helpers for the binaries.
package cmd

import (
	"strings"

	"github.com/pebblepay/scrivener/pkg/persistence"
	"github.com/pebblepay/scrivener/pkg/persistence/file"
	"github.com/pebblepay/scrivener/pkg/persistence/redis"
)

// NewPersistence picks the session store from the database URL scheme:
// redis:// for Redis, anything else is treated as a file path.
func NewPersistence(databaseURL string) (persistence.Persistence, error) {
	provider := parsePersistenceProvider(databaseURL)

	switch provider {
	case "redis", "rediss":
		return redis.NewPersistence(databaseURL)
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	return parts[0]
}
