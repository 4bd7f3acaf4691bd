package storage

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Config selects the cache backend.
type Config struct {
	Type       string // none, sqlite or postgres
	SqlitePath string
	Postgres   PostgresConfig
	TTL        time.Duration
}

// Open returns the configured cache, or nil for type "none".
func Open(cfg Config, log zerolog.Logger) (*DatasetCache, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "sqlite":
		db, err = OpenSqlite(cfg.SqlitePath, log)
	case "postgres":
		db, err = OpenPostgres(cfg.Postgres, log)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to Postgres cache, falling back to SQLite")
			db, err = OpenSqlite(cfg.SqlitePath, log)
		}
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s cache: %w", cfg.Type, err)
	}
	return NewDatasetCache(db, cfg.TTL, log)
}
