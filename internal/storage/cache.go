// Package storage caches downloaded datasets in a SQL database so repeat runs
// can skip the network.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCacheMiss is returned when no fresh entry exists for a key.
var ErrCacheMiss = errors.New("dataset not cached")

// Dataset is one cached document.
type Dataset struct {
	ID        uint           `gorm:"primarykey"`
	Source    string         `gorm:"size:1024;uniqueIndex"`
	Body      datatypes.JSON `gorm:"not null"`
	Checksum  string         `gorm:"size:64"`
	Size      int
	FetchedAt time.Time `gorm:"index"`
}

// TableName keeps the table name stable across drivers.
func (Dataset) TableName() string {
	return "datasets"
}

// DatasetCache stores JSON documents keyed by source URL.
type DatasetCache struct {
	db  *gorm.DB
	ttl time.Duration
	log zerolog.Logger
	now func() time.Time
}

// NewDatasetCache migrates the schema on db. Entries older than ttl are
// treated as misses; a zero ttl keeps entries forever.
func NewDatasetCache(db *gorm.DB, ttl time.Duration, log zerolog.Logger) (*DatasetCache, error) {
	if err := db.AutoMigrate(&Dataset{}); err != nil {
		return nil, fmt.Errorf("failed to migrate dataset cache: %w", err)
	}
	return &DatasetCache{db: db, ttl: ttl, log: log, now: time.Now}, nil
}

// Get returns the cached body for key, or ErrCacheMiss.
func (c *DatasetCache) Get(ctx context.Context, key string) ([]byte, error) {
	var d Dataset
	err := c.db.WithContext(ctx).Where("source = ?", key).Take(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading dataset %q: %w", key, err)
	}

	if c.ttl > 0 && c.now().Sub(d.FetchedAt) > c.ttl {
		c.log.Debug().Str("key", key).Time("fetchedAt", d.FetchedAt).Msg("Cached dataset expired")
		return nil, ErrCacheMiss
	}
	if d.Checksum != "" && d.Checksum != checksum(d.Body) {
		c.log.Warn().Str("key", key).Msg("Cached dataset checksum mismatch")
		return nil, ErrCacheMiss
	}
	return []byte(d.Body), nil
}

// Put stores data under key, replacing any previous entry. data must be JSON.
func (c *DatasetCache) Put(ctx context.Context, key string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("dataset %q is not valid JSON", key)
	}
	d := Dataset{
		Source:    key,
		Body:      datatypes.JSON(data),
		Checksum:  checksum(data),
		Size:      len(data),
		FetchedAt: c.now().UTC(),
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "checksum", "size", "fetched_at"}),
	}).Create(&d).Error
	if err != nil {
		return fmt.Errorf("writing dataset %q: %w", key, err)
	}
	c.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("Cached dataset")
	return nil
}

// Delete removes key from the cache.
func (c *DatasetCache) Delete(ctx context.Context, key string) error {
	return c.db.WithContext(ctx).Where("source = ?", key).Delete(&Dataset{}).Error
}

// DB returns the database behind the cache so other components can share
// the connection.
func (c *DatasetCache) DB() *gorm.DB {
	return c.db
}

// Close closes the underlying connection pool.
func (c *DatasetCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
