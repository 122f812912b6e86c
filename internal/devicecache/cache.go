// Package devicecache persists per-device state in a local bbolt file: the
// logged-in identity, the last known instructors list and the backend
// connection override.
package devicecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"
)

var bucket = []byte("Device")

const (
	keySession     = "session"
	keyInstructors = "instructors"
	keyConnection  = "connection"
)

var errNotFound = errors.New("key not found")

type Cache struct {
	db     *bbolt.DB
	logger zerolog.Logger
}

func Open(path string, logger zerolog.Logger) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open device cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Cache{
		db:     db,
		logger: logger.With().Str("component", "device_cache").Str("path", path).Logger(),
	}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func save[T any](c *Cache, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

// load decodes the value stored under key. A value that cannot be decoded is
// deleted and reported as absent.
func load[T any](c *Cache, key string) (*T, bool) {
	var raw []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(key))
		if v == nil {
			return errNotFound
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		if !errors.Is(err, errNotFound) {
			c.logger.Error().Err(err).Str("key", key).Msg("Failed to read device cache")
		}
		return nil, false
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Discarding corrupted cache entry")
		if derr := c.remove(key); derr != nil {
			c.logger.Error().Err(derr).Str("key", key).Msg("Failed to delete corrupted cache entry")
		}
		return nil, false
	}

	return &out, true
}

func (c *Cache) remove(key string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}

func (c *Cache) SaveSession(s models.ActiveSession) error {
	return save(c, keySession, s)
}

func (c *Cache) LoadSession() (*models.ActiveSession, bool) {
	return load[models.ActiveSession](c, keySession)
}

func (c *Cache) ClearSession() error {
	return c.remove(keySession)
}

func (c *Cache) SaveInstructors(list []models.Instructor) error {
	return save(c, keyInstructors, list)
}

func (c *Cache) LoadInstructors() ([]models.Instructor, bool) {
	list, ok := load[[]models.Instructor](c, keyInstructors)
	if !ok {
		return nil, false
	}
	return *list, true
}

func (c *Cache) SaveConnection(o models.ConnectionOverride) error {
	return save(c, keyConnection, o)
}

func (c *Cache) LoadConnection() (*models.ConnectionOverride, bool) {
	return load[models.ConnectionOverride](c, keyConnection)
}

func (c *Cache) ClearConnection() error {
	return c.remove(keyConnection)
}
