package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/RubachokBoss/clubtrack/internal/config"
	"github.com/RubachokBoss/clubtrack/internal/database"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/realtime"
	"github.com/RubachokBoss/clubtrack/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrUnknownDriver = errors.New("unknown realtime driver")

// ResolveDSN returns the database URL to dial. An override URL replaces the
// configured database and its key, when set, is used as the password.
func ResolveDSN(cfg config.DatabaseConfig, override *models.ConnectionOverride) (string, error) {
	if override == nil || override.URL == "" {
		return cfg.DSN(), nil
	}

	u, err := url.Parse(override.URL)
	if err != nil {
		return "", fmt.Errorf("invalid connection url: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("invalid connection url: unsupported scheme %q", u.Scheme)
	}
	if override.Key != "" {
		user := cfg.User
		if u.User != nil {
			user = u.User.Username()
		}
		u.User = url.UserPassword(user, override.Key)
	}
	return u.String(), nil
}

// NewDialer opens Postgres plus the realtime transport selected by
// cfg.Realtime.Driver.
func NewDialer(cfg *config.Config, logger zerolog.Logger) DialFunc {
	return func(ctx context.Context, override *models.ConnectionOverride) (*Backend, error) {
		dsn, err := ResolveDSN(cfg.Database, override)
		if err != nil {
			return nil, err
		}

		db, err := database.Open(ctx, dsn, cfg.Database, cfg.Sync.ConnectTimeout)
		if err != nil {
			return nil, err
		}

		feed, relay, err := openFeed(cfg.Realtime, dsn, logger)
		if err != nil {
			db.Close()
			return nil, err
		}

		return &Backend{
			Repos: repository.NewRepositories(db, logger),
			Feed:  feed,
			Relay: relay,
			Close: closer(db, feed),
		}, nil
	}
}

func openFeed(cfg config.RealtimeConfig, dsn string, logger zerolog.Logger) (realtime.Feed, realtime.Publisher, error) {
	switch cfg.Driver {
	case "", "pgnotify":
		// Триггеры в базе сами шлют уведомления
		return realtime.NewPGNotifyFeed(dsn, cfg.ChannelPrefix, cfg.BufferSize, logger), nil, nil
	case "amqp":
		feed, err := realtime.NewAMQPFeed(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.BufferSize, logger)
		if err != nil {
			return nil, nil, err
		}
		return feed, feed, nil
	case "redis":
		feed, err := realtime.NewRedisFeed(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.ChannelPrefix, cfg.BufferSize, logger)
		if err != nil {
			return nil, nil, err
		}
		return feed, feed, nil
	case "none":
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}

func closer(db *sql.DB, feed realtime.Feed) func() error {
	return func() error {
		var errs []error
		if feed != nil {
			errs = append(errs, feed.Close())
		}
		errs = append(errs, db.Close())
		return errors.Join(errs...)
	}
}
