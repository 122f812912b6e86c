// Package gateway exposes typed reads and writes against the remote backend.
// Reads degrade to empty results; writes report their error to the caller.
package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/realtime"
	"github.com/RubachokBoss/clubtrack/internal/repository"
	"github.com/rs/zerolog"
)

var ErrNotAttached = errors.New("no backend attached")

type Gateway struct {
	mu      sync.RWMutex
	repos   *repository.Repositories
	relay   realtime.Publisher
	timeout time.Duration
	logger  zerolog.Logger
}

func New(timeout time.Duration, logger zerolog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		timeout: timeout,
		logger:  logger.With().Str("component", "gateway").Logger(),
	}
}

// Attach points the gateway at a backend. relay may be nil when the backend
// emits its own change notifications.
func (g *Gateway) Attach(repos *repository.Repositories, relay realtime.Publisher) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.repos = repos
	g.relay = relay
}

func (g *Gateway) Detach() {
	g.Attach(nil, nil)
}

func (g *Gateway) Attached() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.repos != nil
}

func (g *Gateway) backend() (*repository.Repositories, realtime.Publisher, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.repos == nil {
		return nil, nil, ErrNotAttached
	}
	return g.repos, g.relay, nil
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.timeout)
}

// Probe runs the connectivity check query.
func (g *Gateway) Probe(ctx context.Context) error {
	repos, _, err := g.backend()
	if err != nil {
		return err
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return repos.Classes.Probe(ctx)
}

// publish relays a successful write. Relay failures are logged only: the
// write itself already succeeded.
func (g *Gateway) publish(ctx context.Context, relay realtime.Publisher, table string, inserted bool, key, record interface{}) {
	if relay == nil {
		return
	}

	typ := realtime.EventUpdate
	if inserted {
		typ = realtime.EventInsert
	}

	evt, err := realtime.NewEvent(table, typ, key, record)
	if err != nil {
		g.logger.Error().Err(err).Str("table", table).Msg("Failed to build change event")
		return
	}

	if err := relay.Publish(ctx, evt); err != nil {
		g.logger.Warn().Err(err).Str("table", table).Msg("Failed to relay change event")
	}
}

func fetchAll[T any](g *Gateway, ctx context.Context, table string, get func(context.Context, *repository.Repositories) ([]T, error)) []T {
	repos, _, err := g.backend()
	if err != nil {
		g.logger.Warn().Err(err).Str("table", table).Msg("Fetch skipped")
		return []T{}
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	items, err := get(ctx, repos)
	if err != nil {
		g.logger.Error().Err(err).Str("table", table).Msg("Fetch failed")
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func (g *Gateway) FetchAllClasses(ctx context.Context) []models.ClassLevel {
	return fetchAll(g, ctx, models.TableClasses, func(ctx context.Context, r *repository.Repositories) ([]models.ClassLevel, error) {
		return r.Classes.GetAll(ctx)
	})
}

func (g *Gateway) FetchAllInstructors(ctx context.Context) []models.Instructor {
	return fetchAll(g, ctx, models.TableInstructors, func(ctx context.Context, r *repository.Repositories) ([]models.Instructor, error) {
		return r.Instructors.GetAll(ctx)
	})
}

func (g *Gateway) FetchAllStudents(ctx context.Context) []models.Student {
	return fetchAll(g, ctx, models.TableStudents, func(ctx context.Context, r *repository.Repositories) ([]models.Student, error) {
		return r.Students.GetAll(ctx)
	})
}

func (g *Gateway) FetchAllSessions(ctx context.Context) []models.Session {
	return fetchAll(g, ctx, models.TableSessions, func(ctx context.Context, r *repository.Repositories) ([]models.Session, error) {
		return r.Sessions.GetAll(ctx)
	})
}

func (g *Gateway) FetchAllProgress(ctx context.Context) []models.Progress {
	return fetchAll(g, ctx, models.TableProgress, func(ctx context.Context, r *repository.Repositories) ([]models.Progress, error) {
		return r.Progress.GetAll(ctx)
	})
}

func (g *Gateway) FetchAllMessages(ctx context.Context) []models.Message {
	return fetchAll(g, ctx, models.TableMessages, func(ctx context.Context, r *repository.Repositories) ([]models.Message, error) {
		return r.Messages.GetAll(ctx)
	})
}

func (g *Gateway) FetchAllClubLogos(ctx context.Context) []models.ClubLogo {
	return fetchAll(g, ctx, models.TableClubConfig, func(ctx context.Context, r *repository.Repositories) ([]models.ClubLogo, error) {
		return r.ClubConfig.GetAll(ctx)
	})
}
