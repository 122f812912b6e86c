// Package engine owns the backend connection lifecycle of a device: it dials
// the backend, attaches the gateway, runs the initial load and keeps the
// change feed listener running while connected.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/gateway"
	"github.com/RubachokBoss/clubtrack/internal/listener"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/realtime"
	"github.com/RubachokBoss/clubtrack/internal/repository"
	"github.com/rs/zerolog"
)

// Backend is one live connection to the remote backend.
type Backend struct {
	Repos *repository.Repositories
	// Feed is nil when realtime is disabled.
	Feed realtime.Feed
	// Relay republishes gateway writes; nil when the database notifies by itself.
	Relay realtime.Publisher
	Close func() error
}

// DialFunc opens a backend. override is nil when the configured backend
// should be used.
type DialFunc func(ctx context.Context, override *models.ConnectionOverride) (*Backend, error)

// DeviceCache is the part of the device cache the engine reads and writes.
type DeviceCache interface {
	LoadInstructors() ([]models.Instructor, bool)
	LoadConnection() (*models.ConnectionOverride, bool)
	SaveConnection(o models.ConnectionOverride) error
}

type Engine struct {
	coord    *coordinator.Coordinator
	gateway  *gateway.Gateway
	listener *listener.Listener
	cache    DeviceCache
	dial     DialFunc
	timeout  time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	backend *Backend
}

func New(
	coord *coordinator.Coordinator,
	gw *gateway.Gateway,
	l *listener.Listener,
	cache DeviceCache,
	dial DialFunc,
	timeout time.Duration,
	logger zerolog.Logger,
) *Engine {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Engine{
		coord:    coord,
		gateway:  gw,
		listener: l,
		cache:    cache,
		dial:     dial,
		timeout:  timeout,
		logger:   logger.With().Str("component", "engine").Logger(),
	}
}

// Start seeds the store for offline use and tries to connect once, using the
// saved connection override when there is one. A failed connection leaves
// the device offline and is not an error.
func (e *Engine) Start(ctx context.Context) {
	cached, _ := e.cache.LoadInstructors()
	e.coord.Bootstrap(cached)

	override, _ := e.cache.LoadConnection()
	if err := e.connect(ctx, override); err != nil {
		e.logger.Warn().Err(err).Msg("Starting offline")
	}
}

// Connect is the manual connect action. The override is saved before the
// attempt, so it is kept even when the attempt fails.
func (e *Engine) Connect(ctx context.Context, override *models.ConnectionOverride) error {
	if override != nil {
		if err := e.cache.SaveConnection(*override); err != nil {
			e.logger.Error().Err(err).Msg("Failed to save connection override")
		}
	}
	return e.connect(ctx, override)
}

func (e *Engine) connect(ctx context.Context, override *models.ConnectionOverride) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.teardown()

	e.coord.Status().Set(models.DBLoading, nil)

	dialCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	backend, err := e.dial(dialCtx, override)
	if err != nil {
		e.coord.Status().Set(models.DBError, err)
		return fmt.Errorf("failed to dial backend: %w", err)
	}

	e.gateway.Attach(backend.Repos, backend.Relay)

	if err := e.coord.Load(ctx); err != nil {
		e.gateway.Detach()
		closeBackend(backend, e.logger)
		return err
	}

	if backend.Feed != nil {
		if err := e.listener.Start(ctx, backend.Feed); err != nil {
			// Writes still go through; only live updates are missing.
			e.logger.Error().Err(err).Msg("Change feed unavailable")
		}
	}

	e.backend = backend
	e.logger.Info().Bool("override", override != nil).Msg("Backend connected")
	return nil
}

// teardown releases the current backend. Callers hold mu.
func (e *Engine) teardown() {
	e.listener.Stop()
	e.gateway.Detach()
	if e.backend != nil {
		closeBackend(e.backend, e.logger)
		e.backend = nil
	}
}

func closeBackend(b *Backend, logger zerolog.Logger) {
	if b.Close == nil {
		return
	}
	if err := b.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close backend")
	}
}

func (e *Engine) Status() models.StatusResponse {
	status, errMsg, _ := e.coord.Status().Snapshot()
	submitted, failures := e.coord.Stats()
	return models.StatusResponse{
		Status:          status,
		Error:           errMsg,
		ListenerRunning: e.listener.Running(),
		PushesSubmitted: submitted,
		PushFailures:    failures,
		Queue:           e.coord.QueueStats(),
	}
}

// Close waits for queued pushes and disconnects.
func (e *Engine) Close() {
	e.coord.Flush()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardown()
}
