// Package listener folds remote change notifications into the local store.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/realtime"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/rs/zerolog"
)

// Tables are the tables the listener subscribes to.
var Tables = []string{
	models.TableStudents,
	models.TableProgress,
	models.TableMessages,
	models.TableClubConfig,
}

var ErrUnknownTable = errors.New("unknown table")

// Resolver fetches the current row for notifications that carry only a key.
type Resolver interface {
	FetchStudent(ctx context.Context, id string) (*models.Student, error)
	FetchProgress(ctx context.Context, key models.ProgressKey) (*models.Progress, error)
	FetchMessage(ctx context.Context, id string) (*models.Message, error)
	FetchClubLogo(ctx context.Context, club models.Club) (*models.ClubLogo, error)
}

type Listener struct {
	store    *store.Store
	resolver Resolver
	logger   zerolog.Logger

	mu      sync.Mutex
	subs    []realtime.Subscription
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	applied map[string]int64
}

func New(st *store.Store, resolver Resolver, logger zerolog.Logger) *Listener {
	return &Listener{
		store:    st,
		resolver: resolver,
		logger:   logger.With().Str("component", "listener").Logger(),
		applied:  make(map[string]int64),
	}
}

// Start subscribes to every table. Either all subscriptions are acquired or
// none are kept. A running listener is stopped first.
func (l *Listener) Start(ctx context.Context, feed realtime.Feed) error {
	l.Stop()

	l.mu.Lock()
	defer l.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())

	subs := make([]realtime.Subscription, 0, len(Tables))
	for _, table := range Tables {
		sub, err := feed.Subscribe(runCtx, table)
		if err != nil {
			for _, s := range subs {
				if uerr := s.Unsubscribe(); uerr != nil {
					l.logger.Error().Err(uerr).Msg("Failed to release subscription")
				}
			}
			cancel()
			return fmt.Errorf("failed to subscribe to %s: %w", table, err)
		}
		subs = append(subs, sub)
	}

	l.subs = subs
	l.cancel = cancel

	for i, sub := range subs {
		l.wg.Add(1)
		go l.consume(runCtx, Tables[i], sub)
	}

	l.logger.Info().Strs("tables", Tables).Msg("Change feed listener started")
	return nil
}

// Stop releases every subscription and waits for the consumers to exit.
func (l *Listener) Stop() {
	l.mu.Lock()
	subs := l.subs
	cancel := l.cancel
	l.subs = nil
	l.cancel = nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			l.logger.Error().Err(err).Msg("Failed to release subscription")
		}
	}
	l.wg.Wait()

	l.logger.Info().Msg("Change feed listener stopped")
}

func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Applied returns how many events changed the store, per table.
func (l *Listener) Applied() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int64, len(l.applied))
	for k, v := range l.applied {
		out[k] = v
	}
	return out
}

func (l *Listener) consume(ctx context.Context, table string, sub realtime.Subscription) {
	defer l.wg.Done()

	for evt := range sub.Events() {
		changed, err := l.Apply(ctx, evt)
		if err != nil {
			l.logger.Error().Err(err).
				Str("table", table).
				Str("type", string(evt.Type)).
				RawJSON("key", keyOrNull(evt.Key)).
				Msg("Failed to apply change event")
			continue
		}
		if changed {
			l.mu.Lock()
			l.applied[table]++
			l.mu.Unlock()
		}
	}
}

func keyOrNull(k json.RawMessage) []byte {
	if len(k) == 0 {
		return []byte("null")
	}
	return k
}

// Apply merges one event into the store and reports whether it changed
// anything.
func (l *Listener) Apply(ctx context.Context, evt realtime.Event) (bool, error) {
	if evt.Type == realtime.EventDelete {
		// Deletions are not propagated.
		return false, nil
	}

	switch evt.Table {
	case models.TableProgress:
		p, err := record(ctx, evt, func(ctx context.Context, key models.ProgressKey) (*models.Progress, error) {
			return l.resolver.FetchProgress(ctx, key)
		})
		if err != nil || p == nil {
			return false, err
		}
		return mergeProgress(l.store, *p), nil

	case models.TableMessages:
		m, err := record(ctx, evt, func(ctx context.Context, id string) (*models.Message, error) {
			return l.resolver.FetchMessage(ctx, id)
		})
		if err != nil || m == nil {
			return false, err
		}
		return mergeMessage(l.store, evt.Type, *m), nil

	case models.TableStudents:
		s, err := record(ctx, evt, func(ctx context.Context, id string) (*models.Student, error) {
			return l.resolver.FetchStudent(ctx, id)
		})
		if err != nil || s == nil {
			return false, err
		}
		return mergeStudent(l.store, *s), nil

	case models.TableClubConfig:
		c, err := record(ctx, evt, func(ctx context.Context, club models.Club) (*models.ClubLogo, error) {
			return l.resolver.FetchClubLogo(ctx, club)
		})
		if err != nil || c == nil {
			return false, err
		}
		return l.store.ClubLogos.Upsert(*c), nil
	}

	return false, fmt.Errorf("%w: %s", ErrUnknownTable, evt.Table)
}

// record decodes the row carried by evt, or fetches it by key.
func record[K any, T any](ctx context.Context, evt realtime.Event, fetch func(context.Context, K) (*T, error)) (*T, error) {
	if evt.HasRecord() {
		var out T
		if err := json.Unmarshal(evt.Record, &out); err != nil {
			return nil, fmt.Errorf("failed to decode %s record: %w", evt.Table, err)
		}
		return &out, nil
	}

	if len(evt.Key) == 0 {
		return nil, fmt.Errorf("%s event without key or record", evt.Table)
	}

	var key K
	if err := json.Unmarshal(evt.Key, &key); err != nil {
		return nil, fmt.Errorf("failed to decode %s key: %w", evt.Table, err)
	}

	row, err := fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s row: %w", evt.Table, err)
	}
	return row, nil
}
