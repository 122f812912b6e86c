package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PGNotifyFeed listens on the channels fed by the notify_club_change trigger.
// Payloads carry the row key only.
type PGNotifyFeed struct {
	dsn    string
	prefix string
	buffer int
	logger zerolog.Logger

	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

func NewPGNotifyFeed(dsn, prefix string, buffer int, logger zerolog.Logger) *PGNotifyFeed {
	return &PGNotifyFeed{
		dsn:    dsn,
		prefix: prefix,
		buffer: buffer,
		logger: logger.With().Str("component", "pgnotify_feed").Logger(),
		subs:   make(map[*subscription]struct{}),
	}
}

func (f *PGNotifyFeed) Subscribe(ctx context.Context, table string) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrFeedClosed
	}

	channel := channelName(f.prefix, "_", table)
	logger := f.logger.With().Str("channel", channel).Logger()

	listener := pq.NewListener(f.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn().Err(err).Int("event", int(ev)).Msg("Postgres listener event")
		}
	})
	if err := listener.Listen(channel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", channel, err)
	}

	var sub *subscription
	sub, subCtx := newSubscription(ctx, f.buffer, func() error {
		f.forget(sub)
		return listener.Close()
	})

	sub.run(func() {
		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-subCtx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					logger.Warn().Msg("Postgres notification channel closed")
					return
				}
				if n == nil {
					// Connection was re-established; notifications may have been missed.
					logger.Info().Msg("Postgres listener reconnected")
					continue
				}
				evt, err := DecodeEvent([]byte(n.Extra))
				if err != nil {
					logger.Error().Err(err).Str("payload", n.Extra).Msg("Dropping malformed notification")
					continue
				}
				if !sub.emit(subCtx, evt) {
					return
				}
			case <-ping.C:
				go listener.Ping()
			}
		}
	})

	f.subs[sub] = struct{}{}
	logger.Info().Msg("Subscribed to Postgres notifications")
	return sub, nil
}

func (f *PGNotifyFeed) forget(sub *subscription) {
	f.mu.Lock()
	delete(f.subs, sub)
	f.mu.Unlock()
}

func (f *PGNotifyFeed) Close() error {
	f.mu.Lock()
	f.closed = true
	subs := make([]*subscription, 0, len(f.subs))
	for s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.Unlock()

	for _, s := range subs {
		if err := s.Unsubscribe(); err != nil {
			f.logger.Error().Err(err).Msg("Failed to close Postgres listener")
		}
	}
	return nil
}
