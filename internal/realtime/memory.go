package realtime

import (
	"context"
	"sync"
)

// MemoryFeed is an in-process feed: every published event is delivered to
// the current subscribers of its table. Used for single-device setups and
// tests.
type MemoryFeed struct {
	mu     sync.Mutex
	subs   map[string]map[*memorySub]struct{}
	buffer int
	closed bool
}

type memorySub struct {
	*subscription
	in chan Event
}

func NewMemoryFeed(buffer int) *MemoryFeed {
	return &MemoryFeed{
		subs:   make(map[string]map[*memorySub]struct{}),
		buffer: buffer,
	}
}

func (f *MemoryFeed) Subscribe(ctx context.Context, table string) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrFeedClosed
	}

	ms := &memorySub{in: make(chan Event, max(f.buffer, 16))}
	var subCtx context.Context
	ms.subscription, subCtx = newSubscription(ctx, f.buffer, func() error {
		f.remove(table, ms)
		return nil
	})

	ms.run(func() {
		for {
			select {
			case <-subCtx.Done():
				return
			case evt := <-ms.in:
				if !ms.emit(subCtx, evt) {
					return
				}
			}
		}
	})

	if f.subs[table] == nil {
		f.subs[table] = make(map[*memorySub]struct{})
	}
	f.subs[table][ms] = struct{}{}
	return ms, nil
}

func (f *MemoryFeed) remove(table string, ms *memorySub) {
	f.mu.Lock()
	delete(f.subs[table], ms)
	f.mu.Unlock()
}

// Subscribers returns the number of live subscriptions on table.
func (f *MemoryFeed) Subscribers(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[table])
}

func (f *MemoryFeed) Publish(ctx context.Context, evt Event) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFeedClosed
	}
	targets := make([]*memorySub, 0, len(f.subs[evt.Table]))
	for ms := range f.subs[evt.Table] {
		targets = append(targets, ms)
	}
	f.mu.Unlock()

	for _, ms := range targets {
		select {
		case ms.in <- evt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *MemoryFeed) Close() error {
	f.mu.Lock()
	f.closed = true
	var all []*memorySub
	for _, subs := range f.subs {
		for ms := range subs {
			all = append(all, ms)
		}
	}
	f.mu.Unlock()

	for _, ms := range all {
		ms.Unsubscribe()
	}
	return nil
}
