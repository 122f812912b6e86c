package realtime

import (
	"context"
	"sync"
)

// subscription is the shared Subscription implementation: a buffered output
// channel fed by one goroutine, stopped through its context.
type subscription struct {
	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	closer func() error
	err    error
}

func newSubscription(parent context.Context, buffer int, closer func() error) (*subscription, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	if buffer <= 0 {
		buffer = 16
	}
	return &subscription{
		events: make(chan Event, buffer),
		cancel: cancel,
		done:   make(chan struct{}),
		closer: closer,
	}, ctx
}

func (s *subscription) Events() <-chan Event {
	return s.events
}

// Unsubscribe stops delivery and releases the transport resources. It is
// safe to call more than once.
func (s *subscription) Unsubscribe() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		if s.closer != nil {
			s.err = s.closer()
		}
	})
	return s.err
}

// run drives the delivery loop and closes Events when it returns.
func (s *subscription) run(loop func()) {
	go func() {
		defer close(s.done)
		defer close(s.events)
		loop()
	}()
}

// emit forwards evt unless the subscription is being torn down.
func (s *subscription) emit(ctx context.Context, evt Event) bool {
	select {
	case s.events <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}
