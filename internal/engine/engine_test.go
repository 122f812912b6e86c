package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/config"
	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/gateway"
	"github.com/RubachokBoss/clubtrack/internal/listener"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/realtime"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/RubachokBoss/clubtrack/internal/worker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu          sync.Mutex
	instructors []models.Instructor
	override    *models.ConnectionOverride
}

func (c *memCache) LoadInstructors() ([]models.Instructor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instructors, len(c.instructors) > 0
}

func (c *memCache) SaveInstructors(list []models.Instructor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instructors = list
	return nil
}

func (c *memCache) LoadConnection() (*models.ConnectionOverride, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.override, c.override != nil
}

func (c *memCache) SaveConnection(o models.ConnectionOverride) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.override = &o
	return nil
}

type device struct {
	engine   *Engine
	coord    *coordinator.Coordinator
	listener *listener.Listener
	cache    *memCache
}

var admin = models.Instructor{ID: "admin-0", FullName: "Administrateur Principal", Username: "admin", Role: models.RoleAdmin}

func newDevice(t *testing.T, dial DialFunc) *device {
	t.Helper()

	pool := worker.NewWorkerPool(2, 64, zerolog.Nop())
	require.NoError(t, pool.Start(context.Background()))

	st := store.New()
	gw := gateway.New(time.Second, zerolog.Nop())
	cache := &memCache{}
	coord := coordinator.New(st, gw, pool, cache, coordinator.Options{DefaultAdmin: admin}, zerolog.Nop())
	l := listener.New(st, gw, zerolog.Nop())
	e := New(coord, gw, l, cache, dial, time.Second, zerolog.Nop())

	t.Cleanup(func() {
		e.Close()
		pool.Stop()
	})

	return &device{engine: e, coord: coord, listener: l, cache: cache}
}

// sharedDial connects every device to the same backend and feed.
func sharedDial(b *memBackend, feed *realtime.MemoryFeed) DialFunc {
	return func(ctx context.Context, override *models.ConnectionOverride) (*Backend, error) {
		return &Backend{Repos: b.repositories(), Feed: feed, Relay: feed}, nil
	}
}

func TestStartOfflineWhenDialFails(t *testing.T) {
	dial := func(ctx context.Context, override *models.ConnectionOverride) (*Backend, error) {
		return nil, errors.New("connection refused")
	}
	d := newDevice(t, dial)
	d.cache.instructors = []models.Instructor{{ID: "i1", Username: "marie", Role: models.RoleAventuriers}}

	d.engine.Start(context.Background())

	status := d.engine.Status()
	assert.Equal(t, models.DBError, status.Status)
	assert.Contains(t, status.Error, "connection refused")
	assert.False(t, status.ListenerRunning)
	assert.Equal(t, 2, d.coord.Store().Instructors.Len())
}

func TestConnectOverrideKeptOnFailure(t *testing.T) {
	var seen *models.ConnectionOverride
	dial := func(ctx context.Context, override *models.ConnectionOverride) (*Backend, error) {
		seen = override
		return nil, errors.New("bad password")
	}
	d := newDevice(t, dial)

	override := &models.ConnectionOverride{URL: "postgres://club@db.example.org/club", Key: "secret"}
	err := d.engine.Connect(context.Background(), override)
	require.Error(t, err)

	assert.Equal(t, override, seen)
	saved, ok := d.cache.LoadConnection()
	require.True(t, ok)
	assert.Equal(t, *override, *saved)
}

func TestConnectLoadsAndListens(t *testing.T) {
	b := newMemBackend()
	b.students.upsert(models.Student{ID: "st1", FullName: "Jean Dupont", ClassID: "av1"})
	b.students.upsert(models.Student{ID: "st2", FullName: "Marie Curie", ClassID: "av1"})
	feed := realtime.NewMemoryFeed(16)

	d := newDevice(t, sharedDial(b, feed))
	d.engine.Start(context.Background())

	status := d.engine.Status()
	assert.Equal(t, models.DBConnected, status.Status)
	assert.True(t, status.ListenerRunning)
	assert.Equal(t, 2, d.coord.Store().Students.Len())
	for _, table := range listener.Tables {
		assert.Equal(t, 1, feed.Subscribers(table), table)
	}

	// Reconnecting replaces the subscriptions instead of adding to them.
	require.NoError(t, d.engine.Connect(context.Background(), nil))
	for _, table := range listener.Tables {
		assert.Equal(t, 1, feed.Subscribers(table), table)
	}

	d.coord.Flush()
	assert.Len(t, b.instructors.all(), 1)
}

func TestMessageEchoIsNotDuplicated(t *testing.T) {
	b := newMemBackend()
	b.students.upsert(models.Student{ID: "st1", FullName: "Jean Dupont", ClassID: "av1"})
	feed := realtime.NewMemoryFeed(16)

	a := newDevice(t, sharedDial(b, feed))
	other := newDevice(t, sharedDial(b, feed))
	a.engine.Start(context.Background())
	other.engine.Start(context.Background())

	msg := models.Message{ID: "m1", SenderID: "st1", ReceiverID: models.AdminChannel, Content: "Bonjour", Timestamp: models.Timestamp(time.Now())}
	a.coord.UpdateMessages(func(prev []models.Message) []models.Message { return append(prev, msg) })
	a.coord.Flush()

	require.Eventually(t, func() bool {
		return other.coord.Store().Messages.Len() == 1 && a.listener.Applied()[models.TableMessages] == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, a.coord.Store().Messages.Len())

	other.coord.UpdateMessages(func(prev []models.Message) []models.Message {
		prev[0].IsRead = true
		return prev
	})
	other.coord.Flush()

	require.Eventually(t, func() bool {
		m, ok := a.coord.Store().Messages.Get("m1")
		return ok && m.IsRead
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, a.coord.Store().Messages.Len())
}

func TestLastWriteWinsAcrossDevices(t *testing.T) {
	b := newMemBackend()
	b.students.upsert(models.Student{ID: "st1", FullName: "Jean Dupont", ClassID: "av1"})
	feed := realtime.NewMemoryFeed(16)

	a := newDevice(t, sharedDial(b, feed))
	other := newDevice(t, sharedDial(b, feed))
	a.engine.Start(context.Background())
	other.engine.Start(context.Background())

	key := models.ProgressKey{StudentID: "st1", SessionID: "s1"}
	write := func(d *device, score int, subjects ...string) {
		d.coord.UpdateProgress(func(prev []models.Progress) []models.Progress {
			return store.With(prev, models.Progress{
				StudentID: key.StudentID, SessionID: key.SessionID,
				Score: score, CompletedSubjects: subjects,
			}, store.ProgressKey)
		})
		d.coord.Flush()
	}
	scoreOn := func(d *device) int {
		p, _ := d.coord.Store().Progress.Get(key)
		return p.Score
	}

	write(a, 50, "sub1")
	require.Eventually(t, func() bool { return scoreOn(other) == 50 }, 2*time.Second, 10*time.Millisecond)

	write(other, 100, "sub1", "sub2")
	require.Eventually(t, func() bool {
		return scoreOn(a) == 100 && scoreOn(other) == 100
	}, 2*time.Second, 10*time.Millisecond)

	stored := b.progress.get(key)
	require.NotNil(t, stored)
	assert.Equal(t, 100, stored.Score)
}

func TestResolveDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: 5432, User: "club", Password: "pw", Name: "club", SSLMode: "disable"}

	tests := []struct {
		name     string
		override *models.ConnectionOverride
		want     string
		wantErr  bool
	}{
		{name: "configured", want: "postgres://club:pw@localhost:5432/club?sslmode=disable"},
		{name: "empty override", override: &models.ConnectionOverride{}, want: "postgres://club:pw@localhost:5432/club?sslmode=disable"},
		{name: "override url", override: &models.ConnectionOverride{URL: "postgres://u:p@db:5432/x"}, want: "postgres://u:p@db:5432/x"},
		{name: "override key", override: &models.ConnectionOverride{URL: "postgres://u@db/x", Key: "k"}, want: "postgres://u:k@db/x"},
		{name: "key without user", override: &models.ConnectionOverride{URL: "postgres://db/x", Key: "k"}, want: "postgres://club:k@db/x"},
		{name: "bad scheme", override: &models.ConnectionOverride{URL: "https://project.supabase.co"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDSN(cfg, tt.override)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenFeedRejectsUnknownDriver(t *testing.T) {
	_, _, err := openFeed(config.RealtimeConfig{Driver: "kafka"}, "", zerolog.Nop())
	assert.ErrorIs(t, err, ErrUnknownDriver)

	feed, relay, err := openFeed(config.RealtimeConfig{Driver: "none"}, "", zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, feed)
	assert.Nil(t, relay)
}
