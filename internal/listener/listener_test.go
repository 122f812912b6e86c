package listener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/realtime"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	progress map[models.ProgressKey]models.Progress
	err      error
}

func (f *fakeResolver) FetchStudent(ctx context.Context, id string) (*models.Student, error) {
	return nil, f.err
}

func (f *fakeResolver) FetchProgress(ctx context.Context, key models.ProgressKey) (*models.Progress, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.progress[key]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeResolver) FetchMessage(ctx context.Context, id string) (*models.Message, error) {
	return nil, f.err
}

func (f *fakeResolver) FetchClubLogo(ctx context.Context, club models.Club) (*models.ClubLogo, error) {
	return nil, f.err
}

// failingFeed refuses subscriptions to one table and records releases.
type failingFeed struct {
	*realtime.MemoryFeed
	failOn string
}

func (f *failingFeed) Subscribe(ctx context.Context, table string) (realtime.Subscription, error) {
	if table == f.failOn {
		return nil, errors.New("channel error")
	}
	return f.MemoryFeed.Subscribe(ctx, table)
}

func event(t *testing.T, table string, typ realtime.EventType, key, record interface{}) realtime.Event {
	t.Helper()
	evt, err := realtime.NewEvent(table, typ, key, record)
	require.NoError(t, err)
	return evt
}

func TestDuplicateMessageEchoIsIgnored(t *testing.T) {
	st := store.New()
	l := New(st, &fakeResolver{}, zerolog.Nop())
	ctx := context.Background()

	msg := models.Message{
		ID:         "m1",
		SenderID:   "st1",
		ReceiverID: models.AdminChannel,
		Content:    "Bonjour",
		Timestamp:  time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	st.Messages.Insert(msg)

	changed, err := l.Apply(ctx, event(t, models.TableMessages, realtime.EventInsert, msg.ID, msg))
	require.NoError(t, err)

	assert.False(t, changed)
	assert.Equal(t, 1, st.Messages.Len())
}

func TestMessageReadStateIsMonotonic(t *testing.T) {
	st := store.New()
	l := New(st, &fakeResolver{}, zerolog.Nop())
	ctx := context.Background()

	read := models.Message{ID: "m1", SenderID: "st1", ReceiverID: models.AdminChannel, Content: "a", IsRead: true}
	st.Messages.Insert(read)

	stale := read
	stale.IsRead = false
	changed, err := l.Apply(ctx, event(t, models.TableMessages, realtime.EventUpdate, stale.ID, stale))
	require.NoError(t, err)

	assert.False(t, changed)
	got, _ := st.Messages.Get("m1")
	assert.True(t, got.IsRead)
}

func TestMessageUpdateForUnknownIDIsIgnored(t *testing.T) {
	st := store.New()
	l := New(st, &fakeResolver{}, zerolog.Nop())

	m := models.Message{ID: "m9", SenderID: "st1", ReceiverID: models.AdminChannel, IsRead: true}
	changed, err := l.Apply(context.Background(), event(t, models.TableMessages, realtime.EventUpdate, m.ID, m))

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, st.Messages.Len())
}

func TestEqualStudentEchoKeepsVersion(t *testing.T) {
	st := store.New()
	l := New(st, &fakeResolver{}, zerolog.Nop())

	s := models.Student{ID: "st1", FullName: "Léa", ClassID: "av1", BirthDate: "2018-01-01", Age: 6}
	st.Students.Replace([]models.Student{s})
	v := st.Students.Version()

	changed, err := l.Apply(context.Background(), event(t, models.TableStudents, realtime.EventUpdate, s.ID, s))
	require.NoError(t, err)

	assert.False(t, changed)
	assert.Equal(t, v, st.Students.Version())
}

func TestStudentInsertFromAnotherDeviceIsAppended(t *testing.T) {
	st := store.New()
	l := New(st, &fakeResolver{}, zerolog.Nop())

	s := models.Student{ID: "st2", FullName: "Noé", ClassID: "ex1"}
	changed, err := l.Apply(context.Background(), event(t, models.TableStudents, realtime.EventInsert, s.ID, s))

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, st.Students.Len())
}

func TestKeyOnlyProgressIsResolved(t *testing.T) {
	st := store.New()
	key := models.ProgressKey{StudentID: "st1", SessionID: "s1"}
	remote := models.Progress{
		StudentID:         "st1",
		SessionID:         "s1",
		Score:             50,
		CompletedSubjects: []string{"sub1"},
		CompletionDate:    time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	l := New(st, &fakeResolver{progress: map[models.ProgressKey]models.Progress{key: remote}}, zerolog.Nop())

	evt := realtime.Event{Table: models.TableProgress, Type: realtime.EventUpdate, Key: []byte(`{"student_id":"st1","session_id":"s1"}`)}
	changed, err := l.Apply(context.Background(), evt)

	require.NoError(t, err)
	assert.True(t, changed)
	got, ok := st.Progress.Get(key)
	require.True(t, ok)
	assert.Equal(t, 50, got.Score)

	changed, err = l.Apply(context.Background(), evt)
	require.NoError(t, err)
	assert.False(t, changed, "second echo of the same row must be a no-op")
}

func TestClubLogoReplacesEntry(t *testing.T) {
	st := store.New()
	st.ClubLogos.Replace([]models.ClubLogo{
		{Club: models.ClubAventuriers, Logo: "/logos/av.png"},
		{Club: models.ClubExplorateurs, Logo: "/logos/ex.png"},
	})
	l := New(st, &fakeResolver{}, zerolog.Nop())

	logo := models.ClubLogo{Club: models.ClubExplorateurs, Logo: "https://cdn/ex-new.png"}
	_, err := l.Apply(context.Background(), event(t, models.TableClubConfig, realtime.EventUpdate, logo.Club, logo))
	require.NoError(t, err)

	assert.Equal(t, map[models.Club]string{
		models.ClubAventuriers:  "/logos/av.png",
		models.ClubExplorateurs: "https://cdn/ex-new.png",
	}, st.Logos())
}

func TestUnknownTable(t *testing.T) {
	l := New(store.New(), &fakeResolver{}, zerolog.Nop())

	_, err := l.Apply(context.Background(), realtime.Event{Table: "sessions", Type: realtime.EventInsert, Key: []byte(`"x"`)})

	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestStartReleasesPartialSubscriptions(t *testing.T) {
	feed := &failingFeed{MemoryFeed: realtime.NewMemoryFeed(8), failOn: models.TableMessages}
	l := New(store.New(), &fakeResolver{}, zerolog.Nop())

	err := l.Start(context.Background(), feed)

	require.Error(t, err)
	assert.False(t, l.Running())
	for _, table := range Tables {
		assert.Zero(t, feed.Subscribers(table), table)
	}
}

func TestListenerAppliesEventsInOrder(t *testing.T) {
	feed := realtime.NewMemoryFeed(8)
	defer feed.Close()

	st := store.New()
	l := New(st, &fakeResolver{}, zerolog.Nop())
	require.NoError(t, l.Start(context.Background(), feed))

	ctx := context.Background()
	base := models.Progress{StudentID: "st1", SessionID: "s1"}
	for score := 10; score <= 50; score += 10 {
		p := base
		p.Score = score
		require.NoError(t, feed.Publish(ctx, event(t, models.TableProgress, realtime.EventUpdate, p.Key(), p)))
	}

	assert.Eventually(t, func() bool {
		p, ok := st.Progress.Get(base.Key())
		return ok && p.Score == 50
	}, time.Second, 10*time.Millisecond)

	l.Stop()
	assert.False(t, l.Running())
	for _, table := range Tables {
		assert.Zero(t, feed.Subscribers(table), table)
	}
}
