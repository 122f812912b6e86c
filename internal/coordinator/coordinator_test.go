package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/progress"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/RubachokBoss/clubtrack/internal/worker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op  string
	key string
}

type fakeRemote struct {
	mu       sync.Mutex
	calls    []call
	probeErr error
	writeErr error

	students    []models.Student
	instructors []models.Instructor
	logos       []models.ClubLogo
	progress    []models.Progress
	scores      []int
}

func (f *fakeRemote) record(op, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op, key})
	return f.writeErr
}

func (f *fakeRemote) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeRemote) Probe(ctx context.Context) error { return f.probeErr }

func (f *fakeRemote) FetchAllClasses(ctx context.Context) []models.ClassLevel { return []models.ClassLevel{} }
func (f *fakeRemote) FetchAllInstructors(ctx context.Context) []models.Instructor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Instructor{}, f.instructors...)
}
func (f *fakeRemote) FetchAllStudents(ctx context.Context) []models.Student { return f.students }
func (f *fakeRemote) FetchAllSessions(ctx context.Context) []models.Session { return []models.Session{} }
func (f *fakeRemote) FetchAllProgress(ctx context.Context) []models.Progress { return f.progress }
func (f *fakeRemote) FetchAllMessages(ctx context.Context) []models.Message { return []models.Message{} }
func (f *fakeRemote) FetchAllClubLogos(ctx context.Context) []models.ClubLogo { return f.logos }

func (f *fakeRemote) UpsertStudent(ctx context.Context, s models.Student) error {
	return f.record("upsert_student", s.ID)
}

func (f *fakeRemote) UpsertSession(ctx context.Context, s models.Session) error {
	return f.record("upsert_session", s.ID)
}

func (f *fakeRemote) UpsertClass(ctx context.Context, c models.ClassLevel) error {
	return f.record("upsert_class", c.ID)
}

func (f *fakeRemote) UpsertProgress(ctx context.Context, p models.Progress) error {
	f.mu.Lock()
	f.scores = append(f.scores, p.Score)
	f.mu.Unlock()
	return f.record("upsert_progress", progressKey(p.Key()))
}

func (f *fakeRemote) SendMessage(ctx context.Context, m models.Message) error {
	return f.record("send_message", m.ID)
}

func (f *fakeRemote) MarkMessageAsRead(ctx context.Context, id string) error {
	return f.record("mark_read", id)
}

func (f *fakeRemote) UpdateAllClassIcons(ctx context.Context, club models.Club, icon models.Icon) error {
	return f.record("club_icons", string(club)+"="+icon.Value)
}

// SyncInstructors upserts like the instructors repository does.
func (f *fakeRemote) SyncInstructors(ctx context.Context, list []models.Instructor) error {
	f.mu.Lock()
	for _, i := range list {
		f.instructors = store.With(f.instructors, i, store.InstructorKey)
	}
	f.mu.Unlock()
	return f.record("sync_instructors", "")
}

func (f *fakeRemote) DeleteInstructor(ctx context.Context, id string) error {
	f.mu.Lock()
	if i, ok := f.instructor(id); ok && i.Role != models.RoleAdmin {
		f.instructors = store.Without(f.instructors, id, store.InstructorKey)
	}
	f.mu.Unlock()
	return f.record("delete_instructor", id)
}

func (f *fakeRemote) instructor(id string) (models.Instructor, bool) {
	for _, i := range f.instructors {
		if i.ID == id {
			return i, true
		}
	}
	return models.Instructor{}, false
}

func (f *fakeRemote) instructorIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.instructors))
	for _, i := range f.instructors {
		ids = append(ids, i.ID)
	}
	return ids
}

func (f *fakeRemote) UpsertClubLogos(ctx context.Context, logos []models.ClubLogo) error {
	return f.record("club_logos", "")
}

type memCache struct {
	mu    sync.Mutex
	saved [][]models.Instructor
}

func (m *memCache) SaveInstructors(list []models.Instructor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, list)
	return nil
}

var admin = models.Instructor{ID: "admin-0", FullName: "Administrateur Principal", Username: "admin", Role: models.RoleAdmin}

func newCoordinator(t *testing.T, remote *fakeRemote) (*Coordinator, *memCache) {
	t.Helper()
	pool := worker.NewWorkerPool(4, 64, zerolog.Nop())
	require.NoError(t, pool.Start(context.Background()))
	t.Cleanup(func() { pool.Stop() })

	cache := &memCache{}
	c := New(store.New(), remote, pool, cache, Options{DefaultAdmin: admin}, zerolog.Nop())
	return c, cache
}

func connect(t *testing.T, c *Coordinator, remote *fakeRemote) {
	t.Helper()
	require.NoError(t, c.Load(context.Background()))
	c.Flush()
	remote.mu.Lock()
	remote.calls = nil
	remote.mu.Unlock()
}

func TestOfflineMutationsStayLocal(t *testing.T) {
	remote := &fakeRemote{probeErr: errors.New("dial tcp: connection refused")}
	c, _ := newCoordinator(t, remote)

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.DBError, c.Status().Get())

	subjects := []string{"sub1", "sub2"}
	c.UpdateProgress(func(prev []models.Progress) []models.Progress {
		p := models.Progress{StudentID: "st1", SessionID: "s1"}
		p = progress.Apply(p, progress.Toggle(subjects, nil, "sub1", time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)))
		return store.With(prev, p, store.ProgressKey)
	})
	c.Flush()

	got, ok := c.Store().Progress.Get(models.ProgressKey{StudentID: "st1", SessionID: "s1"})
	require.True(t, ok)
	assert.Equal(t, 50, got.Score)
	assert.Empty(t, remote.Calls())
}

func TestEmptyRemoteKeepsLocalData(t *testing.T) {
	remote := &fakeRemote{students: []models.Student{}}
	c, _ := newCoordinator(t, remote)

	local := make([]models.Student, 5)
	for i := range local {
		local[i] = models.Student{ID: string(rune('a' + i)), FullName: "Élève"}
	}
	c.Store().Students.Replace(local)

	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, 5, c.Store().Students.Len())
	assert.Equal(t, models.DBConnected, c.Status().Get())
}

func TestLoadEnsuresAdminAndPushesInstructors(t *testing.T) {
	remote := &fakeRemote{
		instructors: []models.Instructor{{ID: "i1", Username: "marie", Role: models.RoleAventuriers}},
	}
	c, cache := newCoordinator(t, remote)

	require.NoError(t, c.Load(context.Background()))
	c.Flush()

	_, ok := c.Store().Instructors.Get("admin-0")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Store().Instructors.Len())
	assert.Contains(t, remote.Calls(), call{"sync_instructors", ""})
	assert.NotEmpty(t, cache.saved)
}

func TestLoadOverlaysRemoteLogos(t *testing.T) {
	remote := &fakeRemote{logos: []models.ClubLogo{{Club: models.ClubExplorateurs, Logo: "https://cdn/ex.png"}}}
	c, _ := newCoordinator(t, remote)
	c.opts.DefaultLogos = []models.ClubLogo{
		{Club: models.ClubAventuriers, Logo: "/logos/av.png"},
		{Club: models.ClubExplorateurs, Logo: "/logos/ex.png"},
	}
	c.Bootstrap(nil)

	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, map[models.Club]string{
		models.ClubAventuriers:  "/logos/av.png",
		models.ClubExplorateurs: "https://cdn/ex.png",
	}, c.Store().Logos())
}

func TestEveryChangedRecordIsPushed(t *testing.T) {
	remote := &fakeRemote{}
	c, _ := newCoordinator(t, remote)
	c.Store().Students.Replace([]models.Student{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	connect(t, c, remote)

	c.UpdateStudents(func(prev []models.Student) []models.Student {
		prev[0].FullName = "A"
		prev[2].FullName = "C"
		return append(prev, models.Student{ID: "d"})
	})
	c.Flush()

	calls := remote.Calls()
	assert.ElementsMatch(t, []call{
		{"upsert_student", "a"},
		{"upsert_student", "c"},
		{"upsert_student", "d"},
	}, calls)
}

func TestMessagePushes(t *testing.T) {
	remote := &fakeRemote{}
	c, _ := newCoordinator(t, remote)
	c.Store().Messages.Replace([]models.Message{{ID: "m1", SenderID: "st1", ReceiverID: models.AdminChannel}})
	connect(t, c, remote)

	c.UpdateMessages(func(prev []models.Message) []models.Message {
		prev[0].IsRead = true
		return append(prev, models.Message{ID: "m2", SenderID: models.AdminChannel, ReceiverID: "st1"})
	})
	c.Flush()

	assert.ElementsMatch(t, []call{
		{"mark_read", "m1"},
		{"send_message", "m2"},
	}, remote.Calls())
}

func TestClubIconsApplyToAll(t *testing.T) {
	remote := &fakeRemote{}
	c, _ := newCoordinator(t, remote)
	c.Store().Classes.Replace([]models.ClassLevel{
		{ID: "av1", Club: models.ClubAventuriers, Icon: models.EmojiIcon("🐑")},
		{ID: "av2", Club: models.ClubAventuriers, Icon: models.EmojiIcon("🦫")},
		{ID: "ex1", Club: models.ClubExplorateurs, Icon: models.EmojiIcon("🤝")},
	})
	connect(t, c, remote)

	c.UpdateClubIcons(models.ClubAventuriers, models.EmojiIcon("⭐"))
	c.Flush()

	for _, id := range []string{"av1", "av2"} {
		cl, _ := c.Store().Classes.Get(id)
		assert.Equal(t, "⭐", cl.Icon.Value, id)
	}
	ex, _ := c.Store().Classes.Get("ex1")
	assert.Equal(t, "🤝", ex.Icon.Value)
	assert.Equal(t, []call{{"club_icons", "AVENTURIERS=⭐"}}, remote.Calls())
}

func TestInstructorsAreCachedOffline(t *testing.T) {
	remote := &fakeRemote{probeErr: errors.New("offline")}
	c, cache := newCoordinator(t, remote)
	_ = c.Load(context.Background())

	c.UpdateInstructors(func(prev []models.Instructor) []models.Instructor {
		return append(prev, models.Instructor{ID: "i2", Username: "paul", Role: models.RoleExplorateurs})
	})
	c.Flush()

	require.Len(t, cache.saved, 1)
	assert.Len(t, cache.saved[0], 1)
	assert.Empty(t, remote.Calls())
}

func TestWriteFailuresAreCountedNotReturned(t *testing.T) {
	remote := &fakeRemote{}
	c, _ := newCoordinator(t, remote)
	connect(t, c, remote)
	remote.writeErr = errors.New("timeout")

	next := c.UpdateSessions(func(prev []models.Session) []models.Session {
		return append(prev, models.Session{ID: "s1", ClassID: "av1", Number: 1})
	})
	c.Flush()

	assert.Len(t, next, 1)
	assert.Equal(t, 1, c.Store().Sessions.Len())
	_, failures := c.Stats()
	assert.Equal(t, int64(1), failures)
}

func TestPushesForOneRecordKeepOrder(t *testing.T) {
	remote := &fakeRemote{}
	c, _ := newCoordinator(t, remote)
	connect(t, c, remote)

	key := models.ProgressKey{StudentID: "st1", SessionID: "s1"}
	for score := 1; score <= 30; score++ {
		c.UpdateProgress(func(prev []models.Progress) []models.Progress {
			return store.With(prev, models.Progress{StudentID: key.StudentID, SessionID: key.SessionID, Score: score}, store.ProgressKey)
		})
	}
	c.Flush()

	require.Len(t, remote.scores, 30)
	for i, s := range remote.scores {
		assert.Equal(t, i+1, s)
	}
}

func TestSetReplacesCollection(t *testing.T) {
	remote := &fakeRemote{}
	c, _ := newCoordinator(t, remote)
	c.Store().Sessions.Replace([]models.Session{{ID: "s1", Number: 1}})
	connect(t, c, remote)

	next := c.SetSessions([]models.Session{{ID: "s1", Number: 1}, {ID: "s2", Number: 2}})
	c.SetClubLogos([]models.ClubLogo{{Club: models.ClubAventuriers, Logo: "/a.png"}})
	c.Flush()

	assert.Len(t, next, 2)
	assert.Equal(t, 2, c.Store().Sessions.Len())
	assert.ElementsMatch(t, []call{
		{"upsert_session", "s2"},
		{"club_logos", ""},
	}, remote.Calls())
}

func TestLoadSkipsInstructorsTheBackendHas(t *testing.T) {
	remote := &fakeRemote{
		instructors: []models.Instructor{admin, {ID: "i1", Username: "marie", Role: models.RoleAventuriers}},
	}
	c, _ := newCoordinator(t, remote)

	require.NoError(t, c.Load(context.Background()))
	c.Flush()

	assert.Empty(t, remote.Calls())
}

func TestInstructorEditsFromTwoDevicesConverge(t *testing.T) {
	remote := &fakeRemote{}
	a, _ := newCoordinator(t, remote)
	b, _ := newCoordinator(t, remote)
	connect(t, a, remote)
	connect(t, b, remote)

	a.UpdateInstructors(func(prev []models.Instructor) []models.Instructor {
		return append(prev, models.Instructor{ID: "x", Username: "xavier", Role: models.RoleAventuriers})
	})
	a.Flush()
	require.ElementsMatch(t, []string{"admin-0", "x"}, remote.instructorIDs())

	// b loaded before x existed and never heard of it
	b.UpdateInstructors(func(prev []models.Instructor) []models.Instructor {
		return append(prev, models.Instructor{ID: "y", Username: "yvonne", Role: models.RoleExplorateurs})
	})
	b.Flush()
	assert.ElementsMatch(t, []string{"admin-0", "x", "y"}, remote.instructorIDs())

	b.UpdateInstructors(func(prev []models.Instructor) []models.Instructor {
		return store.Without(prev, "y", store.InstructorKey)
	})
	b.Flush()
	assert.ElementsMatch(t, []string{"admin-0", "x"}, remote.instructorIDs())
	assert.Contains(t, remote.Calls(), call{"delete_instructor", "y"})
}

func TestConcurrentMutatorsPushInCommitOrder(t *testing.T) {
	remote := &fakeRemote{}
	c, _ := newCoordinator(t, remote)
	connect(t, c, remote)

	key := models.ProgressKey{StudentID: "st1", SessionID: "s1"}
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				c.UpdateProgress(func(prev []models.Progress) []models.Progress {
					var p models.Progress
					for _, it := range prev {
						if it.Key() == key {
							p = it
						}
					}
					p.StudentID, p.SessionID = key.StudentID, key.SessionID
					p.Score++
					return store.With(prev, p, store.ProgressKey)
				})
			}
		}()
	}
	wg.Wait()
	c.Flush()

	local, ok := c.Store().Progress.Get(key)
	require.True(t, ok)
	assert.Equal(t, 80, local.Score)

	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.Len(t, remote.scores, 80)
	for i, s := range remote.scores {
		assert.Equal(t, i+1, s)
	}
}
