// Package coordinator wraps every local mutation: it commits the change to
// the store, works out which records changed and pushes them to the remote
// backend in the background when the backend is reachable.
package coordinator

import (
	"context"
	"sync/atomic"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/RubachokBoss/clubtrack/internal/worker"
	"github.com/rs/zerolog"
)

// Remote is the part of the gateway the coordinator depends on.
type Remote interface {
	Probe(ctx context.Context) error

	FetchAllClasses(ctx context.Context) []models.ClassLevel
	FetchAllInstructors(ctx context.Context) []models.Instructor
	FetchAllStudents(ctx context.Context) []models.Student
	FetchAllSessions(ctx context.Context) []models.Session
	FetchAllProgress(ctx context.Context) []models.Progress
	FetchAllMessages(ctx context.Context) []models.Message
	FetchAllClubLogos(ctx context.Context) []models.ClubLogo

	UpsertStudent(ctx context.Context, s models.Student) error
	UpsertSession(ctx context.Context, s models.Session) error
	UpsertClass(ctx context.Context, c models.ClassLevel) error
	UpsertProgress(ctx context.Context, p models.Progress) error
	SendMessage(ctx context.Context, m models.Message) error
	MarkMessageAsRead(ctx context.Context, id string) error
	UpdateAllClassIcons(ctx context.Context, club models.Club, icon models.Icon) error
	SyncInstructors(ctx context.Context, instructors []models.Instructor) error
	DeleteInstructor(ctx context.Context, id string) error
	UpsertClubLogos(ctx context.Context, logos []models.ClubLogo) error
}

// InstructorCache keeps the instructors list available for offline starts.
type InstructorCache interface {
	SaveInstructors(list []models.Instructor) error
}

type Options struct {
	// DefaultAdmin is added whenever no ADMIN instructor exists.
	DefaultAdmin models.Instructor
	// DefaultLogos are used for clubs without a stored logo.
	DefaultLogos []models.ClubLogo
}

type Coordinator struct {
	store  *store.Store
	remote Remote
	pool   *worker.WorkerPool
	cache  InstructorCache
	status *StatusTracker
	opts   Options
	logger zerolog.Logger

	submitted atomic.Int64
	failures  atomic.Int64
}

func New(
	st *store.Store,
	remote Remote,
	pool *worker.WorkerPool,
	cache InstructorCache,
	opts Options,
	logger zerolog.Logger,
) *Coordinator {
	return &Coordinator{
		store:  st,
		remote: remote,
		pool:   pool,
		cache:  cache,
		status: NewStatusTracker(),
		opts:   opts,
		logger: logger.With().Str("component", "coordinator").Logger(),
	}
}

func (c *Coordinator) Store() *store.Store {
	return c.store
}

func (c *Coordinator) Status() *StatusTracker {
	return c.status
}

func (c *Coordinator) Online() bool {
	return c.status.Get() == models.DBConnected
}

// Stats returns the number of pushes submitted and the number that failed.
func (c *Coordinator) Stats() (submitted, failures int64) {
	return c.submitted.Load(), c.failures.Load()
}

// QueueStats reports the push worker pool state.
func (c *Coordinator) QueueStats() map[string]interface{} {
	return c.pool.GetStats()
}

// Flush waits for every queued push to finish.
func (c *Coordinator) Flush() {
	c.pool.Wait()
}

// push queues a remote write. Writes sharing table and key run in order.
// Failures are logged and counted; local state is never rolled back.
func (c *Coordinator) push(table, key string, op func(ctx context.Context) error) {
	c.submitted.Add(1)

	ok := c.pool.SubmitKeyed(table+"/"+key, func() {
		if err := op(context.Background()); err != nil {
			c.failures.Add(1)
			c.logger.Error().Err(err).
				Str("table", table).
				Str("key", key).
				Msg("Remote write failed")
		}
	})
	if !ok {
		c.failures.Add(1)
		c.logger.Error().
			Str("table", table).
			Str("key", key).
			Msg("Remote write dropped")
	}
}

// update commits fn to col and, when online, hands the before and after
// snapshots to push. Pushes are queued under the collection lock so they
// reach the worker queues in commit order.
func update[K comparable, T any](c *Coordinator, col *store.Collection[K, T], fn func([]T) []T, push func(prev, next []T)) []T {
	_, next := col.UpdateThen(fn, func(prev, next []T) {
		if push != nil && c.Online() {
			push(prev, next)
		}
	})
	return next
}

func progressKey(k models.ProgressKey) string {
	return k.StudentID + ":" + k.SessionID
}
