package engine

import (
	"context"
	"sync"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/repository"
)

// memTable is an ordered in-memory table standing in for Postgres.
type memTable[K comparable, T any] struct {
	mu   sync.Mutex
	key  func(T) K
	rows []T
}

func (t *memTable[K, T]) all() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]T(nil), t.rows...)
}

func (t *memTable[K, T]) get(k K) *T {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if t.key(r) == k {
			out := r
			return &out
		}
	}
	return nil
}

func (t *memTable[K, T]) upsert(row T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, r := range t.rows {
		if t.key(r) == t.key(row) {
			t.rows[i] = row
			return false
		}
	}
	t.rows = append(t.rows, row)
	return true
}

type memClasses struct{ memTable[string, models.ClassLevel] }

func (m *memClasses) GetAll(ctx context.Context) ([]models.ClassLevel, error) { return m.all(), nil }
func (m *memClasses) Upsert(ctx context.Context, c models.ClassLevel) (bool, error) {
	return m.upsert(c), nil
}
func (m *memClasses) Probe(ctx context.Context) error { return nil }
func (m *memClasses) UpdateIconByClub(ctx context.Context, club models.Club, icon models.Icon) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.rows {
		if m.rows[i].Club == club {
			m.rows[i].Icon = icon
			n++
		}
	}
	return n, nil
}

type memInstructors struct{ memTable[string, models.Instructor] }

func (m *memInstructors) GetAll(ctx context.Context) ([]models.Instructor, error) { return m.all(), nil }
func (m *memInstructors) Sync(ctx context.Context, list []models.Instructor) error {
	for _, i := range list {
		m.upsert(i)
	}
	return nil
}
func (m *memInstructors) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == id && r.Role != models.RoleAdmin {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	return nil
}

type memStudents struct{ memTable[string, models.Student] }

func (m *memStudents) GetAll(ctx context.Context) ([]models.Student, error) { return m.all(), nil }
func (m *memStudents) GetByID(ctx context.Context, id string) (*models.Student, error) {
	return m.get(id), nil
}
func (m *memStudents) Upsert(ctx context.Context, s models.Student) (bool, error) {
	return m.upsert(s), nil
}

type memSessions struct{ memTable[string, models.Session] }

func (m *memSessions) GetAll(ctx context.Context) ([]models.Session, error) { return m.all(), nil }
func (m *memSessions) Upsert(ctx context.Context, s models.Session) (bool, error) {
	return m.upsert(s), nil
}

type memProgress struct{ memTable[models.ProgressKey, models.Progress] }

func (m *memProgress) GetAll(ctx context.Context) ([]models.Progress, error) { return m.all(), nil }
func (m *memProgress) GetByKey(ctx context.Context, k models.ProgressKey) (*models.Progress, error) {
	return m.get(k), nil
}
func (m *memProgress) Upsert(ctx context.Context, p models.Progress) (bool, error) {
	return m.upsert(p), nil
}

type memMessages struct{ memTable[string, models.Message] }

func (m *memMessages) GetAll(ctx context.Context) ([]models.Message, error) { return m.all(), nil }
func (m *memMessages) GetByID(ctx context.Context, id string) (*models.Message, error) {
	return m.get(id), nil
}
func (m *memMessages) Insert(ctx context.Context, msg models.Message) error {
	if m.get(msg.ID) == nil {
		m.upsert(msg)
	}
	return nil
}
func (m *memMessages) MarkAsRead(ctx context.Context, id string) (*models.Message, error) {
	msg := m.get(id)
	if msg == nil {
		return nil, nil
	}
	msg.IsRead = true
	m.upsert(*msg)
	return msg, nil
}

type memLogos struct{ memTable[models.Club, models.ClubLogo] }

func (m *memLogos) GetAll(ctx context.Context) ([]models.ClubLogo, error) { return m.all(), nil }
func (m *memLogos) GetByID(ctx context.Context, club models.Club) (*models.ClubLogo, error) {
	return m.get(club), nil
}
func (m *memLogos) Upsert(ctx context.Context, l models.ClubLogo) (bool, error) {
	return m.upsert(l), nil
}

type memBackend struct {
	classes     *memClasses
	instructors *memInstructors
	students    *memStudents
	sessions    *memSessions
	progress    *memProgress
	messages    *memMessages
	logos       *memLogos
}

func newMemBackend() *memBackend {
	b := &memBackend{
		classes:     &memClasses{},
		instructors: &memInstructors{},
		students:    &memStudents{},
		sessions:    &memSessions{},
		progress:    &memProgress{},
		messages:    &memMessages{},
		logos:       &memLogos{},
	}
	b.classes.key = func(c models.ClassLevel) string { return c.ID }
	b.instructors.key = func(i models.Instructor) string { return i.ID }
	b.students.key = func(s models.Student) string { return s.ID }
	b.sessions.key = func(s models.Session) string { return s.ID }
	b.progress.key = func(p models.Progress) models.ProgressKey { return p.Key() }
	b.messages.key = func(m models.Message) string { return m.ID }
	b.logos.key = func(l models.ClubLogo) models.Club { return l.Club }
	return b
}

func (b *memBackend) repositories() *repository.Repositories {
	return &repository.Repositories{
		Classes:     b.classes,
		Instructors: b.instructors,
		Students:    b.students,
		Sessions:    b.sessions,
		Progress:    b.progress,
		Messages:    b.messages,
		ClubConfig:  b.logos,
	}
}
