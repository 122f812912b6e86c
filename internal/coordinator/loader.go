package coordinator

import (
	"context"
	"fmt"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"golang.org/x/sync/errgroup"
)

type snapshot struct {
	classes     []models.ClassLevel
	instructors []models.Instructor
	students    []models.Student
	sessions    []models.Session
	progress    []models.Progress
	messages    []models.Message
	logos       []models.ClubLogo
}

// Load probes the backend and, when it answers, replaces every local
// collection for which the backend returned data. Empty results never
// overwrite local data. On success the status becomes connected and the
// instructors the backend lacks are pushed once.
func (c *Coordinator) Load(ctx context.Context) error {
	c.status.Set(models.DBLoading, nil)

	if err := c.remote.Probe(ctx); err != nil {
		c.status.Set(models.DBError, err)
		c.logger.Warn().Err(err).Msg("Backend unreachable, running offline")
		return fmt.Errorf("backend probe failed: %w", err)
	}

	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { snap.classes = c.remote.FetchAllClasses(gctx); return nil })
	g.Go(func() error { snap.instructors = c.remote.FetchAllInstructors(gctx); return nil })
	g.Go(func() error { snap.students = c.remote.FetchAllStudents(gctx); return nil })
	g.Go(func() error { snap.sessions = c.remote.FetchAllSessions(gctx); return nil })
	g.Go(func() error { snap.progress = c.remote.FetchAllProgress(gctx); return nil })
	g.Go(func() error { snap.messages = c.remote.FetchAllMessages(gctx); return nil })
	g.Go(func() error { snap.logos = c.remote.FetchAllClubLogos(gctx); return nil })
	_ = g.Wait()

	c.apply(snap)
	c.status.Set(models.DBConnected, nil)

	instructors := c.store.Instructors.Snapshot()
	c.cacheInstructors(instructors)

	// Отправляем только то, чего нет на сервере (например, админа по умолчанию)
	var missing []models.Instructor
	for _, ch := range store.Diff(store.InstructorKey, snap.instructors, instructors) {
		missing = append(missing, ch.Next)
	}
	if len(missing) > 0 {
		c.pushInstructors(missing)
	}

	c.logger.Info().
		Int("classes", len(snap.classes)).
		Int("instructors", len(snap.instructors)).
		Int("students", len(snap.students)).
		Int("sessions", len(snap.sessions)).
		Int("progress", len(snap.progress)).
		Int("messages", len(snap.messages)).
		Int("logos", len(snap.logos)).
		Msg("Initial load complete")

	return nil
}

func (c *Coordinator) apply(snap snapshot) {
	st := c.store

	if len(snap.classes) > 0 {
		st.Classes.Replace(snap.classes)
	}
	if len(snap.students) > 0 {
		st.Students.Replace(snap.students)
	}
	if len(snap.sessions) > 0 {
		st.Sessions.Replace(snap.sessions)
	}
	if len(snap.progress) > 0 {
		st.Progress.Replace(snap.progress)
	}
	if len(snap.messages) > 0 {
		st.Messages.Replace(snap.messages)
	}
	if len(snap.instructors) > 0 {
		st.Instructors.Replace(snap.instructors)
	}
	if len(snap.logos) > 0 {
		st.ClubLogos.Update(func(prev []models.ClubLogo) []models.ClubLogo {
			return overlayLogos(prev, snap.logos)
		})
	}

	c.ensureAdmin()
}

// overlayLogos keeps local entries for clubs the remote does not know.
func overlayLogos(local, remote []models.ClubLogo) []models.ClubLogo {
	byClub := make(map[models.Club]string, len(remote))
	for _, l := range remote {
		byClub[l.Club] = l.Logo
	}

	out := make([]models.ClubLogo, 0, len(local)+len(remote))
	seen := make(map[models.Club]bool)
	for _, l := range local {
		if logo, ok := byClub[l.Club]; ok {
			l.Logo = logo
		}
		out = append(out, l)
		seen[l.Club] = true
	}
	for _, l := range remote {
		if !seen[l.Club] {
			out = append(out, l)
		}
	}
	return out
}

// Bootstrap fills the store for an offline start: cached instructors when
// available, the default logos and a guaranteed ADMIN account. Nothing is
// pushed.
func (c *Coordinator) Bootstrap(cached []models.Instructor) {
	if len(cached) > 0 && c.store.Instructors.Len() == 0 {
		c.store.Instructors.Replace(cached)
	}
	if c.store.ClubLogos.Len() == 0 && len(c.opts.DefaultLogos) > 0 {
		c.store.ClubLogos.Replace(c.opts.DefaultLogos)
	}
	c.ensureAdmin()
}

func (c *Coordinator) ensureAdmin() {
	admin := c.opts.DefaultAdmin
	if admin.ID == "" {
		return
	}

	c.store.Instructors.Update(func(prev []models.Instructor) []models.Instructor {
		for _, i := range prev {
			if i.Role == models.RoleAdmin {
				return prev
			}
		}
		return append(prev, admin)
	})
}
