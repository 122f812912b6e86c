package coordinator

import (
	"context"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/store"
)

func (c *Coordinator) UpdateStudents(fn func([]models.Student) []models.Student) []models.Student {
	return update(c, c.store.Students, fn, func(prev, next []models.Student) {
		for _, ch := range store.Diff(store.StudentKey, prev, next) {
			s := ch.Next
			c.push(models.TableStudents, s.ID, func(ctx context.Context) error {
				return c.remote.UpsertStudent(ctx, s)
			})
		}
	})
}

func (c *Coordinator) SetStudents(next []models.Student) []models.Student {
	return c.UpdateStudents(func([]models.Student) []models.Student { return next })
}

func (c *Coordinator) UpdateSessions(fn func([]models.Session) []models.Session) []models.Session {
	return update(c, c.store.Sessions, fn, func(prev, next []models.Session) {
		for _, ch := range store.Diff(store.SessionKey, prev, next) {
			s := ch.Next
			c.push(models.TableSessions, s.ID, func(ctx context.Context) error {
				return c.remote.UpsertSession(ctx, s)
			})
		}
	})
}

func (c *Coordinator) SetSessions(next []models.Session) []models.Session {
	return c.UpdateSessions(func([]models.Session) []models.Session { return next })
}

func (c *Coordinator) UpdateClasses(fn func([]models.ClassLevel) []models.ClassLevel) []models.ClassLevel {
	return update(c, c.store.Classes, fn, func(prev, next []models.ClassLevel) {
		for _, ch := range store.Diff(store.ClassKey, prev, next) {
			cl := ch.Next
			c.push(models.TableClasses, cl.ID, func(ctx context.Context) error {
				return c.remote.UpsertClass(ctx, cl)
			})
		}
	})
}

func (c *Coordinator) SetClasses(next []models.ClassLevel) []models.ClassLevel {
	return c.UpdateClasses(func([]models.ClassLevel) []models.ClassLevel { return next })
}

// UpdateClubIcons sets icon on every class of club locally and pushes a
// single bulk update.
func (c *Coordinator) UpdateClubIcons(club models.Club, icon models.Icon) []models.ClassLevel {
	return update(c, c.store.Classes, func(prev []models.ClassLevel) []models.ClassLevel {
		for i := range prev {
			if prev[i].Club == club {
				prev[i].Icon = icon
			}
		}
		return prev
	}, func(prev, next []models.ClassLevel) {
		if len(store.Diff(store.ClassKey, prev, next)) == 0 {
			return
		}
		c.push(models.TableClasses, "club:"+string(club), func(ctx context.Context) error {
			return c.remote.UpdateAllClassIcons(ctx, club, icon)
		})
	})
}

func (c *Coordinator) UpdateProgress(fn func([]models.Progress) []models.Progress) []models.Progress {
	return update(c, c.store.Progress, fn, func(prev, next []models.Progress) {
		for _, ch := range store.Diff(store.ProgressKey, prev, next) {
			p := ch.Next
			c.push(models.TableProgress, progressKey(p.Key()), func(ctx context.Context) error {
				return c.remote.UpsertProgress(ctx, p)
			})
		}
	})
}

func (c *Coordinator) SetProgress(next []models.Progress) []models.Progress {
	return c.UpdateProgress(func([]models.Progress) []models.Progress { return next })
}

// UpdateMessages sends messages that are new and marks as read the ones
// whose read flag was raised.
func (c *Coordinator) UpdateMessages(fn func([]models.Message) []models.Message) []models.Message {
	return update(c, c.store.Messages, fn, func(prev, next []models.Message) {
		for _, ch := range store.Diff(store.MessageKey, prev, next) {
			m := ch.Next
			switch {
			case ch.Added:
				c.push(models.TableMessages, m.ID, func(ctx context.Context) error {
					return c.remote.SendMessage(ctx, m)
				})
			case m.IsRead && !ch.Prev.IsRead:
				c.push(models.TableMessages, m.ID, func(ctx context.Context) error {
					return c.remote.MarkMessageAsRead(ctx, m.ID)
				})
			}
		}
	})
}

func (c *Coordinator) SetMessages(next []models.Message) []models.Message {
	return c.UpdateMessages(func([]models.Message) []models.Message { return next })
}

// UpdateInstructors writes the list to the device cache on every call.
// Remotely, new and changed instructors are upserted and each removed one is
// deleted by id, so rows added by other devices survive.
func (c *Coordinator) UpdateInstructors(fn func([]models.Instructor) []models.Instructor) []models.Instructor {
	next := update(c, c.store.Instructors, fn, func(prev, next []models.Instructor) {
		var changed []models.Instructor
		for _, ch := range store.Diff(store.InstructorKey, prev, next) {
			changed = append(changed, ch.Next)
		}
		if len(changed) > 0 {
			c.pushInstructors(changed)
		}
		for _, id := range store.Removed(store.InstructorKey, prev, next) {
			id := id
			c.push(models.TableInstructors, "all", func(ctx context.Context) error {
				return c.remote.DeleteInstructor(ctx, id)
			})
		}
	})
	c.cacheInstructors(next)
	return next
}

func (c *Coordinator) SetInstructors(next []models.Instructor) []models.Instructor {
	return c.UpdateInstructors(func([]models.Instructor) []models.Instructor { return next })
}

func (c *Coordinator) pushInstructors(list []models.Instructor) {
	c.push(models.TableInstructors, "all", func(ctx context.Context) error {
		return c.remote.SyncInstructors(ctx, list)
	})
}

func (c *Coordinator) cacheInstructors(list []models.Instructor) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SaveInstructors(list); err != nil {
		c.logger.Error().Err(err).Msg("Failed to cache instructors")
	}
}

// UpdateClubLogos pushes the whole logo mapping when any entry changed.
func (c *Coordinator) UpdateClubLogos(fn func([]models.ClubLogo) []models.ClubLogo) []models.ClubLogo {
	return update(c, c.store.ClubLogos, fn, func(prev, next []models.ClubLogo) {
		if len(store.Diff(store.ClubLogoKey, prev, next)) == 0 {
			return
		}
		c.push(models.TableClubConfig, "all", func(ctx context.Context) error {
			return c.remote.UpsertClubLogos(ctx, next)
		})
	})
}

func (c *Coordinator) SetClubLogos(next []models.ClubLogo) []models.ClubLogo {
	return c.UpdateClubLogos(func([]models.ClubLogo) []models.ClubLogo { return next })
}
