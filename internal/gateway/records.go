package gateway

import (
	"context"
	"fmt"

	"github.com/RubachokBoss/clubtrack/internal/models"
)

// Single-record reads used to resolve key-only change notifications. A
// missing row is returned as nil without error.

func (g *Gateway) FetchStudent(ctx context.Context, id string) (*models.Student, error) {
	repos, _, err := g.backend()
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return repos.Students.GetByID(ctx, id)
}

func (g *Gateway) FetchProgress(ctx context.Context, key models.ProgressKey) (*models.Progress, error) {
	repos, _, err := g.backend()
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return repos.Progress.GetByKey(ctx, key)
}

func (g *Gateway) FetchMessage(ctx context.Context, id string) (*models.Message, error) {
	repos, _, err := g.backend()
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return repos.Messages.GetByID(ctx, id)
}

func (g *Gateway) FetchClubLogo(ctx context.Context, club models.Club) (*models.ClubLogo, error) {
	repos, _, err := g.backend()
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return repos.ClubConfig.GetByID(ctx, club)
}

func (g *Gateway) UpsertStudent(ctx context.Context, s models.Student) error {
	repos, relay, err := g.backend()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	inserted, err := repos.Students.Upsert(ctx, s)
	if err != nil {
		return err
	}
	// Только ключ: пароли не уходят в брокер, подписчики читают строку сами
	g.publish(ctx, relay, models.TableStudents, inserted, s.ID, nil)
	return nil
}

func (g *Gateway) UpsertSession(ctx context.Context, s models.Session) error {
	repos, _, err := g.backend()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	_, err = repos.Sessions.Upsert(ctx, s)
	return err
}

func (g *Gateway) UpsertClass(ctx context.Context, c models.ClassLevel) error {
	repos, _, err := g.backend()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	_, err = repos.Classes.Upsert(ctx, c)
	return err
}

func (g *Gateway) UpsertProgress(ctx context.Context, p models.Progress) error {
	repos, relay, err := g.backend()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	inserted, err := repos.Progress.Upsert(ctx, p)
	if err != nil {
		return err
	}
	g.publish(ctx, relay, models.TableProgress, inserted, p.Key(), p)
	return nil
}

func (g *Gateway) SendMessage(ctx context.Context, m models.Message) error {
	repos, relay, err := g.backend()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	if err := repos.Messages.Insert(ctx, m); err != nil {
		return err
	}
	g.publish(ctx, relay, models.TableMessages, true, m.ID, m)
	return nil
}

func (g *Gateway) MarkMessageAsRead(ctx context.Context, id string) error {
	repos, relay, err := g.backend()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	m, err := repos.Messages.MarkAsRead(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("message %s not found", id)
	}
	g.publish(ctx, relay, models.TableMessages, false, m.ID, m)
	return nil
}

func (g *Gateway) UpdateAllClassIcons(ctx context.Context, club models.Club, icon models.Icon) error {
	repos, _, err := g.backend()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	_, err = repos.Classes.UpdateIconByClub(ctx, club, icon)
	return err
}

func (g *Gateway) SyncInstructors(ctx context.Context, instructors []models.Instructor) error {
	repos, _, err := g.backend()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	return repos.Instructors.Sync(ctx, instructors)
}

// DeleteInstructor removes one instructor. ADMIN rows are never removed.
func (g *Gateway) DeleteInstructor(ctx context.Context, id string) error {
	repos, _, err := g.backend()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	return repos.Instructors.Delete(ctx, id)
}

func (g *Gateway) UpsertClubLogos(ctx context.Context, logos []models.ClubLogo) error {
	repos, relay, err := g.backend()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	for _, l := range logos {
		inserted, err := repos.ClubConfig.Upsert(ctx, l)
		if err != nil {
			return err
		}
		g.publish(ctx, relay, models.TableClubConfig, inserted, l.Club, l)
	}
	return nil
}
