package listener

import (
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/realtime"
	"github.com/RubachokBoss/clubtrack/internal/store"
)

func normalizeProgress(p models.Progress) models.Progress {
	p.CompletionDate = models.Timestamp(p.CompletionDate)
	return p
}

// mergeProgress replaces the record with the same key when it differs and
// appends it when absent.
func mergeProgress(st *store.Store, p models.Progress) bool {
	return st.Progress.Upsert(normalizeProgress(p))
}

// mergeMessage never duplicates a message and never turns a read message
// back to unread. Updates for unknown ids are ignored.
func mergeMessage(st *store.Store, typ realtime.EventType, m models.Message) bool {
	m.Timestamp = models.Timestamp(m.Timestamp)

	if typ == realtime.EventInsert {
		return st.Messages.Insert(m)
	}

	return st.Messages.Merge(m, func(existing models.Message, found bool) (models.Message, bool) {
		if !found {
			return m, false
		}
		if existing.IsRead {
			m.IsRead = true
		}
		return m, !store.Equal(existing, m)
	})
}

// mergeStudent replaces a student only when the remote copy differs and
// appends students created on other devices.
func mergeStudent(st *store.Store, s models.Student) bool {
	return st.Students.Upsert(s)
}
