package models

type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// Valid reports whether the question has four options and an answer among them.
func (q QuizQuestion) Valid() bool {
	if q.Question == "" || len(q.Options) != 4 {
		return false
	}
	return q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

type Subject struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Prerequisites string         `json:"prerequisites,omitempty"`
	Content       string         `json:"content,omitempty"`
	Quiz          []QuizQuestion `json:"quiz,omitempty"`
}

type Session struct {
	ID               string    `json:"id"`
	Club             Club      `json:"club"`
	ClassID          string    `json:"class_id"`
	Number           int       `json:"number"`
	Subjects         []Subject `json:"subjects,omitempty"`
	AvailabilityDate string    `json:"availability_date"`
}

func (s Session) SubjectIDs() []string {
	ids := make([]string, 0, len(s.Subjects))
	for _, sub := range s.Subjects {
		ids = append(ids, sub.ID)
	}
	return ids
}

func (s Session) Subject(id string) (Subject, bool) {
	for _, sub := range s.Subjects {
		if sub.ID == id {
			return sub, true
		}
	}
	return Subject{}, false
}

// AvailableOn reports whether students may open the session on the given date.
func (s Session) AvailableOn(date string) bool {
	return s.AvailabilityDate == "" || s.AvailabilityDate <= date
}
