package models

import "time"

type ProgressKey struct {
	StudentID string `json:"student_id"`
	SessionID string `json:"session_id"`
}

type Progress struct {
	StudentID         string    `json:"student_id"`
	SessionID         string    `json:"session_id"`
	Score             int       `json:"score"`
	Completed         bool      `json:"completed"`
	CompletedSubjects []string  `json:"completed_subjects,omitempty"`
	CompletionDate    time.Time `json:"completion_date"`
}

func (p Progress) Key() ProgressKey {
	return ProgressKey{StudentID: p.StudentID, SessionID: p.SessionID}
}
