// Package progress computes completion state and scores for a student's
// progress through a session.
package progress

import (
	"time"

	"github.com/RubachokBoss/clubtrack/internal/models"
)

// PassThreshold is the minimal quiz percentage that completes a subject.
const PassThreshold = 70

type Result struct {
	CompletedSubjects []string
	Completed         bool
	Score             int
	CompletionDate    time.Time
}

// Score is round-half-up of 100*done/total. An empty session scores 0.
func Score(done, total int) int {
	if total <= 0 {
		return 0
	}
	if done > total {
		done = total
	}
	return (200*done + total) / (2 * total)
}

// Evaluate returns the score and completion flag for the subset of completed
// that belongs to subjectIDs.
func Evaluate(subjectIDs, completed []string) (int, bool) {
	done := len(prune(subjectIDs, completed))
	total := len(subjectIDs)
	return Score(done, total), total > 0 && done == total
}

// Toggle flips subjectID in the completed set and recomputes the result.
// Ids unknown to the session are dropped and order is preserved.
func Toggle(subjectIDs, completed []string, subjectID string, now time.Time) Result {
	set := prune(subjectIDs, completed)

	var next []string
	removed := false
	for _, id := range set {
		if id == subjectID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed && contains(subjectIDs, subjectID) {
		next = append(next, subjectID)
	}

	return result(subjectIDs, next, now)
}

// Complete adds subjectID to the completed set. It is idempotent.
func Complete(subjectIDs, completed []string, subjectID string, now time.Time) Result {
	set := prune(subjectIDs, completed)
	if !contains(set, subjectID) && contains(subjectIDs, subjectID) {
		set = append(set, subjectID)
	}
	return result(subjectIDs, set, now)
}

// Apply writes r onto p.
func Apply(p models.Progress, r Result) models.Progress {
	p.CompletedSubjects = r.CompletedSubjects
	p.Completed = r.Completed
	p.Score = r.Score
	p.CompletionDate = r.CompletionDate
	return p
}

// GradeQuiz returns the percentage of correct answers and whether it reaches
// PassThreshold. Missing answers count as wrong.
func GradeQuiz(quiz []models.QuizQuestion, answers []int) (int, bool) {
	if len(quiz) == 0 {
		return 0, false
	}

	correct := 0
	for i, q := range quiz {
		if i < len(answers) && answers[i] == q.CorrectIndex {
			correct++
		}
	}

	score := Score(correct, len(quiz))
	return score, score >= PassThreshold
}

func result(subjectIDs, completed []string, now time.Time) Result {
	score, done := Evaluate(subjectIDs, completed)
	return Result{
		CompletedSubjects: completed,
		Completed:         done,
		Score:             score,
		CompletionDate:    models.Timestamp(now),
	}
}

func prune(subjectIDs, completed []string) []string {
	var out []string
	for _, id := range completed {
		if contains(subjectIDs, id) && !contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
