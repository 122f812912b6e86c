package store

import (
	"sort"

	"github.com/RubachokBoss/clubtrack/internal/models"
)

// Store holds the authoritative local copy of every synced collection.
type Store struct {
	Students    *Collection[string, models.Student]
	Sessions    *Collection[string, models.Session]
	Classes     *Collection[string, models.ClassLevel]
	Progress    *Collection[models.ProgressKey, models.Progress]
	Messages    *Collection[string, models.Message]
	Instructors *Collection[string, models.Instructor]
	ClubLogos   *Collection[models.Club, models.ClubLogo]
}

func New() *Store {
	return &Store{
		Students:    NewCollection(StudentKey),
		Sessions:    NewCollection(SessionKey),
		Classes:     NewCollection(ClassKey),
		Progress:    NewCollection(ProgressKey),
		Messages:    NewCollection(MessageKey),
		Instructors: NewCollection(InstructorKey),
		ClubLogos:   NewCollection(ClubLogoKey),
	}
}

func StudentKey(s models.Student) string { return s.ID }
func SessionKey(s models.Session) string { return s.ID }
func ClassKey(c models.ClassLevel) string { return c.ID }
func ProgressKey(p models.Progress) models.ProgressKey { return p.Key() }
func MessageKey(m models.Message) string { return m.ID }
func InstructorKey(i models.Instructor) string { return i.ID }
func ClubLogoKey(l models.ClubLogo) models.Club { return l.Club }

func (s *Store) StudentsInClass(classID string) []models.Student {
	return s.Students.Find(func(st models.Student) bool { return st.ClassID == classID })
}

// SessionsInClass returns the sessions of a class ordered by number.
func (s *Store) SessionsInClass(classID string) []models.Session {
	sessions := s.Sessions.Find(func(se models.Session) bool { return se.ClassID == classID })
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Number < sessions[j].Number })
	return sessions
}

func (s *Store) ClassesInClub(club models.Club) []models.ClassLevel {
	return s.Classes.Find(func(c models.ClassLevel) bool { return c.Club == club })
}

func (s *Store) ProgressForStudent(studentID string) []models.Progress {
	return s.Progress.Find(func(p models.Progress) bool { return p.StudentID == studentID })
}

// Conversation returns the messages between the admin channel and a student,
// oldest first.
func (s *Store) Conversation(studentID string) []models.Message {
	msgs := s.Messages.Find(func(m models.Message) bool {
		return (m.SenderID == studentID && m.ReceiverID == models.AdminChannel) ||
			(m.SenderID == models.AdminChannel && m.ReceiverID == studentID)
	})
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs
}

// Logos returns the club logo mapping.
func (s *Store) Logos() map[models.Club]string {
	out := make(map[models.Club]string)
	for _, l := range s.ClubLogos.Snapshot() {
		out[l.Club] = l.Logo
	}
	return out
}
