package models

type SessionType string

const (
	SessionStaff   SessionType = "staff"
	SessionStudent SessionType = "student"
)

// ActiveSession is the identity logged in on this device.
type ActiveSession struct {
	Type SessionType    `json:"type"`
	ID   string         `json:"id"`
	Role InstructorRole `json:"role,omitempty"`
}

// ConnectionOverride replaces the configured backend for this device.
type ConnectionOverride struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

type DBStatus string

const (
	DBLoading   DBStatus = "loading"
	DBConnected DBStatus = "connected"
	DBError     DBStatus = "error"
)

const (
	TableClasses     = "classes"
	TableInstructors = "instructors"
	TableStudents    = "students"
	TableSessions    = "sessions"
	TableProgress    = "progress"
	TableMessages    = "messages"
	TableClubConfig  = "club_config"
)
