package models

type ConnectRequest struct {
	URL string `json:"url" validate:"required"`
	Key string `json:"key"`
}

type StaffLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type StudentLoginRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type StudentRequest struct {
	FullName          string             `json:"full_name" validate:"required,min=2"`
	BirthDate         string             `json:"birth_date" validate:"required,datetime=2006-01-02"`
	ClassID           string             `json:"class_id" validate:"required"`
	Photo             string             `json:"photo"`
	Address           string             `json:"address"`
	FatherName        string             `json:"father_name"`
	MotherName        string             `json:"mother_name"`
	Diseases          []string           `json:"diseases"`
	Allergies         []string           `json:"allergies"`
	Medications       []string           `json:"medications"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts" validate:"dive"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=4"`
}

type SubjectRequest struct {
	ID            string         `json:"id"`
	Name          string         `json:"name" validate:"required"`
	Prerequisites string         `json:"prerequisites"`
	Content       string         `json:"content"`
	Quiz          []QuizQuestion `json:"quiz"`
}

type SessionRequest struct {
	ClassID          string           `json:"class_id" validate:"required"`
	AvailabilityDate string           `json:"availability_date" validate:"omitempty,datetime=2006-01-02"`
	Subjects         []SubjectRequest `json:"subjects" validate:"dive"`
}

type ToggleSubjectRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
}

type CompleteSubjectRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
	Answers   []int  `json:"answers"`
}

type CompleteSubjectResponse struct {
	Score    int      `json:"score"`
	Passed   bool     `json:"passed"`
	Progress Progress `json:"progress"`
}

type SendMessageRequest struct {
	SenderID   string `json:"sender_id" validate:"required"`
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

type MarkReadRequest struct {
	ReaderID      string `json:"reader_id" validate:"required"`
	CounterpartID string `json:"counterpart_id" validate:"required"`
}

type ClassIconRequest struct {
	Icon       Icon `json:"icon"`
	ApplyToAll bool `json:"apply_to_all"`
}

type InstructorRequest struct {
	FullName string         `json:"full_name" validate:"required"`
	Username string         `json:"username" validate:"required,min=3"`
	Password string         `json:"password" validate:"required,min=4"`
	Role     InstructorRole `json:"role" validate:"required,oneof=ADMIN AVENTURIERS EXPLORATEURS"`
}

type ClubLogoRequest struct {
	Logo string `json:"logo" validate:"required"`
}

type GenerateLessonRequest struct {
	Subject   string `json:"subject" validate:"required"`
	Objective string `json:"objective"`
}

type GenerateQuizRequest struct {
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content"`
}

type StatusResponse struct {
	Status          DBStatus               `json:"status"`
	Error           string                 `json:"error,omitempty"`
	ListenerRunning bool                   `json:"listener_running"`
	PushesSubmitted int64                  `json:"pushes_submitted"`
	PushFailures    int64                  `json:"push_failures"`
	Queue           map[string]interface{} `json:"queue,omitempty"`
}
