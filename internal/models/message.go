package models

import "time"

// AdminChannel is the participant id used for the staff side of every conversation.
const AdminChannel = "admin"

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	IsRead     bool      `json:"is_read"`
}

// Involves reports whether participant is the sender or the receiver.
func (m Message) Involves(participant string) bool {
	return m.SenderID == participant || m.ReceiverID == participant
}

// Counterpart returns the other side of the conversation for the student.
func (m Message) Counterpart() string {
	if m.SenderID == AdminChannel {
		return m.ReceiverID
	}
	return m.SenderID
}
