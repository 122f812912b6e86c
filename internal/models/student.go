package models

type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type Student struct {
	ID                string             `json:"id"`
	FullName          string             `json:"full_name"`
	BirthDate         string             `json:"birth_date"`
	Age               int                `json:"age"`
	ClassID           string             `json:"class_id"`
	Photo             string             `json:"photo,omitempty"`
	Address           string             `json:"address,omitempty"`
	FatherName        string             `json:"father_name,omitempty"`
	MotherName        string             `json:"mother_name,omitempty"`
	Diseases          []string           `json:"diseases,omitempty"`
	Allergies         []string           `json:"allergies,omitempty"`
	Medications       []string           `json:"medications,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts,omitempty"`
	PasswordHash      string             `json:"password_hash,omitempty"`
	TemporaryPassword string             `json:"temporary_password,omitempty"`
	PasswordChanged   bool               `json:"password_changed"`
}

// StudentView is the representation handed to UI collaborators.
type StudentView struct {
	ID                string             `json:"id"`
	FullName          string             `json:"full_name"`
	BirthDate         string             `json:"birth_date"`
	Age               int                `json:"age"`
	ClassID           string             `json:"class_id"`
	Photo             string             `json:"photo,omitempty"`
	Address           string             `json:"address,omitempty"`
	FatherName        string             `json:"father_name,omitempty"`
	MotherName        string             `json:"mother_name,omitempty"`
	Diseases          []string           `json:"diseases,omitempty"`
	Allergies         []string           `json:"allergies,omitempty"`
	Medications       []string           `json:"medications,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts,omitempty"`
	TemporaryPassword string             `json:"temporary_password,omitempty"`
	PasswordChanged   bool               `json:"password_changed"`
}

// View strips the permanent credential. The temporary code stays visible to
// staff until the student replaces it.
func (s Student) View() StudentView {
	v := StudentView{
		ID:                s.ID,
		FullName:          s.FullName,
		BirthDate:         s.BirthDate,
		Age:               s.Age,
		ClassID:           s.ClassID,
		Photo:             s.Photo,
		Address:           s.Address,
		FatherName:        s.FatherName,
		MotherName:        s.MotherName,
		Diseases:          s.Diseases,
		Allergies:         s.Allergies,
		Medications:       s.Medications,
		EmergencyContacts: s.EmergencyContacts,
		PasswordChanged:   s.PasswordChanged,
	}
	if !s.PasswordChanged {
		v.TemporaryPassword = s.TemporaryPassword
	}
	return v
}
