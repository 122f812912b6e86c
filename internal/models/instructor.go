package models

type Instructor struct {
	ID           string         `json:"id"`
	FullName     string         `json:"full_name"`
	Username     string         `json:"username"`
	PasswordHash string         `json:"password_hash"`
	Role         InstructorRole `json:"role"`
}

type InstructorView struct {
	ID       string         `json:"id"`
	FullName string         `json:"full_name"`
	Username string         `json:"username"`
	Role     InstructorRole `json:"role"`
}

func (i Instructor) View() InstructorView {
	return InstructorView{
		ID:       i.ID,
		FullName: i.FullName,
		Username: i.Username,
		Role:     i.Role,
	}
}
