package models

// ClubLogo is one row of the club configuration table.
type ClubLogo struct {
	Club Club   `json:"id"`
	Logo string `json:"logo"`
}
