package models

type ClassLevel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
	Club Club   `json:"club"`
	Icon Icon   `json:"icon"`
}
