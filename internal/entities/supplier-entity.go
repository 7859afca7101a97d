package entities

type Supplier struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	ContactEmail *string `json:"contact_email"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}
