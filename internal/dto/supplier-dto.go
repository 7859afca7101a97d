package dto

type CreateSupplierDTO struct {
	Name         string  `json:"name" validate:"required,min=2"`
	Code         string  `json:"code" validate:"required,uppercase,min=2"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

type UpdateSupplierDTO struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Code         *string `json:"code,omitempty" validate:"omitempty,uppercase,min=2"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	Active       *bool   `json:"active,omitempty"`
}

type SupplierDTO struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	ContactEmail *string `json:"contact_email,omitempty"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

type ShortSupplierDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
