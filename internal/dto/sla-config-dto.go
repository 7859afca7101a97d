package dto

import "github.com/aarondl/null/v8"

// CreateSlaConfigDTO: правило SLA для пары (этап, серьезность).
// Severity = null означает wildcard — правило для всех серьезностей этапа.
type CreateSlaConfigDTO struct {
	Step        string  `json:"step" validate:"required"`
	Severity    *string `json:"severity,omitempty" validate:"omitempty,oneof=S A B C"`
	WarningDays int     `json:"warning_days" validate:"required,gt=0"`
	MaxDays     int     `json:"max_days" validate:"required,gt=0,gtefield=WarningDays"`
}

type UpdateSlaConfigDTO struct {
	WarningDays *int  `json:"warning_days,omitempty" validate:"omitempty,gt=0"`
	MaxDays     *int  `json:"max_days,omitempty" validate:"omitempty,gt=0"`
	Active      *bool `json:"active,omitempty"`
}

type SlaConfigDTO struct {
	ID          uint64      `json:"id"`
	Step        string      `json:"step"`
	Severity    null.String `json:"severity"`
	WarningDays int     `json:"warning_days"`
	MaxDays     int     `json:"max_days"`
	Active      bool    `json:"active"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}
