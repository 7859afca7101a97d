package dto

type CreateWebhookConfigDTO struct {
	Name   string   `json:"name" validate:"required,min=2"`
	URL    string   `json:"url" validate:"required,url"`
	Secret string   `json:"secret" validate:"required,min=16"`
	Events []string `json:"events" validate:"required,min=1,dive,oneof=defect.created defect.step_changed defect.closed sla.warning sla.exceeded"`
}

type UpdateWebhookConfigDTO struct {
	Name   *string  `json:"name,omitempty" validate:"omitempty,min=2"`
	URL    *string  `json:"url,omitempty" validate:"omitempty,url"`
	Secret *string  `json:"secret,omitempty" validate:"omitempty,min=16"`
	Events []string `json:"events,omitempty" validate:"omitempty,min=1,dive,oneof=defect.created defect.step_changed defect.closed sla.warning sla.exceeded"`
	Active *bool    `json:"active,omitempty"`
}

type WebhookConfigDTO struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	URL       string   `json:"url"`
	Events    []string `json:"events"`
	Active    bool     `json:"active"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

type WebhookLogDTO struct {
	ID         uint64 `json:"id"`
	WebhookID  uint64 `json:"webhook_id"`
	Event      string `json:"event"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
}
