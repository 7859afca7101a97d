package dto

type NotificationDTO struct {
	ID        uint64 `json:"id"`
	DefectID  uint64 `json:"defect_id"`
	DefectNo  string `json:"defect_no,omitempty"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	SentAt    string `json:"sent_at,omitempty"`
}
