package constants

//============== NOTIFICATION TYPES ==============

// Типы уведомлений, которые создает мониторинг SLA и жизненный цикл дефекта.
const (
	NotificationTypeSlaWarning  = "SLA_WARNING"
	NotificationTypeSlaExceeded = "SLA_EXCEEDED"
	NotificationTypeStepChange  = "STEP_CHANGE"
)

//============== NOTIFICATION STATUSES ==============

const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

//============== WEBHOOK EVENTS ==============

// Имена событий, уходящих во внешние системы через вебхуки.
const (
	WebhookEventDefectCreated = "defect.created"
	WebhookEventStepChanged   = "defect.step_changed"
	WebhookEventDefectClosed  = "defect.closed"
	WebhookEventSlaWarning    = "sla.warning"
	WebhookEventSlaExceeded   = "sla.exceeded"
)

//============== WEBHOOK DELIVERY STATUSES ==============

const (
	WebhookDeliverySuccess = "SUCCESS"
	WebhookDeliveryFailed  = "FAILED"
)

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Ключ для кеша активных правил SLA.
	// Формат: sla_configs:active -> JSON-массив правил
	CacheKeyActiveSlaConfigs = "sla_configs:active"
)
