package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"qtrack/internal/dto"
	"qtrack/internal/repositories"
	"qtrack/pkg/config"
	"qtrack/pkg/constants"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WebhookServiceInterface interface {
	GetWebhookConfigs(ctx context.Context, limit, offset uint64) ([]dto.WebhookConfigDTO, uint64, error)
	FindWebhookConfig(ctx context.Context, id uint64) (*dto.WebhookConfigDTO, error)
	CreateWebhookConfig(ctx context.Context, payload dto.CreateWebhookConfigDTO) (*dto.WebhookConfigDTO, error)
	UpdateWebhookConfig(ctx context.Context, id uint64, payload dto.UpdateWebhookConfigDTO) (*dto.WebhookConfigDTO, error)
	DeleteWebhookConfig(ctx context.Context, id uint64) error
	GetLogs(ctx context.Context, webhookID uint64, limit, offset uint64) ([]dto.WebhookLogDTO, uint64, error)

	Dispatch(ctx context.Context, event string, payload interface{})
}

type WebhookService struct {
	webhookRepository repositories.WebhookRepositoryInterface
	client            *http.Client
	cfg               config.WebhookConfig
	logger            *zap.Logger
}

func NewWebhookService(
	webhookRepository repositories.WebhookRepositoryInterface,
	cfg config.WebhookConfig,
	logger *zap.Logger,
) WebhookServiceInterface {
	return &WebhookService{
		webhookRepository: webhookRepository,
		client:            &http.Client{Timeout: cfg.Timeout},
		cfg:               cfg,
		logger:            logger,
	}
}

func (s *WebhookService) GetWebhookConfigs(ctx context.Context, limit, offset uint64) ([]dto.WebhookConfigDTO, uint64, error) {
	return s.webhookRepository.GetWebhookConfigs(ctx, limit, offset)
}

func (s *WebhookService) FindWebhookConfig(ctx context.Context, id uint64) (*dto.WebhookConfigDTO, error) {
	return s.webhookRepository.FindWebhookConfig(ctx, id)
}

func (s *WebhookService) CreateWebhookConfig(ctx context.Context, payload dto.CreateWebhookConfigDTO) (*dto.WebhookConfigDTO, error) {
	return s.webhookRepository.CreateWebhookConfig(ctx, payload)
}

func (s *WebhookService) UpdateWebhookConfig(ctx context.Context, id uint64, payload dto.UpdateWebhookConfigDTO) (*dto.WebhookConfigDTO, error) {
	return s.webhookRepository.UpdateWebhookConfig(ctx, id, payload)
}

func (s *WebhookService) DeleteWebhookConfig(ctx context.Context, id uint64) error {
	return s.webhookRepository.DeleteWebhookConfig(ctx, id)
}

func (s *WebhookService) GetLogs(ctx context.Context, webhookID uint64, limit, offset uint64) ([]dto.WebhookLogDTO, uint64, error) {
	return s.webhookRepository.GetLogs(ctx, webhookID, limit, offset)
}

// webhookEnvelope — тело, которое уходит подписчику.
type webhookEnvelope struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Sign считает подпись тела запроса секретом эндпоинта.
// Подпись уходит в заголовке X-Qtrack-Signature как hex(HMAC-SHA256(body)).
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Dispatch рассылает событие всем активным подписчикам. Ошибка доставки
// одному эндпоинту не мешает остальным; каждая попытка пишется в журнал.
func (s *WebhookService) Dispatch(ctx context.Context, event string, payload interface{}) {
	endpoints, err := s.webhookRepository.GetActiveEndpoints(ctx, event)
	if err != nil {
		s.logger.Error("не удалось получить подписчиков вебхука", zap.String("event", event), zap.Error(err))
		return
	}
	if len(endpoints) == 0 {
		return
	}

	body, err := json.Marshal(webhookEnvelope{
		ID:        uuid.NewString(),
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      payload,
	})
	if err != nil {
		s.logger.Error("не удалось сериализовать тело вебхука", zap.String("event", event), zap.Error(err))
		return
	}

	for _, endpoint := range endpoints {
		s.deliver(ctx, endpoint, event, body)
	}
}

func (s *WebhookService) deliver(ctx context.Context, endpoint repositories.WebhookEndpoint, event string, body []byte) {
	signature := Sign(endpoint.Secret, body)

	var lastErr string
	var lastCode int
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
		if err != nil {
			lastErr = err.Error()
			break
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Qtrack-Event", event)
		req.Header.Set("X-Qtrack-Signature", signature)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err.Error()
			continue
		}
		lastCode = resp.StatusCode
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if err := s.webhookRepository.CreateLog(ctx, endpoint.ID, event, constants.WebhookDeliverySuccess, resp.StatusCode, attempt, ""); err != nil {
				s.logger.Warn("не удалось записать журнал вебхука", zap.Error(err))
			}
			return
		}
		lastErr = resp.Status
	}

	s.logger.Warn("Вебхук не доставлен",
		zap.String("event", event),
		zap.String("url", endpoint.URL),
		zap.Int("attempts", s.cfg.MaxAttempts),
		zap.String("error", lastErr),
	)
	if err := s.webhookRepository.CreateLog(ctx, endpoint.ID, event, constants.WebhookDeliveryFailed, lastCode, s.cfg.MaxAttempts, lastErr); err != nil {
		s.logger.Warn("не удалось записать журнал вебхука", zap.Error(err))
	}
}
