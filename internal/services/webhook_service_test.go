package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qtrack/internal/dto"
	"qtrack/internal/repositories"
	"qtrack/pkg/config"
	"qtrack/pkg/constants"
	apperrors "qtrack/pkg/errors"
)

type fakeWebhookRepo struct {
	mu        sync.Mutex
	endpoints []repositories.WebhookEndpoint
	logs      []dto.WebhookLogDTO
}

func (r *fakeWebhookRepo) GetWebhookConfigs(ctx context.Context, limit, offset uint64) ([]dto.WebhookConfigDTO, uint64, error) {
	return nil, 0, nil
}

func (r *fakeWebhookRepo) GetActiveEndpoints(ctx context.Context, event string) ([]repositories.WebhookEndpoint, error) {
	result := make([]repositories.WebhookEndpoint, 0)
	for _, e := range r.endpoints {
		for _, ev := range e.Events {
			if ev == event {
				result = append(result, e)
				break
			}
		}
	}
	return result, nil
}

func (r *fakeWebhookRepo) FindWebhookConfig(ctx context.Context, id uint64) (*dto.WebhookConfigDTO, error) {
	return nil, apperrors.ErrNotFound
}

func (r *fakeWebhookRepo) CreateWebhookConfig(ctx context.Context, payload dto.CreateWebhookConfigDTO) (*dto.WebhookConfigDTO, error) {
	return nil, nil
}

func (r *fakeWebhookRepo) UpdateWebhookConfig(ctx context.Context, id uint64, payload dto.UpdateWebhookConfigDTO) (*dto.WebhookConfigDTO, error) {
	return nil, nil
}

func (r *fakeWebhookRepo) DeleteWebhookConfig(ctx context.Context, id uint64) error {
	return nil
}

func (r *fakeWebhookRepo) CreateLog(ctx context.Context, webhookID uint64, event, status string, statusCode, attempts int, errText string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, dto.WebhookLogDTO{
		WebhookID: webhookID, Event: event, Status: status,
		StatusCode: statusCode, Attempts: attempts, Error: errText,
	})
	return nil
}

func (r *fakeWebhookRepo) GetLogs(ctx context.Context, webhookID uint64, limit, offset uint64) ([]dto.WebhookLogDTO, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logs, uint64(len(r.logs)), nil
}

func TestSignIsDeterministic(t *testing.T) {
	body := []byte(`{"event":"sla.exceeded"}`)
	first := Sign("super-secret-key-0123", body)
	second := Sign("super-secret-key-0123", body)
	require.Equal(t, first, second)
	require.Len(t, first, 64) // hex(sha256)

	other := Sign("another-secret-key-456", body)
	require.NotEqual(t, first, other)
}

func TestDispatchDeliversSignedPayload(t *testing.T) {
	var (
		mu       sync.Mutex
		gotBody  []byte
		gotSig   string
		gotEvent string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get("X-Qtrack-Signature")
		gotEvent = r.Header.Get("X-Qtrack-Event")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := &fakeWebhookRepo{endpoints: []repositories.WebhookEndpoint{
		{ID: 1, Name: "erp", URL: server.URL, Secret: "super-secret-key-0123", Events: []string{"sla.exceeded"}},
	}}
	svc := NewWebhookService(repo, config.WebhookConfig{Timeout: 5 * time.Second, MaxAttempts: 3}, zap.NewNop())

	svc.Dispatch(context.Background(), "sla.exceeded", map[string]string{"defect_no": "QD-1"})

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, gotBody)
	require.Equal(t, "sla.exceeded", gotEvent)
	require.Equal(t, Sign("super-secret-key-0123", gotBody), gotSig)

	require.Len(t, repo.logs, 1)
	require.Equal(t, constants.WebhookDeliverySuccess, repo.logs[0].Status)
	require.Equal(t, 1, repo.logs[0].Attempts)
}

func TestDispatchLogsFailureAfterRetries(t *testing.T) {
	var calls int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := &fakeWebhookRepo{endpoints: []repositories.WebhookEndpoint{
		{ID: 2, Name: "broken", URL: server.URL, Secret: "super-secret-key-0123", Events: []string{"defect.created"}},
	}}
	svc := NewWebhookService(repo, config.WebhookConfig{Timeout: 5 * time.Second, MaxAttempts: 2}, zap.NewNop())

	svc.Dispatch(context.Background(), "defect.created", map[string]string{"defect_no": "QD-2"})

	mu.Lock()
	require.Equal(t, 2, calls)
	mu.Unlock()

	require.Len(t, repo.logs, 1)
	require.Equal(t, constants.WebhookDeliveryFailed, repo.logs[0].Status)
	require.Equal(t, http.StatusBadGateway, repo.logs[0].StatusCode)
	require.Equal(t, 2, repo.logs[0].Attempts)
}

func TestDispatchSkipsUnsubscribedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("эндпоинт не подписан на это событие, запрос не должен уходить")
	}))
	defer server.Close()

	repo := &fakeWebhookRepo{endpoints: []repositories.WebhookEndpoint{
		{ID: 3, Name: "erp", URL: server.URL, Secret: "super-secret-key-0123", Events: []string{"defect.closed"}},
	}}
	svc := NewWebhookService(repo, config.WebhookConfig{Timeout: 5 * time.Second, MaxAttempts: 1}, zap.NewNop())

	svc.Dispatch(context.Background(), "sla.warning", nil)
	require.Empty(t, repo.logs)
}
