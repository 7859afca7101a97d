package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qtrack/internal/dto"
	"qtrack/internal/lifecycle"
)

func TestGetActiveRulesCachesResult(t *testing.T) {
	repo := &fakeSlaConfigRepo{rules: []lifecycle.SlaRule{
		{Step: lifecycle.StepAwaitingRootCause, WarningDays: 3, MaxDays: 6, Active: true},
	}}
	cache := newFakeCacheRepo()
	svc := NewSlaConfigService(repo, cache, time.Minute, zap.NewNop())

	// Первый вызов: промах кеша, чтение БД, прогрев.
	rules, err := svc.GetActiveRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.Equal(t, 1, repo.getCalls)
	require.Equal(t, 1, cache.sets)

	// Второй вызов: попадание в кеш, БД не трогаем.
	rules, err = svc.GetActiveRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.Equal(t, lifecycle.StepAwaitingRootCause, rules[0].Step)
	require.Equal(t, 1, repo.getCalls)
}

func TestGetActiveRulesRecoversFromCorruptCache(t *testing.T) {
	repo := &fakeSlaConfigRepo{rules: []lifecycle.SlaRule{
		{Step: lifecycle.StepAwaitingValidation, WarningDays: 2, MaxDays: 4, Active: true},
	}}
	cache := newFakeCacheRepo()
	cache.data["sla_configs:active"] = "{битый json"
	svc := NewSlaConfigService(repo, cache, time.Minute, zap.NewNop())

	rules, err := svc.GetActiveRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.Equal(t, 1, repo.getCalls)
}

func TestCreateSlaConfigInvalidatesCache(t *testing.T) {
	repo := &fakeSlaConfigRepo{}
	cache := newFakeCacheRepo()
	cache.data["sla_configs:active"] = "[]"
	svc := NewSlaConfigService(repo, cache, time.Minute, zap.NewNop())

	_, err := svc.CreateSlaConfig(context.Background(), dto.CreateSlaConfigDTO{
		Step: string(lifecycle.StepAwaitingDisposition), WarningDays: 2, MaxDays: 5,
	})
	require.NoError(t, err)
	require.Equal(t, 1, cache.dels)
	require.NotContains(t, cache.data, "sla_configs:active")
}
