package services

import (
	"context"
	"encoding/json"
	"time"

	"qtrack/internal/dto"
	"qtrack/internal/lifecycle"
	"qtrack/internal/repositories"
	"qtrack/pkg/constants"

	"go.uber.org/zap"
)

type SlaConfigServiceInterface interface {
	GetSlaConfigs(ctx context.Context, limit, offset uint64) ([]dto.SlaConfigDTO, uint64, error)
	FindSlaConfig(ctx context.Context, id uint64) (*dto.SlaConfigDTO, error)
	CreateSlaConfig(ctx context.Context, payload dto.CreateSlaConfigDTO) (*dto.SlaConfigDTO, error)
	UpdateSlaConfig(ctx context.Context, id uint64, payload dto.UpdateSlaConfigDTO) (*dto.SlaConfigDTO, error)
	DeleteSlaConfig(ctx context.Context, id uint64) error
	GetActiveRules(ctx context.Context) ([]lifecycle.SlaRule, error)
}

type SlaConfigService struct {
	slaConfigRepository repositories.SlaConfigRepositoryInterface
	cacheRepository     repositories.CacheRepositoryInterface
	cacheTTL            time.Duration
	logger              *zap.Logger
}

func NewSlaConfigService(
	slaConfigRepository repositories.SlaConfigRepositoryInterface,
	cacheRepository repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) SlaConfigServiceInterface {
	return &SlaConfigService{
		slaConfigRepository: slaConfigRepository,
		cacheRepository:     cacheRepository,
		cacheTTL:            cacheTTL,
		logger:              logger,
	}
}

func (s *SlaConfigService) GetSlaConfigs(ctx context.Context, limit, offset uint64) ([]dto.SlaConfigDTO, uint64, error) {
	return s.slaConfigRepository.GetSlaConfigs(ctx, limit, offset)
}

func (s *SlaConfigService) FindSlaConfig(ctx context.Context, id uint64) (*dto.SlaConfigDTO, error) {
	return s.slaConfigRepository.FindSlaConfig(ctx, id)
}

func (s *SlaConfigService) CreateSlaConfig(ctx context.Context, payload dto.CreateSlaConfigDTO) (*dto.SlaConfigDTO, error) {
	created, err := s.slaConfigRepository.CreateSlaConfig(ctx, payload)
	if err != nil {
		s.logger.Error("ошибка при создании правила SLA", zap.Error(err))
		return nil, err
	}
	s.invalidateCache(ctx)
	s.logger.Info("Правило SLA создано", zap.Uint64("id", created.ID), zap.String("step", created.Step))
	return created, nil
}

func (s *SlaConfigService) UpdateSlaConfig(ctx context.Context, id uint64, payload dto.UpdateSlaConfigDTO) (*dto.SlaConfigDTO, error) {
	updated, err := s.slaConfigRepository.UpdateSlaConfig(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return updated, nil
}

func (s *SlaConfigService) DeleteSlaConfig(ctx context.Context, id uint64) error {
	if err := s.slaConfigRepository.DeleteSlaConfig(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// GetActiveRules отдает активные правила из кеша; при промахе или битом
// значении читает БД и греет кеш заново.
func (s *SlaConfigService) GetActiveRules(ctx context.Context) ([]lifecycle.SlaRule, error) {
	if cached, err := s.cacheRepository.Get(ctx, constants.CacheKeyActiveSlaConfigs); err == nil && cached != "" {
		var rules []lifecycle.SlaRule
		if err := json.Unmarshal([]byte(cached), &rules); err == nil {
			return rules, nil
		}
		s.logger.Warn("Битое значение в кеше правил SLA, перечитываем БД")
	}

	rules, err := s.slaConfigRepository.GetActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(rules); err == nil {
		if err := s.cacheRepository.Set(ctx, constants.CacheKeyActiveSlaConfigs, string(raw), s.cacheTTL); err != nil {
			s.logger.Warn("Не удалось записать правила SLA в кеш", zap.Error(err))
		}
	}
	return rules, nil
}

func (s *SlaConfigService) invalidateCache(ctx context.Context) {
	if err := s.cacheRepository.Del(ctx, constants.CacheKeyActiveSlaConfigs); err != nil {
		s.logger.Warn("Не удалось сбросить кеш правил SLA", zap.Error(err))
	}
}
