package services

import (
	"context"

	"qtrack/internal/dto"
	"qtrack/internal/repositories"

	"go.uber.org/zap"
)

type SupplierServiceInterface interface {
	GetSuppliers(ctx context.Context, limit, offset uint64, search string) ([]dto.SupplierDTO, uint64, error)
	FindSupplier(ctx context.Context, id uint64) (*dto.SupplierDTO, error)
	CreateSupplier(ctx context.Context, payload dto.CreateSupplierDTO) (*dto.SupplierDTO, error)
	UpdateSupplier(ctx context.Context, id uint64, payload dto.UpdateSupplierDTO) (*dto.SupplierDTO, error)
	DeleteSupplier(ctx context.Context, id uint64) error
}

type SupplierService struct {
	supplierRepository repositories.SupplierRepositoryInterface
	logger             *zap.Logger
}

func NewSupplierService(supplierRepository repositories.SupplierRepositoryInterface, logger *zap.Logger) SupplierServiceInterface {
	return &SupplierService{
		supplierRepository: supplierRepository,
		logger:             logger,
	}
}

func (s *SupplierService) GetSuppliers(ctx context.Context, limit, offset uint64, search string) ([]dto.SupplierDTO, uint64, error) {
	return s.supplierRepository.GetSuppliers(ctx, limit, offset, search)
}

func (s *SupplierService) FindSupplier(ctx context.Context, id uint64) (*dto.SupplierDTO, error) {
	return s.supplierRepository.FindSupplier(ctx, id)
}

func (s *SupplierService) CreateSupplier(ctx context.Context, payload dto.CreateSupplierDTO) (*dto.SupplierDTO, error) {
	created, err := s.supplierRepository.CreateSupplier(ctx, payload)
	if err != nil {
		s.logger.Error("ошибка при создании поставщика", zap.String("code", payload.Code), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Поставщик создан", zap.Uint64("id", created.ID), zap.String("code", created.Code))
	return created, nil
}

func (s *SupplierService) UpdateSupplier(ctx context.Context, id uint64, payload dto.UpdateSupplierDTO) (*dto.SupplierDTO, error) {
	return s.supplierRepository.UpdateSupplier(ctx, id, payload)
}

func (s *SupplierService) DeleteSupplier(ctx context.Context, id uint64) error {
	return s.supplierRepository.DeleteSupplier(ctx, id)
}
