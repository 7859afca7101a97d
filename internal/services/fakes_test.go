package services

import (
	"context"
	"sync"
	"time"

	"qtrack/internal/dto"
	"qtrack/internal/entities"
	"qtrack/internal/lifecycle"
	apperrors "qtrack/pkg/errors"
	"qtrack/pkg/types"
)

// Фейковые репозитории для сервисных тестов: всё в памяти, без БД.

type fakeDefectRepo struct {
	mu      sync.Mutex
	nextID  uint64
	defects map[uint64]*entities.Defect

	statusUpdates []uint64
}

func newFakeDefectRepo() *fakeDefectRepo {
	return &fakeDefectRepo{nextID: 1, defects: make(map[uint64]*entities.Defect)}
}

func (r *fakeDefectRepo) add(d entities.Defect) *entities.Defect {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = r.nextID
	r.nextID++
	d.CreatedAt = time.Now()
	copied := d
	r.defects[d.ID] = &copied
	return &copied
}

func (r *fakeDefectRepo) GetDefects(ctx context.Context, filter types.Filter) ([]entities.Defect, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]entities.Defect, 0, len(r.defects))
	for _, d := range r.defects {
		result = append(result, *d)
	}
	return result, uint64(len(result)), nil
}

func (r *fakeDefectRepo) GetOpenDefects(ctx context.Context) ([]entities.Defect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]entities.Defect, 0)
	for _, d := range r.defects {
		if d.Status != lifecycle.StatusClosed {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (r *fakeDefectRepo) FindDefect(ctx context.Context, id uint64) (*entities.Defect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.defects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDefectRepo) FindByDefectNo(ctx context.Context, defectNo string) (*entities.Defect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.defects {
		if d.DefectNo == defectNo {
			copied := *d
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeDefectRepo) CreateDefect(ctx context.Context, defect *entities.Defect) (*entities.Defect, error) {
	return r.add(*defect), nil
}

func (r *fakeDefectRepo) UpdateDefect(ctx context.Context, defect *entities.Defect) (*entities.Defect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defects[defect.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *defect
	r.defects[defect.ID] = &copied
	result := copied
	return &result, nil
}

func (r *fakeDefectRepo) UpdateStatus(ctx context.Context, id uint64, status lifecycle.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.defects[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	d.Status = status
	r.statusUpdates = append(r.statusUpdates, id)
	return nil
}

func (r *fakeDefectRepo) DeleteDefect(ctx context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defects[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.defects, id)
	return nil
}

type fakeCacheRepo struct {
	mu     sync.Mutex
	data   map[string]string
	gets   int
	sets   int
	dels   int
	getErr error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{data: make(map[string]string)}
}

func (r *fakeCacheRepo) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.getErr != nil {
		return "", r.getErr
	}
	v, ok := r.data[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (r *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets++
	r.data[key] = value.(string)
	return nil
}

func (r *fakeCacheRepo) Del(ctx context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dels++
	for _, k := range keys {
		delete(r.data, k)
	}
	return nil
}

type fakeSlaConfigRepo struct {
	rules    []lifecycle.SlaRule
	getCalls int
}

func (r *fakeSlaConfigRepo) GetSlaConfigs(ctx context.Context, limit, offset uint64) ([]dto.SlaConfigDTO, uint64, error) {
	return nil, 0, nil
}

func (r *fakeSlaConfigRepo) GetActiveRules(ctx context.Context) ([]lifecycle.SlaRule, error) {
	r.getCalls++
	return r.rules, nil
}

func (r *fakeSlaConfigRepo) FindSlaConfig(ctx context.Context, id uint64) (*dto.SlaConfigDTO, error) {
	return nil, apperrors.ErrNotFound
}

func (r *fakeSlaConfigRepo) CreateSlaConfig(ctx context.Context, payload dto.CreateSlaConfigDTO) (*dto.SlaConfigDTO, error) {
	return &dto.SlaConfigDTO{ID: 1, Step: payload.Step, WarningDays: payload.WarningDays, MaxDays: payload.MaxDays, Active: true}, nil
}

func (r *fakeSlaConfigRepo) UpdateSlaConfig(ctx context.Context, id uint64, payload dto.UpdateSlaConfigDTO) (*dto.SlaConfigDTO, error) {
	return &dto.SlaConfigDTO{ID: id}, nil
}

func (r *fakeSlaConfigRepo) DeleteSlaConfig(ctx context.Context, id uint64) error {
	return nil
}
