package repository

import (
	"context"

	"newspulse/internal/entity"

	"gorm.io/gorm"
)

// BatchRunRepository records batch run state transitions and outcomes.
type BatchRunRepository interface {
	Create(ctx context.Context, run *entity.BatchRun) error
	Update(ctx context.Context, run *entity.BatchRun) error
}

type batchRunRepository struct {
	db *gorm.DB
}

// NewBatchRunRepository creates a new instance of BatchRunRepository.
func NewBatchRunRepository(db *gorm.DB) BatchRunRepository {
	return &batchRunRepository{db: db}
}

func (r *batchRunRepository) Create(ctx context.Context, run *entity.BatchRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *batchRunRepository) Update(ctx context.Context, run *entity.BatchRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}
