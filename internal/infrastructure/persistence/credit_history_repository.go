package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/domain/shared"
	"github.com/agrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransitionAuditRepository reads the transition audit trail
type GormTransitionAuditRepository struct {
	db *gorm.DB
}

// NewGormTransitionAuditRepository creates a new GormTransitionAuditRepository
func NewGormTransitionAuditRepository(db *gorm.DB) *GormTransitionAuditRepository {
	return &GormTransitionAuditRepository{db: db}
}

// FindByApplication returns the audit entries of an application, newest first
func (r *GormTransitionAuditRepository) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]credit.TransitionAuditEntry, error) {
	var rows []models.TransitionAuditModel
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("occurred_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list transition audit: %w", err)
	}
	out := make([]credit.TransitionAuditEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// GormCapacitySnapshotRepository stores capacity snapshots
type GormCapacitySnapshotRepository struct {
	db *gorm.DB
}

// NewGormCapacitySnapshotRepository creates a new GormCapacitySnapshotRepository
func NewGormCapacitySnapshotRepository(db *gorm.DB) *GormCapacitySnapshotRepository {
	return &GormCapacitySnapshotRepository{db: db}
}

// Save appends a snapshot
func (r *GormCapacitySnapshotRepository) Save(ctx context.Context, snapshot *credit.CapacitySnapshot) error {
	if err := r.db.WithContext(ctx).Create(models.CapacitySnapshotModelFromDomain(snapshot)).Error; err != nil {
		return fmt.Errorf("insert capacity snapshot: %w", err)
	}
	return nil
}

// FindLatestByApplication returns the most recent snapshot of an application
func (r *GormCapacitySnapshotRepository) FindLatestByApplication(ctx context.Context, applicationID uuid.UUID) (*credit.CapacitySnapshot, error) {
	var model models.CapacitySnapshotModel
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("assessed_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find latest capacity snapshot: %w", err)
	}
	return model.ToDomain(), nil
}

var (
	_ credit.TransitionAuditRepository  = (*GormTransitionAuditRepository)(nil)
	_ credit.CapacitySnapshotRepository = (*GormCapacitySnapshotRepository)(nil)
)
