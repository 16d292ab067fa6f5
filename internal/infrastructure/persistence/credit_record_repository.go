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

// GormIncomeRecordRepository implements credit.IncomeRecordRepository using GORM
type GormIncomeRecordRepository struct {
	db *gorm.DB
}

// NewGormIncomeRecordRepository creates a new GormIncomeRecordRepository
func NewGormIncomeRecordRepository(db *gorm.DB) *GormIncomeRecordRepository {
	return &GormIncomeRecordRepository{db: db}
}

// FindByID finds an income record by ID
func (r *GormIncomeRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*credit.IncomeRecord, error) {
	var model models.IncomeRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find income record: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByApplication lists the income records of an application, oldest first
func (r *GormIncomeRecordRepository) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]credit.IncomeRecord, error) {
	var rows []models.IncomeRecordModel
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list income records: %w", err)
	}
	out := make([]credit.IncomeRecord, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates an income record
func (r *GormIncomeRecordRepository) Save(ctx context.Context, record *credit.IncomeRecord) error {
	if err := r.db.WithContext(ctx).Save(models.IncomeRecordModelFromDomain(record)).Error; err != nil {
		return fmt.Errorf("save income record: %w", err)
	}
	return nil
}

// Delete removes an income record
func (r *GormIncomeRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.IncomeRecordModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete income record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormExpenseRecordRepository implements credit.ExpenseRecordRepository using GORM
type GormExpenseRecordRepository struct {
	db *gorm.DB
}

// NewGormExpenseRecordRepository creates a new GormExpenseRecordRepository
func NewGormExpenseRecordRepository(db *gorm.DB) *GormExpenseRecordRepository {
	return &GormExpenseRecordRepository{db: db}
}

// FindByID finds an expense record by ID
func (r *GormExpenseRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*credit.ExpenseRecord, error) {
	var model models.ExpenseRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find expense record: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByApplication lists the expense records of an application, oldest first
func (r *GormExpenseRecordRepository) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]credit.ExpenseRecord, error) {
	var rows []models.ExpenseRecordModel
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list expense records: %w", err)
	}
	out := make([]credit.ExpenseRecord, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates an expense record
func (r *GormExpenseRecordRepository) Save(ctx context.Context, record *credit.ExpenseRecord) error {
	if err := r.db.WithContext(ctx).Save(models.ExpenseRecordModelFromDomain(record)).Error; err != nil {
		return fmt.Errorf("save expense record: %w", err)
	}
	return nil
}

// Delete removes an expense record
func (r *GormExpenseRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExpenseRecordModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete expense record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ credit.IncomeRecordRepository  = (*GormIncomeRecordRepository)(nil)
	_ credit.ExpenseRecordRepository = (*GormExpenseRecordRepository)(nil)
)
