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

// GormLoanProductRepository serves loan product reference data from the database.
// It implements credit.ProductCatalog.
type GormLoanProductRepository struct {
	db *gorm.DB
}

// NewGormLoanProductRepository creates a new GormLoanProductRepository
func NewGormLoanProductRepository(db *gorm.DB) *GormLoanProductRepository {
	return &GormLoanProductRepository{db: db}
}

// ProductByID finds a loan product by ID
func (r *GormLoanProductRepository) ProductByID(ctx context.Context, id uuid.UUID) (*credit.LoanProduct, error) {
	var model models.LoanProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find loan product: %w", err)
	}
	return model.ToDomain(), nil
}

// FindActive lists active products ordered by code
func (r *GormLoanProductRepository) FindActive(ctx context.Context) ([]credit.LoanProduct, error) {
	var rows []models.LoanProductModel
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list loan products: %w", err)
	}
	out := make([]credit.LoanProduct, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a loan product
func (r *GormLoanProductRepository) Save(ctx context.Context, product *credit.LoanProduct) error {
	if err := r.db.WithContext(ctx).Save(models.LoanProductModelFromDomain(product)).Error; err != nil {
		return fmt.Errorf("save loan product: %w", err)
	}
	return nil
}

var _ credit.ProductCatalog = (*GormLoanProductRepository)(nil)
