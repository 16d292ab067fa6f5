package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/domain/shared"
	"github.com/agrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// applicationNumberPrefix starts every generated number: CR-YYYYMMDD-NNNNNN
const applicationNumberPrefix = "CR-"

// GormCreditApplicationRepository implements credit.ApplicationRepository using GORM
type GormCreditApplicationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormCreditApplicationRepository creates a new GormCreditApplicationRepository
func NewGormCreditApplicationRepository(db *gorm.DB) *GormCreditApplicationRepository {
	return &GormCreditApplicationRepository{db: db, now: time.Now}
}

// FindByID finds an application by its ID
func (r *GormCreditApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*credit.CreditApplication, error) {
	var model models.CreditApplicationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find credit application: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an application by its application number
func (r *GormCreditApplicationRepository) FindByNumber(ctx context.Context, number string) (*credit.CreditApplication, error) {
	var model models.CreditApplicationModel
	if err := r.db.WithContext(ctx).First(&model, "application_number = ?", strings.ToUpper(number)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find credit application by number: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of applications matching filter and the total match count
func (r *GormCreditApplicationRepository) FindAll(ctx context.Context, filter credit.ApplicationFilter) ([]credit.CreditApplication, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CreditApplicationModel{})
	if filter.StatusCode != "" {
		query = query.Where("status_code = ?", string(filter.StatusCode))
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(application_number) LIKE ? OR LOWER(notes) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count credit applications: %w", err)
	}

	query = query.Clauses(applicationOrder(filter.OrderBy, filter.OrderDir))
	if limit := filter.Limit(); limit > 0 {
		query = query.Offset(filter.Offset()).Limit(limit)
	}

	var rows []models.CreditApplicationModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list credit applications: %w", err)
	}
	apps := make([]credit.CreditApplication, len(rows))
	for i := range rows {
		apps[i] = *rows[i].ToDomain()
	}
	return apps, total, nil
}

// Save inserts a new application
func (r *GormCreditApplicationRepository) Save(ctx context.Context, app *credit.CreditApplication) error {
	if err := r.db.WithContext(ctx).Create(models.CreditApplicationModelFromDomain(app)).Error; err != nil {
		return fmt.Errorf("insert credit application: %w", err)
	}
	return nil
}

// SaveWithLock saves with optimistic locking: the stored row must still be at app.Version-1
func (r *GormCreditApplicationRepository) SaveWithLock(ctx context.Context, app *credit.CreditApplication) error {
	return saveWithLock(r.db.WithContext(ctx), app)
}

// SaveTransition applies the locked update and appends the audit entry in one
// transaction. A lost race writes nothing.
func (r *GormCreditApplicationRepository) SaveTransition(ctx context.Context, app *credit.CreditApplication, entry credit.TransitionAuditEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveWithLock(tx, app); err != nil {
			return err
		}
		if err := tx.Create(models.TransitionAuditModelFromDomain(entry)).Error; err != nil {
			return fmt.Errorf("insert transition audit: %w", err)
		}
		return nil
	})
}

func saveWithLock(db *gorm.DB, app *credit.CreditApplication) error {
	m := models.CreditApplicationModelFromDomain(app)
	result := db.Model(&models.CreditApplicationModel{}).
		Where("id = ? AND version = ?", app.ID, app.Version-1).
		Updates(map[string]any{
			"client_id":           m.ClientID,
			"branch_id":           m.BranchID,
			"credit_officer_id":   m.CreditOfficerID,
			"loan_product_id":     m.LoanProductID,
			"credit_purpose_id":   m.CreditPurposeID,
			"savings_account_id":  m.SavingsAccountID,
			"amount_requested":    m.AmountRequested,
			"duration_months":     m.DurationMonths,
			"repayment_frequency": m.RepaymentFrequency,
			"status_code":         m.StatusCode,
			"status_date":         m.StatusDate,
			"amount_approved":     m.AmountApproved,
			"duration_approved":   m.DurationApproved,
			"notes":               m.Notes,
			"version":             m.Version,
			"updated_at":          m.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("update credit application: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return credit.ErrConcurrentModification
	}
	return nil
}

// GenerateApplicationNumber returns the next CR-YYYYMMDD-NNNNNN number for today.
// The unique index on application_number rejects a number taken by a concurrent creator.
func (r *GormCreditApplicationRepository) GenerateApplicationNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s%s-", applicationNumberPrefix, r.now().Format("20060102"))

	var last models.CreditApplicationModel
	err := r.db.WithContext(ctx).
		Select("application_number").
		Where("application_number LIKE ?", prefix+"%").
		Order("application_number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("read last application number: %w", err)
	}

	next := 1
	if err == nil {
		var n int
		if _, scanErr := fmt.Sscanf(strings.TrimPrefix(last.ApplicationNumber, prefix), "%d", &n); scanErr == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%06d", prefix, next), nil
}

// CountByStatus returns the number of applications per status
func (r *GormCreditApplicationRepository) CountByStatus(ctx context.Context) (map[credit.StatusCode]int64, error) {
	var rows []struct {
		StatusCode string
		Total      int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.CreditApplicationModel{}).
		Select("status_code, COUNT(*) AS total").
		Group("status_code").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}
	out := make(map[credit.StatusCode]int64, len(rows))
	for _, row := range rows {
		out[credit.StatusCode(row.StatusCode)] = row.Total
	}
	return out, nil
}

var _ credit.ApplicationRepository = (*GormCreditApplicationRepository)(nil)
