package credit

import (
	"context"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/google/uuid"
)

// ===================== Income Record Operations =====================

// ListIncomes returns the income records of an application
func (s *LifecycleService) ListIncomes(ctx context.Context, applicationID uuid.UUID) ([]IncomeResponse, error) {
	if _, err := s.appRepo.FindByID(ctx, applicationID); err != nil {
		return nil, err
	}
	records, err := s.incomeRepo.FindByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	out := make([]IncomeResponse, len(records))
	for i := range records {
		out[i] = toIncomeResponse(&records[i])
	}
	return out, nil
}

// AddIncome records a declared income on an editable application
func (s *LifecycleService) AddIncome(ctx context.Context, applicationID uuid.UUID, req IncomeRequest) (*IncomeResponse, error) {
	if _, err := s.editableApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	record, err := credit.NewIncomeRecord(applicationID, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.incomeRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	resp := toIncomeResponse(record)
	return &resp, nil
}

// UpdateIncome replaces the declared fields of an income record
func (s *LifecycleService) UpdateIncome(ctx context.Context, incomeID uuid.UUID, req IncomeRequest) (*IncomeResponse, error) {
	record, err := s.incomeRepo.FindByID(ctx, incomeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.editableApplication(ctx, record.ApplicationID); err != nil {
		return nil, err
	}
	if err := record.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.incomeRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	resp := toIncomeResponse(record)
	return &resp, nil
}

// VerifyIncome marks an income record as verified for the given amount
func (s *LifecycleService) VerifyIncome(ctx context.Context, incomeID uuid.UUID, req VerifyIncomeRequest) (*IncomeResponse, error) {
	record, err := s.incomeRepo.FindByID(ctx, incomeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.editableApplication(ctx, record.ApplicationID); err != nil {
		return nil, err
	}
	if req.VerifiedAmount == nil {
		return nil, credit.ValidationErrors{{
			Field:   "verified_amount",
			Code:    credit.VCodeRequired,
			Message: "verified_amount is required",
		}}
	}
	if err := record.Verify(*req.VerifiedAmount, actorOrSystem(req.Actor)); err != nil {
		return nil, err
	}
	if err := s.incomeRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	resp := toIncomeResponse(record)
	return &resp, nil
}

// DeleteIncome removes an income record from an editable application
func (s *LifecycleService) DeleteIncome(ctx context.Context, incomeID uuid.UUID) error {
	record, err := s.incomeRepo.FindByID(ctx, incomeID)
	if err != nil {
		return err
	}
	if _, err := s.editableApplication(ctx, record.ApplicationID); err != nil {
		return err
	}
	return s.incomeRepo.Delete(ctx, incomeID)
}

// ===================== Expense Record Operations =====================

// ListExpenses returns the expense records of an application
func (s *LifecycleService) ListExpenses(ctx context.Context, applicationID uuid.UUID) ([]ExpenseResponse, error) {
	if _, err := s.appRepo.FindByID(ctx, applicationID); err != nil {
		return nil, err
	}
	records, err := s.expenseRepo.FindByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	out := make([]ExpenseResponse, len(records))
	for i := range records {
		out[i] = toExpenseResponse(&records[i])
	}
	return out, nil
}

// AddExpense records a monthly expense on an editable application
func (s *LifecycleService) AddExpense(ctx context.Context, applicationID uuid.UUID, req ExpenseRequest) (*ExpenseResponse, error) {
	if _, err := s.editableApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	record, err := credit.NewExpenseRecord(applicationID, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	resp := toExpenseResponse(record)
	return &resp, nil
}

// UpdateExpense replaces the fields of an expense record
func (s *LifecycleService) UpdateExpense(ctx context.Context, expenseID uuid.UUID, req ExpenseRequest) (*ExpenseResponse, error) {
	record, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.editableApplication(ctx, record.ApplicationID); err != nil {
		return nil, err
	}
	if err := record.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	resp := toExpenseResponse(record)
	return &resp, nil
}

// DeleteExpense removes an expense record from an editable application
func (s *LifecycleService) DeleteExpense(ctx context.Context, expenseID uuid.UUID) error {
	record, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return err
	}
	if _, err := s.editableApplication(ctx, record.ApplicationID); err != nil {
		return err
	}
	return s.expenseRepo.Delete(ctx, expenseID)
}

func (s *LifecycleService) editableApplication(ctx context.Context, id uuid.UUID) (*credit.CreditApplication, error) {
	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	status, err := s.def.StatusByCode(ctx, app.StatusCode)
	if err != nil {
		return nil, err
	}
	if err := app.EnsureEditable(status); err != nil {
		return nil, err
	}
	return app, nil
}
