package credit

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Validation error codes
const (
	VCodeRequired                  = "REQUIRED"
	VCodeAmountNotPositive         = "AMOUNT_NOT_POSITIVE"
	VCodeAmountBelowMinimum        = "AMOUNT_BELOW_MINIMUM"
	VCodeAmountAboveMaximum        = "AMOUNT_ABOVE_MAXIMUM"
	VCodeDurationNotPositive       = "DURATION_NOT_POSITIVE"
	VCodeDurationBelowMinimum      = "DURATION_BELOW_MINIMUM"
	VCodeDurationAboveMaximum      = "DURATION_ABOVE_MAXIMUM"
	VCodeProductAmountBounds       = "PRODUCT_AMOUNT_BOUNDS_INCONSISTENT"
	VCodeProductTermBounds         = "PRODUCT_TERM_BOUNDS_INCONSISTENT"
	VCodeApprovedAmountRequired    = "APPROVED_AMOUNT_REQUIRED"
	VCodeApprovedAmountNotPositive = "APPROVED_AMOUNT_NOT_POSITIVE"
	VCodeApprovedAmountNotReduced  = "APPROVED_AMOUNT_NOT_REDUCED"
	VCodeApprovedAmountAboveAsked  = "APPROVED_AMOUNT_ABOVE_REQUESTED"
	VCodeApprovedAmountAboveMax    = "APPROVED_AMOUNT_ABOVE_MAXIMUM"
	VCodeApprovedDurationInvalid   = "APPROVED_DURATION_NOT_POSITIVE"
	VCodeDecisionReasonRequired    = "DECISION_REASON_REQUIRED"
)

// Validator checks applications and committee decisions against business rules.
// It never fails; all violations are returned together.
type Validator struct {
	printer *message.Printer
}

// ValidatorOption configures a Validator
type ValidatorOption func(*Validator)

// WithLocale sets the locale used to format amounts in messages
func WithLocale(tag language.Tag) ValidatorOption {
	return func(v *Validator) {
		v.printer = message.NewPrinter(tag)
	}
}

// NewValidator creates a validator formatting numbers for English by default
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{printer: message.NewPrinter(language.English)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateApplication checks required fields and, when product is known, the product bounds
func (v *Validator) ValidateApplication(app *CreditApplication, product *LoanProduct) ValidationErrors {
	errs := ValidationErrors{}

	required := []struct {
		field string
		set   bool
	}{
		{"savings_account_id", app.SavingsAccountID != nil},
		{"client_id", app.ClientID != nil},
		{"branch_id", app.BranchID != nil},
		{"credit_officer_id", app.CreditOfficerID != nil},
		{"loan_product_id", app.LoanProductID != nil},
		{"credit_purpose_id", app.CreditPurposeID != nil},
	}
	for _, r := range required {
		if !r.set {
			errs = append(errs, ValidationError{
				Field:   r.field,
				Code:    VCodeRequired,
				Message: fmt.Sprintf("%s is required", r.field),
			})
		}
	}

	if !app.AmountRequested.IsPositive() {
		errs = append(errs, ValidationError{
			Field:   "amount_requested",
			Code:    VCodeAmountNotPositive,
			Message: "Requested amount must be greater than zero",
		})
	}
	if app.DurationMonths <= 0 {
		errs = append(errs, ValidationError{
			Field:   "duration_months",
			Code:    VCodeDurationNotPositive,
			Message: "Duration must be at least one month",
		})
	}

	if product != nil {
		errs = append(errs, v.validateAgainstProduct(app, product)...)
	}
	return errs
}

func (v *Validator) validateAgainstProduct(app *CreditApplication, p *LoanProduct) ValidationErrors {
	var errs ValidationErrors

	if !p.HasConsistentAmountBounds() {
		errs = append(errs, ValidationError{
			Field: "loan_product_id",
			Code:  VCodeProductAmountBounds,
			Message: v.printer.Sprintf("Product %s has a minimum amount (%v) above its maximum amount (%v)",
				p.Code, amount(p.MinAmount), amount(p.MaxAmount)),
		})
	}
	if app.AmountRequested.LessThan(p.MinAmount) {
		errs = append(errs, ValidationError{
			Field: "amount_requested",
			Code:  VCodeAmountBelowMinimum,
			Message: v.printer.Sprintf("Requested amount %v is below the product minimum amount of %v",
				amount(app.AmountRequested), amount(p.MinAmount)),
		})
	}
	if p.HasAmountCeiling() && app.AmountRequested.GreaterThan(p.MaxAmount) {
		errs = append(errs, ValidationError{
			Field: "amount_requested",
			Code:  VCodeAmountAboveMaximum,
			Message: v.printer.Sprintf("Requested amount %v exceeds the product maximum amount of %v",
				amount(app.AmountRequested), amount(p.MaxAmount)),
		})
	}

	if !p.HasConsistentTermBounds() {
		errs = append(errs, ValidationError{
			Field: "loan_product_id",
			Code:  VCodeProductTermBounds,
			Message: fmt.Sprintf("Product %s has a minimum term (%d months) above its maximum term (%d months)",
				p.Code, p.MinTermMonths, p.MaxTermMonths),
		})
	}
	if app.DurationMonths > 0 && app.DurationMonths < p.MinTermMonths {
		errs = append(errs, ValidationError{
			Field: "duration_months",
			Code:  VCodeDurationBelowMinimum,
			Message: fmt.Sprintf("Duration of %d months is below the product minimum term of %d months",
				app.DurationMonths, p.MinTermMonths),
		})
	}
	if p.HasTermCeiling() && app.DurationMonths > p.MaxTermMonths {
		errs = append(errs, ValidationError{
			Field: "duration_months",
			Code:  VCodeDurationAboveMaximum,
			Message: fmt.Sprintf("Duration of %d months exceeds the product maximum term of %d months",
				app.DurationMonths, p.MaxTermMonths),
		})
	}
	return errs
}

// ValidateCommitteeDecision checks the inputs a committee decision needs
// against the application and, when given, its product.
func (v *Validator) ValidateCommitteeDecision(app *CreditApplication, product *LoanProduct, decision CommitteeDecision, req CommitteeDecisionRequest) ValidationErrors {
	errs := ValidationErrors{}

	if decision.ReducesAmount {
		switch {
		case req.ApprovedAmount == nil:
			errs = append(errs, ValidationError{
				Field:   "approved_amount",
				Code:    VCodeApprovedAmountRequired,
				Message: fmt.Sprintf("Decision %s requires an approved amount", decision.Code),
			})
		case !req.ApprovedAmount.IsPositive():
			errs = append(errs, ValidationError{
				Field:   "approved_amount",
				Code:    VCodeApprovedAmountNotPositive,
				Message: "Approved amount must be greater than zero",
			})
		case !req.ApprovedAmount.LessThan(app.AmountRequested):
			errs = append(errs, ValidationError{
				Field: "approved_amount",
				Code:  VCodeApprovedAmountNotReduced,
				Message: v.printer.Sprintf("Approved amount %v must be below the requested amount of %v",
					amount(*req.ApprovedAmount), amount(app.AmountRequested)),
			})
		}
	} else if decision.IsApproval && req.ApprovedAmount != nil {
		approved := *req.ApprovedAmount
		switch {
		case !approved.IsPositive():
			errs = append(errs, ValidationError{
				Field:   "approved_amount",
				Code:    VCodeApprovedAmountNotPositive,
				Message: "Approved amount must be greater than zero",
			})
		case approved.GreaterThan(app.AmountRequested):
			errs = append(errs, ValidationError{
				Field: "approved_amount",
				Code:  VCodeApprovedAmountAboveAsked,
				Message: v.printer.Sprintf("Approved amount %v exceeds the requested amount of %v",
					amount(approved), amount(app.AmountRequested)),
			})
		}
	}

	grants := decision.IsApproval || decision.ReducesAmount
	if grants && req.ApprovedAmount != nil && product != nil && product.HasAmountCeiling() && req.ApprovedAmount.GreaterThan(product.MaxAmount) {
		errs = append(errs, ValidationError{
			Field: "approved_amount",
			Code:  VCodeApprovedAmountAboveMax,
			Message: v.printer.Sprintf("Approved amount %v exceeds the product maximum amount of %v",
				amount(*req.ApprovedAmount), amount(product.MaxAmount)),
		})
	}

	if req.ApprovedDuration != nil && *req.ApprovedDuration <= 0 {
		errs = append(errs, ValidationError{
			Field:   "approved_duration",
			Code:    VCodeApprovedDurationInvalid,
			Message: "Approved duration must be at least one month",
		})
	}

	if decision.RequiresReason && strings.TrimSpace(req.Notes) == "" {
		errs = append(errs, ValidationError{
			Field:   "notes",
			Code:    VCodeDecisionReasonRequired,
			Message: fmt.Sprintf("Decision %s requires a reason", decision.Code),
		})
	}
	return errs
}

// ValidateProduct flags inconsistent product bounds
func (v *Validator) ValidateProduct(p LoanProduct) ValidationErrors {
	errs := ValidationErrors{}
	if p.MinAmount.IsNegative() {
		errs = append(errs, ValidationError{Field: "min_amount", Code: VCodeAmountNotPositive, Message: "Minimum amount cannot be negative"})
	}
	if !p.HasConsistentAmountBounds() {
		errs = append(errs, ValidationError{
			Field: "max_amount",
			Code:  VCodeProductAmountBounds,
			Message: v.printer.Sprintf("Minimum amount (%v) is above maximum amount (%v)",
				amount(p.MinAmount), amount(p.MaxAmount)),
		})
	}
	if p.MinTermMonths < 0 {
		errs = append(errs, ValidationError{Field: "min_term_months", Code: VCodeDurationNotPositive, Message: "Minimum term cannot be negative"})
	}
	if !p.HasConsistentTermBounds() {
		errs = append(errs, ValidationError{
			Field:   "max_term_months",
			Code:    VCodeProductTermBounds,
			Message: fmt.Sprintf("Minimum term (%d months) is above maximum term (%d months)", p.MinTermMonths, p.MaxTermMonths),
		})
	}
	return errs
}

func amount(d decimal.Decimal) number.Formatter {
	return number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2))
}
