package credit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanProduct carries the bounds a credit application is checked against.
// A non-positive MaxAmount or MaxTermMonths leaves that side of the range open.
type LoanProduct struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	MinAmount     decimal.Decimal `json:"min_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount"`
	MinTermMonths int             `json:"min_term_months"`
	MaxTermMonths int             `json:"max_term_months"`
	IsActive      bool            `json:"is_active"`
}

// HasAmountCeiling reports whether the product caps the amount
func (p LoanProduct) HasAmountCeiling() bool {
	return p.MaxAmount.IsPositive()
}

// HasTermCeiling reports whether the product caps the term
func (p LoanProduct) HasTermCeiling() bool {
	return p.MaxTermMonths > 0
}

// HasConsistentAmountBounds reports whether MinAmount <= MaxAmount when a ceiling is set
func (p LoanProduct) HasConsistentAmountBounds() bool {
	return !p.HasAmountCeiling() || p.MinAmount.LessThanOrEqual(p.MaxAmount)
}

// HasConsistentTermBounds reports whether MinTermMonths <= MaxTermMonths when a ceiling is set
func (p LoanProduct) HasConsistentTermBounds() bool {
	return !p.HasTermCeiling() || p.MinTermMonths <= p.MaxTermMonths
}

// ClampTerm restricts months to the product's term range.
// Inconsistent bounds leave months unchanged.
func (p LoanProduct) ClampTerm(months int) int {
	if !p.HasConsistentTermBounds() {
		return months
	}
	if p.MinTermMonths > 0 && months < p.MinTermMonths {
		return p.MinTermMonths
	}
	if p.HasTermCeiling() && months > p.MaxTermMonths {
		return p.MaxTermMonths
	}
	return months
}
