package credit

import (
	"github.com/shopspring/decimal"
)

// Capacity policy constants
var (
	// CapacityFactor is the share of disposable income available for repayment
	CapacityFactor = decimal.RequireFromString("0.70")
	// MaxDebtRatio is the debt ratio (percent) at or above which capacity is insufficient
	MaxDebtRatio = decimal.NewFromInt(40)
	// LowRiskDebtRatio is the debt ratio (percent) below which risk is low
	LowRiskDebtRatio = decimal.NewFromInt(30)
)

var hundred = decimal.NewFromInt(100)

// RiskLevel classifies an assessment by debt ratio
type RiskLevel string

const (
	RiskLow      RiskLevel = "FAIBLE"
	RiskModerate RiskLevel = "MODERE"
	RiskHigh     RiskLevel = "ELEVE"
)

// CapacityAssessment is the derived repayment capacity of an application
type CapacityAssessment struct {
	TotalDeclaredIncome    decimal.Decimal `json:"total_declared_income"`
	TotalVerifiedIncome    decimal.Decimal `json:"total_verified_income"`
	TotalMonthlyExpense    decimal.Decimal `json:"total_monthly_expense"`
	TotalEssentialExpense  decimal.Decimal `json:"total_essential_expense"`
	DisposableIncome       decimal.Decimal `json:"disposable_income"`
	RepaymentCapacity      decimal.Decimal `json:"repayment_capacity"`
	DebtRatio              decimal.Decimal `json:"debt_ratio"`
	RecommendedMaxAmount   decimal.Decimal `json:"recommended_max_amount"`
	RecommendedMaxDuration int             `json:"recommended_max_duration"`
	IsCapacitySufficient   bool            `json:"is_capacity_sufficient"`
	RiskLevel              RiskLevel       `json:"risk_level"`
	CapacityScore          int             `json:"capacity_score"`
}

// ComputeCapacity aggregates income and expense records into a capacity assessment.
// It has no side effects and degenerate inputs yield zeroed output. product may be nil.
func ComputeCapacity(incomes []IncomeRecord, expenses []ExpenseRecord, app *CreditApplication, product *LoanProduct) CapacityAssessment {
	a := CapacityAssessment{
		TotalDeclaredIncome:   decimal.Zero,
		TotalVerifiedIncome:   decimal.Zero,
		TotalMonthlyExpense:   decimal.Zero,
		TotalEssentialExpense: decimal.Zero,
		DebtRatio:             decimal.Zero,
		RecommendedMaxAmount:  decimal.Zero,
	}

	for _, in := range incomes {
		a.TotalDeclaredIncome = a.TotalDeclaredIncome.Add(in.DeclaredAmount)
		a.TotalVerifiedIncome = a.TotalVerifiedIncome.Add(in.EffectiveVerifiedAmount())
	}
	for _, ex := range expenses {
		a.TotalMonthlyExpense = a.TotalMonthlyExpense.Add(ex.MonthlyAmount)
		if ex.IsEssential {
			a.TotalEssentialExpense = a.TotalEssentialExpense.Add(ex.MonthlyAmount)
		}
	}

	a.DisposableIncome = a.TotalVerifiedIncome.Sub(a.TotalMonthlyExpense)
	a.RepaymentCapacity = a.DisposableIncome.Mul(CapacityFactor)

	var requested decimal.Decimal
	duration := 0
	if app != nil {
		requested = app.AmountRequested
		duration = app.DurationMonths
	}

	// thresholds compare the rounded ratio that is reported
	ratio := debtRatio(requested, duration, a.TotalVerifiedIncome).Round(2)
	a.DebtRatio = ratio
	a.IsCapacitySufficient = ratio.LessThan(MaxDebtRatio) && !a.DisposableIncome.IsNegative()
	a.RiskLevel = riskLevel(ratio, requested, a.TotalVerifiedIncome)
	a.CapacityScore = capacityScore(ratio, a)

	a.RecommendedMaxAmount = recommendedAmount(a.RepaymentCapacity, duration, product)
	a.RecommendedMaxDuration = recommendedDuration(a.RepaymentCapacity, requested, product)

	return a
}

// debtRatio is the even-principal monthly installment as a percentage of verified income.
// Interest is not amortized.
func debtRatio(requested decimal.Decimal, durationMonths int, verifiedIncome decimal.Decimal) decimal.Decimal {
	if !verifiedIncome.IsPositive() {
		return decimal.Zero
	}
	months := durationMonths
	if months < 1 {
		months = 1
	}
	installment := requested.Div(decimal.NewFromInt(int64(months)))
	return installment.Div(verifiedIncome).Mul(hundred)
}

func riskLevel(ratio, requested, verifiedIncome decimal.Decimal) RiskLevel {
	if !verifiedIncome.IsPositive() && requested.IsPositive() {
		return RiskHigh
	}
	switch {
	case ratio.LessThan(LowRiskDebtRatio):
		return RiskLow
	case ratio.LessThan(MaxDebtRatio):
		return RiskModerate
	default:
		return RiskHigh
	}
}

// capacityScore maps the assessment onto 0..100, higher is better
func capacityScore(ratio decimal.Decimal, a CapacityAssessment) int {
	if a.DisposableIncome.IsNegative() || !a.TotalVerifiedIncome.IsPositive() {
		return 0
	}
	score := hundred.Sub(ratio)
	if score.IsNegative() {
		return 0
	}
	if score.GreaterThan(hundred) {
		return 100
	}
	return int(score.Floor().IntPart())
}

// recommendedAmount is the principal repayable over the requested term at full capacity,
// bounded by the product amount range
func recommendedAmount(capacity decimal.Decimal, durationMonths int, product *LoanProduct) decimal.Decimal {
	if !capacity.IsPositive() {
		return decimal.Zero
	}
	term := durationMonths
	if product != nil {
		term = product.ClampTerm(term)
	}
	if term < 1 {
		term = 1
	}

	amount := capacity.Mul(decimal.NewFromInt(int64(term))).Floor()
	if product == nil || !product.HasConsistentAmountBounds() {
		return amount
	}
	if product.HasAmountCeiling() && amount.GreaterThan(product.MaxAmount) {
		amount = product.MaxAmount
	}
	if amount.LessThan(product.MinAmount) {
		amount = product.MinAmount
	}
	return amount
}

// recommendedDuration is the shortest term that repays the requested amount at capacity,
// bounded by the product term range
func recommendedDuration(capacity, requested decimal.Decimal, product *LoanProduct) int {
	if !capacity.IsPositive() || !requested.IsPositive() {
		return 0
	}
	months := int(requested.Div(capacity).Ceil().IntPart())
	if months < 1 {
		months = 1
	}
	if product != nil {
		months = product.ClampTerm(months)
	}
	return months
}
