package credit

import (
	"context"

	"github.com/google/uuid"
)

// StatusCatalog looks up application statuses by code
type StatusCatalog interface {
	StatusByCode(ctx context.Context, code StatusCode) (ApplicationStatus, error)
}

// DecisionCatalog looks up committee decisions by code
type DecisionCatalog interface {
	DecisionByCode(ctx context.Context, code DecisionCode) (CommitteeDecision, error)
}

// ProductCatalog looks up loan products by id.
// A missing product is reported with shared.ErrNotFound.
type ProductCatalog interface {
	ProductByID(ctx context.Context, id uuid.UUID) (*LoanProduct, error)
}
