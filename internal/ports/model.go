package ports

import (
	"context"

	"priceActionBot/internal/domain"
)

// RegimeModel is the external regime-probability collaborator. The core
// treats its output as advisory: an unavailable or untrained model must
// return permissive neutral values, never an error the engine can't absorb.
type RegimeModel interface {
	// Evaluate scores a candidate trade's feature record.
	Evaluate(ctx context.Context, features *domain.FeatureRecord) (domain.ModelAdvice, error)

	// Observe feeds a resolved outcome back to the model (1 win, 0 loss).
	Observe(ctx context.Context, features *domain.FeatureRecord, outcome int)
}
