package app

import (
	"context"

	"priceActionBot/internal/domain"
	"priceActionBot/internal/ports"
)

// NullModel is the default regime-probability collaborator when no trained
// model is deployed: it always allows the trade but at half confidence, so
// the sizer stays in the base risk band rather than the top one.
type NullModel struct{}

var _ ports.RegimeModel = (*NullModel)(nil)

// Evaluate returns neutral, half-confident advice.
func (NullModel) Evaluate(ctx context.Context, rec *domain.FeatureRecord) (domain.ModelAdvice, error) {
	return domain.ModelAdvice{
		Bias:             domain.Neutral,
		Environment:      domain.RegimeNotReady,
		ContinuationProb: 0.5,
		Confidence:       0.5,
	}, nil
}

// Observe is a no-op.
func (NullModel) Observe(ctx context.Context, rec *domain.FeatureRecord, outcome int) {}
