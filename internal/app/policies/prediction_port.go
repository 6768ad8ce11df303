package policies

import (
	"context"

	"churnportal/internal/domain/employee"
)

// BatchResponse is the raw answer of the batch prediction endpoint.
type BatchResponse struct {
	Summary     employee.BatchSummary
	Predictions []string
}

// PredictionPort talks to the prediction API. Records are already normalized
// to the 0-1 rating range.
type PredictionPort interface {
	Predict(ctx context.Context, record employee.Record) (string, error)
	PredictBatch(ctx context.Context, records []employee.Record) (BatchResponse, error)
}
