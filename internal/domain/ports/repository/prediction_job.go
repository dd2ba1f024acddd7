package repository

import (
	"context"

	"fair-model-service/internal/domain/model"
)

// PredictionJobRepository stores finished jobs. Save is an upsert keyed by job ID.
type PredictionJobRepository interface {
	Save(ctx context.Context, tx Tx, job *model.PredictionJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PredictionJob, error)
}
