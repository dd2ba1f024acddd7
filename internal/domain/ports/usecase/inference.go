package usecase

import (
	"context"

	"fair-model-service/internal/domain/model"
)

// StatusView is what pollers see: the code, its fixed message and, for failed jobs, the error.
type StatusView struct {
	Code    model.Status
	Message string
	Error   string
}

type InferenceService interface {
	Submit(ctx context.Context, in model.Payload) (jobID string, err error)
	Status() StatusView
	Result() (model.Prediction, bool)
	Metadata() model.ModelMetadata
	InputParameters() []string
	Job() model.PredictionJob
}
