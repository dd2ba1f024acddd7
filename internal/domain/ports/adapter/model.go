package adapter

import (
	"context"

	"fair-model-service/internal/domain/model"
)

// ModelHandle is the capability every resolved model exposes to the service.
// Implementations must be safe for concurrent use; they are shared read-only after startup.
type ModelHandle interface {
	Metadata() model.ModelMetadata
	// InputParameters lists the required input field names in declared order.
	InputParameters() []string
	Predict(ctx context.Context, in model.Payload) (model.Prediction, error)
}
