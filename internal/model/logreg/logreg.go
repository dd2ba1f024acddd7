// Package logreg evaluates fitted logistic regression models described by a
// declarative parameters artifact.
package logreg

import (
	"context"
	"fmt"
	"math"
	"strings"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
	"fair-model-service/internal/domain/ports/adapter"
)

var _ adapter.ModelHandle = (*Model)(nil)

// Model is immutable after New and safe for concurrent use.
type Model struct {
	params   model.ModelParameters
	features []string
}

func New(p model.ModelParameters) (*Model, error) {
	if p.ModelType != model.ModelTypeLogisticRegression {
		return nil, fmt.Errorf("%w: unsupported model_type %q", domain.ErrConfiguration, p.ModelType)
	}
	seen := make(map[string]struct{}, len(p.Coefficients))
	for _, c := range p.Coefficients {
		if c.Feature == "" {
			return nil, fmt.Errorf("%w: empty feature name", domain.ErrConfiguration)
		}
		if _, dup := seen[c.Feature]; dup {
			return nil, fmt.Errorf("%w: duplicate feature %q", domain.ErrConfiguration, c.Feature)
		}
		seen[c.Feature] = struct{}{}
	}
	cp := p
	cp.Coefficients = append([]model.Coefficient(nil), p.Coefficients...)
	if cp.ModelName == "" {
		cp.ModelName = model.ModelTypeLogisticRegression
	}
	return &Model{params: cp, features: cp.Features()}, nil
}

// Parameters returns a copy of the fitted parameters.
func (m *Model) Parameters() model.ModelParameters {
	cp := m.params
	cp.Coefficients = append([]model.Coefficient(nil), m.params.Coefficients...)
	return cp
}

func (m *Model) Metadata() model.ModelMetadata {
	return model.ModelMetadata{
		ModelURI:    m.params.ModelURI,
		ModelName:   m.params.ModelName,
		InputFields: model.NumericFields(m.features),
	}
}

func (m *Model) InputParameters() []string {
	return append([]string(nil), m.features...)
}

// Probability scores one record.
func (m *Model) Probability(rec map[string]any) (float64, error) {
	var missing, invalid []string
	score := m.params.Intercept
	for _, c := range m.params.Coefficients {
		v, ok := rec[c.Feature]
		if !ok || v == nil {
			missing = append(missing, c.Feature)
			continue
		}
		x, ok := model.Number(v)
		if !ok {
			invalid = append(invalid, c.Feature)
			continue
		}
		score += c.Weight * x
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: missing required feature(s): %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return 0, fmt.Errorf("%w: non-numeric feature(s): %s", domain.ErrValidation, strings.Join(invalid, ", "))
	}
	return Sigmoid(score), nil
}

// Predict scores every record. A single invalid record fails the whole batch.
func (m *Model) Predict(ctx context.Context, in model.Payload) (model.Prediction, error) {
	if err := in.Validate(); err != nil {
		return model.Prediction{}, err
	}
	out := make([]float64, len(in.Records))
	for i, rec := range in.Records {
		if err := ctx.Err(); err != nil {
			return model.Prediction{}, err
		}
		p, err := m.Probability(rec)
		if err != nil {
			if in.Batch {
				return model.Prediction{}, fmt.Errorf("record %d: %w", i, err)
			}
			return model.Prediction{}, err
		}
		out[i] = p
	}
	return model.Prediction{Values: out, Batch: in.Batch}, nil
}

// Sigmoid is the logistic function, evaluated without overflow for large |x|.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
