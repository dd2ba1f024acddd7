// Package threshold is a custom-code model: a rule-based risk score written in Go
// rather than described by a parameters artifact. Importing the package registers
// it as module "threshold", type "ThresholdModel".
package threshold

import (
	"context"
	"fmt"
	"strings"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
	"fair-model-service/internal/domain/ports/adapter"
	"fair-model-service/internal/model/registry"
)

const (
	Module = "threshold"
	Type   = "ThresholdModel"
)

func init() {
	registry.Register(Module, Type, func(registry.Options) (adapter.ModelHandle, error) {
		return New(DefaultRules), nil
	})
}

// Rule is satisfied when the feature is at or above Cutoff.
type Rule struct {
	Feature string
	Cutoff  float64
}

var DefaultRules = []Rule{
	{Feature: "age", Cutoff: 65},
	{Feature: "tumor_size_cm", Cutoff: 3},
	{Feature: "positive_nodes", Cutoff: 1},
}

// Model scores a record as the fraction of satisfied rules.
type Model struct {
	rules []Rule
}

var _ adapter.ModelHandle = (*Model)(nil)

func New(rules []Rule) *Model {
	return &Model{rules: append([]Rule(nil), rules...)}
}

func (m *Model) Metadata() model.ModelMetadata {
	return model.ModelMetadata{
		ModelURI:    "urn:fair-model:threshold:v1",
		ModelName:   "threshold risk score",
		InputFields: model.NumericFields(m.InputParameters()),
	}
}

func (m *Model) InputParameters() []string {
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.Feature
	}
	return out
}

func (m *Model) Predict(ctx context.Context, in model.Payload) (model.Prediction, error) {
	if err := in.Validate(); err != nil {
		return model.Prediction{}, err
	}
	out := make([]float64, 0, len(in.Records))
	for i, rec := range in.Records {
		s, err := m.score(rec)
		if err != nil {
			return model.Prediction{}, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, s)
	}
	return model.Prediction{Values: out, Batch: in.Batch}, nil
}

func (m *Model) score(rec map[string]any) (float64, error) {
	if len(m.rules) == 0 {
		return 0, nil
	}
	var missing []string
	hits := 0
	for _, r := range m.rules {
		v, ok := model.Number(rec[r.Feature])
		if !ok {
			missing = append(missing, r.Feature)
			continue
		}
		if v >= r.Cutoff {
			hits++
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: missing or non-numeric feature(s): %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return float64(hits) / float64(len(m.rules)), nil
}
