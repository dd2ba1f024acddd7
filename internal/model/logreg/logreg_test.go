//go:build !integration

package logreg

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
)

const sample = `{"model_type": "logistic_regression", "x1": 1.0, "x2": -1.0, "intercept": 0.5}`

func newSample(t *testing.T) *Model {
	t.Helper()
	p, err := ParseParameters([]byte(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := New(p)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return m
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-4 }

func TestPredict_Single(t *testing.T) {
	m := newSample(t)

	got, err := m.Predict(context.Background(), model.Single(map[string]any{"x1": 2.0, "x2": 0.0}))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got.Batch || len(got.Values) != 1 {
		t.Fatalf("want single value, got %+v", got)
	}
	if !almostEqual(got.Values[0], 0.9241) {
		t.Fatalf("want ~0.9241, got %v", got.Values[0])
	}
	want := 1 / (1 + math.Exp(-(0.5 + 2*1.0 + 0*-1.0)))
	if math.Abs(got.Values[0]-want) > 1e-12 {
		t.Fatalf("want %v, got %v", want, got.Values[0])
	}
}

func TestPredict_Batch(t *testing.T) {
	m := newSample(t)
	ctx := context.Background()

	recs := []map[string]any{{"x1": 2.0, "x2": 0.0}, {"x1": 0.0, "x2": 0.0}}
	got, err := m.Predict(ctx, model.BatchOf(recs...))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !got.Batch || len(got.Values) != 2 {
		t.Fatalf("want two values, got %+v", got)
	}
	for i, rec := range recs {
		single, err := m.Predict(ctx, model.Single(rec))
		if err != nil {
			t.Fatalf("single %d: %v", i, err)
		}
		if got.Values[i] != single.Values[0] {
			t.Errorf("record %d: batch %v != single %v", i, got.Values[i], single.Values[0])
		}
	}
	if !almostEqual(got.Values[1], 0.6225) {
		t.Errorf("want ~0.6225, got %v", got.Values[1])
	}
}

func TestPredict_ValidationErrors(t *testing.T) {
	m := newSample(t)
	ctx := context.Background()

	t.Run("missing feature is never defaulted", func(t *testing.T) {
		got, err := m.Predict(ctx, model.Single(map[string]any{"x1": 2.0}))
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("want ErrValidation, got %v", err)
		}
		if !strings.Contains(err.Error(), "x2") {
			t.Errorf("error should name the missing field: %v", err)
		}
		if len(got.Values) != 0 {
			t.Errorf("want no values, got %v", got.Values)
		}
	})

	t.Run("all missing fields are named in order", func(t *testing.T) {
		_, err := m.Predict(ctx, model.Single(map[string]any{}))
		if err == nil || !strings.Contains(err.Error(), "x1, x2") {
			t.Fatalf("want both fields named, got %v", err)
		}
	})

	t.Run("non numeric feature", func(t *testing.T) {
		_, err := m.Predict(ctx, model.Single(map[string]any{"x1": "two", "x2": 0.0}))
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("want ErrValidation, got %v", err)
		}
	})

	t.Run("one bad record fails the whole batch", func(t *testing.T) {
		got, err := m.Predict(ctx, model.BatchOf(
			map[string]any{"x1": 2.0, "x2": 0.0},
			map[string]any{"x1": 1.0},
		))
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("want ErrValidation, got %v", err)
		}
		if !strings.Contains(err.Error(), "record 1") {
			t.Errorf("error should carry the record index: %v", err)
		}
		if got.Values != nil {
			t.Errorf("want no partial result, got %v", got.Values)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := m.Predict(ctx, model.BatchOf())
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("want ErrValidation, got %v", err)
		}
	})

	t.Run("extra fields are ignored", func(t *testing.T) {
		_, err := m.Predict(ctx, model.Single(map[string]any{"x1": 1.0, "x2": 1.0, "age": 40.0}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestMetadataAndInputParameters(t *testing.T) {
	p, err := ParseParameters([]byte(`{"model_type":"logistic_regression","model_uri":"https://example.org/m/1",
		"model_name":"survival","zeta":0.1,"alpha":0.2,"mid":0.3,"intercept":-1}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := New(p)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got := m.InputParameters()
	want := []string{"zeta", "alpha", "mid"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("want fitting order %v, got %v", want, got)
	}
	md := m.Metadata()
	if md.ModelURI != "https://example.org/m/1" || md.ModelName != "survival" {
		t.Fatalf("metadata mismatch: %+v", md)
	}
	if len(md.InputFields) != 3 || md.InputFields[0].Type != "number" {
		t.Fatalf("input fields mismatch: %+v", md.InputFields)
	}

	got[0] = "mutated"
	if m.InputParameters()[0] != "zeta" {
		t.Fatal("InputParameters must return a copy")
	}
}

func TestParseParameters_Errors(t *testing.T) {
	cases := map[string]string{
		"invalid json":       `{"model_type":`,
		"not an object":      `[1,2]`,
		"missing model_type": `{"x1":1,"intercept":0}`,
		"missing intercept":  `{"model_type":"logistic_regression","x1":1}`,
		"string weight":      `{"model_type":"logistic_regression","x1":"1","intercept":0}`,
		"string intercept":   `{"model_type":"logistic_regression","x1":1,"intercept":"0"}`,
		"duplicate feature":  `{"model_type":"logistic_regression","x1":1,"x1":2,"intercept":0}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseParameters([]byte(doc)); !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("want ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestNew_RejectsUnknownFamily(t *testing.T) {
	_, err := New(model.ModelParameters{ModelType: "random_forest"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("want ErrConfiguration, got %v", err)
	}
}

func TestSigmoid_Extremes(t *testing.T) {
	if v := Sigmoid(-1000); v != 0 || math.IsNaN(v) {
		t.Errorf("want 0 for very negative scores, got %v", v)
	}
	if v := Sigmoid(1000); v != 1 {
		t.Errorf("want 1 for very positive scores, got %v", v)
	}
	if v := Sigmoid(0); v != 0.5 {
		t.Errorf("want 0.5 at zero, got %v", v)
	}
}
