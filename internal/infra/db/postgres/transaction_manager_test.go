//go:build !integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
)

func TestGetExecutor(t *testing.T) {
	if _, err := getExecutor(nil, nil); !errors.Is(err, errNoExecutor) {
		t.Fatalf("want errNoExecutor, got %v", err)
	}
	if _, err := getExecutor(nil, "not a tx"); !errors.Is(err, errExecContext) {
		t.Fatalf("want errExecContext, got %v", err)
	}
}

func TestSaveRequiresID(t *testing.T) {
	repo := NewPredictionJobRepo(nil)
	if err := repo.Save(context.Background(), nil, &model.PredictionJob{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestNullTime(t *testing.T) {
	var zero model.PredictionJob
	if nullTime(zero.StartedAt) != nil {
		t.Fatal("zero time should map to NULL")
	}
}
