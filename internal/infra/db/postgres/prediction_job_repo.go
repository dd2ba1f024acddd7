package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
	"fair-model-service/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.PredictionJobRepository = (*predictionJobRepo)(nil)

type predictionJobRepo struct {
	pool *pgxpool.Pool
}

func NewPredictionJobRepo(pool *pgxpool.Pool) *predictionJobRepo {
	return &predictionJobRepo{pool: pool}
}

func (r *predictionJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.PredictionJob) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}
	input, err := json.Marshal(job.Input)
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}
	var result []byte
	if job.Result != nil {
		if result, err = json.Marshal(job.Result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}

	const q = `
INSERT INTO prediction_jobs (id, status, model_name, input, result, last_error, submitted_at, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  result = EXCLUDED.result,
  last_error = EXCLUDED.last_error,
  started_at = EXCLUDED.started_at,
  finished_at = EXCLUDED.finished_at;`

	_, err = execSQL(ctx, r.pool, tx, q,
		job.ID, int(job.Status), job.ModelName, input, result, job.LastError,
		job.SubmittedAt, nullTime(job.StartedAt), nullTime(job.FinishedAt))
	return err
}

func (r *predictionJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PredictionJob, error) {
	const q = `
SELECT id, status, model_name, input, result, last_error, submitted_at, started_at, finished_at
FROM prediction_jobs WHERE id = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var (
		job               model.PredictionJob
		status            int
		input, result     []byte
		started, finished *time.Time
	)
	if err := row.Scan(&job.ID, &status, &job.ModelName, &input, &result, &job.LastError,
		&job.SubmittedAt, &started, &finished); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan prediction job: %w", err)
	}
	job.Status = model.Status(status)
	if err := json.Unmarshal(input, &job.Input); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if len(result) > 0 {
		var p model.Prediction
		if err := json.Unmarshal(result, &p); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		// a single-record job stores a bare number; a batch stores an array
		p.Batch = job.Input.Batch
		job.Result = &p
	}
	if started != nil {
		job.StartedAt = *started
	}
	if finished != nil {
		job.FinishedAt = *finished
	}
	return &job, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
