package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
	"fair-model-service/internal/domain/ports/adapter"
	"fair-model-service/internal/domain/ports/repository"
	uciface "fair-model-service/internal/domain/ports/usecase"
	"fair-model-service/internal/infra/logging"
	"fair-model-service/internal/infra/metrics"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

var _ uciface.InferenceService = (*InferenceUseCase)(nil)

// TaskRunner runs evaluations off the request path. *worker.Pool satisfies it.
type TaskRunner interface {
	Submit(task func(ctx context.Context) error) error
}

// JobSink receives a copy of every job that reaches a terminal state.
type JobSink interface {
	Name() string
	Publish(ctx context.Context, job model.PredictionJob) error
}

// TransitionHook observes every status change. It runs under the job lock and
// must not call back into the use case.
type TransitionHook func(job model.PredictionJob)

type InferenceOption func(*InferenceUseCase)

// WithTimeout caps model evaluation; zero means no cap.
func WithTimeout(d time.Duration) InferenceOption {
	return func(uc *InferenceUseCase) { uc.timeout = d }
}

func WithSinks(sinks ...JobSink) InferenceOption {
	return func(uc *InferenceUseCase) {
		for _, s := range sinks {
			if s != nil {
				uc.sinks = append(uc.sinks, s)
			}
		}
	}
}

func WithTransitionHook(h TransitionHook) InferenceOption {
	return func(uc *InferenceUseCase) {
		if h != nil {
			uc.hooks = append(uc.hooks, h)
		}
	}
}

func WithClock(now func() time.Time) InferenceOption {
	return func(uc *InferenceUseCase) { uc.now = now }
}

// InferenceUseCase owns the single prediction job of a service instance.
//
// Policy for a predict request that arrives while a job is Requested or
// InProgress: reject with domain.ErrBusy and leave the running job untouched.
//
// A job the runner refuses to accept moves from Requested to InProgress and
// then to Failed, so Failed is only ever entered from InProgress.
type InferenceUseCase struct {
	handle    adapter.ModelHandle
	modelName string
	runner    TaskRunner
	log     *zerolog.Logger
	timeout time.Duration
	sinks   []JobSink
	hooks   []TransitionHook
	now     func() time.Time

	mu  sync.RWMutex
	job model.PredictionJob
}

// NewInferenceUseCase wires a resolved model to a runner. A nil runner starts a
// goroutine per job.
func NewInferenceUseCase(handle adapter.ModelHandle, runner TaskRunner, logger *zerolog.Logger, opts ...InferenceOption) *InferenceUseCase {
	if logger == nil {
		logger = logging.Nop()
	}
	l := logger.With().Str("component", "InferenceUC").Logger()
	uc := &InferenceUseCase{
		handle:    handle,
		modelName: modelName(handle),
		runner:    runner,
		log:       &l,
		now:       time.Now,
		job:       model.PredictionJob{Status: model.StatusIdle},
	}
	if uc.runner == nil {
		uc.runner = goRunner{}
	}
	for _, o := range opts {
		o(uc)
	}
	metrics.SetJobStatus(int(model.StatusIdle))
	return uc
}

// Submit admits a new job and hands it to the runner. It returns as soon as the
// job is Requested; poll Status and Result for the outcome.
func (uc *InferenceUseCase) Submit(ctx context.Context, in model.Payload) (string, error) {
	if err := in.Validate(); err != nil {
		metrics.IncPredictRejected("invalid")
		return "", err
	}

	job, running, err := uc.admit(in)
	if err != nil {
		metrics.IncPredictRejected("busy")
		logging.With(ctx, uc.log).Debug().Str("running_job", running).Msg("predict rejected: busy")
		return "", err
	}

	l := logging.With(logging.WithJobID(ctx, job.ID), uc.log)
	l.Info().Int("records", in.Len()).Bool("batch", in.Batch).Msg("prediction requested")

	if err := uc.runner.Submit(func(ctx context.Context) error {
		uc.execute(ctx, job.ID)
		return nil
	}); err != nil {
		metrics.IncPredictRejected("queue")
		err = fmt.Errorf("schedule evaluation: %w", err)
		if _, ok := uc.start(job.ID); ok {
			uc.finish(job.ID, model.Prediction{}, err)
		}
		return job.ID, err
	}
	return job.ID, nil
}

// admit replaces an idle or finished job with a new Requested one. It returns
// the running job's ID and domain.ErrBusy when the slot is taken.
func (uc *InferenceUseCase) admit(in model.Payload) (model.PredictionJob, string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.job.Status.Active() {
		return model.PredictionJob{}, uc.job.ID, domain.ErrBusy
	}
	uc.job = model.PredictionJob{
		ID:          ulid.Make().String(),
		Status:      model.StatusRequested,
		Input:       in,
		ModelName:   uc.modelName,
		SubmittedAt: uc.now(),
	}
	uc.notify()
	return uc.job.Clone(), "", nil
}

// start moves job id from Requested to InProgress.
func (uc *InferenceUseCase) start(id string) (model.Payload, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.job.ID != id || uc.job.Status != model.StatusRequested {
		return model.Payload{}, false
	}
	uc.job.Status = model.StatusInProgress
	uc.job.StartedAt = uc.now()
	uc.notify()
	return uc.job.Input, true
}

func (uc *InferenceUseCase) execute(ctx context.Context, id string) {
	in, ok := uc.start(id)
	if !ok {
		return
	}

	ctx = logging.WithJobID(ctx, id)
	defer logging.TraceDuration(logging.With(ctx, uc.log), "InferenceUC.execute")()

	res, err := uc.evaluate(ctx, in)
	if err == nil && len(res.Values) != in.Len() {
		err = fmt.Errorf("%w: model returned %d values for %d records", domain.ErrEvaluation, len(res.Values), in.Len())
	}
	uc.finish(id, res, err)
}

// evaluate runs the model on its own goroutine so a timeout or shutdown can
// fail the job even when the model ignores its context.
func (uc *InferenceUseCase) evaluate(ctx context.Context, in model.Payload) (model.Prediction, error) {
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	type outcome struct {
		res model.Prediction
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("%w: model panic: %v", domain.ErrEvaluation, rec)}
			}
		}()
		res, err := uc.handle.Predict(ctx, in)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		return o.res, uc.classify(o.err)
	case <-ctx.Done():
		return model.Prediction{}, uc.classify(ctx.Err())
	}
}

func (uc *InferenceUseCase) classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrEvaluation):
		return err
	case errors.Is(err, context.DeadlineExceeded) && uc.timeout > 0:
		return fmt.Errorf("%w after %s", domain.ErrTimeout, uc.timeout)
	default:
		return fmt.Errorf("%w: %v", domain.ErrEvaluation, err)
	}
}

// finish moves the job to its terminal state. Writes for a superseded or already
// finished job are dropped.
func (uc *InferenceUseCase) finish(id string, res model.Prediction, err error) {
	snapshot, ok := uc.complete(id, res, err)
	if !ok {
		uc.log.Warn().Str("job_id", id).Msg("dropping result of superseded job")
		return
	}

	metrics.ObservePrediction(snapshot.Status.String(), snapshot.Duration())
	ev := uc.log.Info()
	if err != nil {
		ev = uc.log.Error().Err(err)
	}
	ev.Str("job_id", id).Str("status", snapshot.Status.String()).Dur("duration", snapshot.Duration()).Msg("prediction finished")

	uc.publish(snapshot)
}

// complete stores the outcome of an InProgress job and returns a copy of it.
func (uc *InferenceUseCase) complete(id string, res model.Prediction, err error) (model.PredictionJob, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.job.ID != id || uc.job.Status != model.StatusInProgress {
		return model.PredictionJob{}, false
	}
	uc.job.FinishedAt = uc.now()
	if err != nil {
		uc.job.Status = model.StatusFailed
		uc.job.LastError = err.Error()
		uc.job.Result = nil
	} else {
		r := model.Prediction{Values: append([]float64(nil), res.Values...), Batch: res.Batch}
		uc.job.Status = model.StatusCompleted
		uc.job.Result = &r
	}
	uc.notify()
	return uc.job.Clone(), true
}

func (uc *InferenceUseCase) publish(job model.PredictionJob) {
	if len(uc.sinks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, s := range uc.sinks {
		if err := s.Publish(ctx, job); err != nil {
			metrics.IncSinkError(s.Name())
			uc.log.Error().Err(err).Str("sink", s.Name()).Str("job_id", job.ID).Msg("publish job failed")
		}
	}
}

// caller holds uc.mu
func (uc *InferenceUseCase) notify() {
	metrics.SetJobStatus(int(uc.job.Status))
	if len(uc.hooks) == 0 {
		return
	}
	snap := uc.job.Clone()
	for _, h := range uc.hooks {
		uc.runHook(h, snap)
	}
}

// runHook keeps a panicking hook from unwinding through a state transition.
func (uc *InferenceUseCase) runHook(h TransitionHook, job model.PredictionJob) {
	defer func() {
		if rec := recover(); rec != nil {
			uc.log.Error().Interface("panic", rec).Str("job_id", job.ID).Msg("transition hook panicked")
		}
	}()
	h(job)
}

// Status is a pure read of the current job state.
func (uc *InferenceUseCase) Status() uciface.StatusView {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	v := uciface.StatusView{Code: uc.job.Status, Message: uc.job.Status.Message()}
	if uc.job.Status == model.StatusFailed {
		v.Error = uc.job.LastError
	}
	return v
}

// Result returns the prediction only while the job is Completed.
func (uc *InferenceUseCase) Result() (model.Prediction, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.job.Status != model.StatusCompleted || uc.job.Result == nil {
		return model.Prediction{}, false
	}
	r := uc.job.Result
	return model.Prediction{Values: append([]float64(nil), r.Values...), Batch: r.Batch}, true
}

// Metadata is served from the resolved model and does not depend on job state.
func (uc *InferenceUseCase) Metadata() model.ModelMetadata { return uc.handle.Metadata() }

func (uc *InferenceUseCase) InputParameters() []string { return uc.handle.InputParameters() }

// Job returns a copy of the current job.
func (uc *InferenceUseCase) Job() model.PredictionJob {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.job.Clone()
}

// modelName reads the handle's name once so no model code runs under uc.mu.
func modelName(h adapter.ModelHandle) (name string) {
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()
	return h.Metadata().ModelName
}

type goRunner struct{}

func (goRunner) Submit(task func(ctx context.Context) error) error {
	go func() { _ = task(context.Background()) }()
	return nil
}

// RepositorySink stores finished jobs through a repository.
type RepositorySink struct {
	name string
	repo repository.PredictionJobRepository
}

func NewRepositorySink(name string, repo repository.PredictionJobRepository) *RepositorySink {
	return &RepositorySink{name: name, repo: repo}
}

func (s *RepositorySink) Name() string { return s.name }

func (s *RepositorySink) Publish(ctx context.Context, job model.PredictionJob) error {
	return s.repo.Save(ctx, repository.NoTX, &job)
}
