package model

import (
	"encoding/json"
	"time"
)

// Prediction is a model output: one probability, or one per batch record in input order.
type Prediction struct {
	Values []float64
	Batch  bool
}

func (p Prediction) MarshalJSON() ([]byte, error) {
	if !p.Batch && len(p.Values) == 1 {
		return json.Marshal(p.Values[0])
	}
	if p.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Values)
}

func (p *Prediction) UnmarshalJSON(data []byte) error {
	var single float64
	if err := json.Unmarshal(data, &single); err == nil {
		*p = Prediction{Values: []float64{single}}
		return nil
	}
	var many []float64
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*p = Prediction{Values: many, Batch: true}
	return nil
}

// PredictionJob is the single live job tracked by the inference service.
type PredictionJob struct {
	ID          string      `json:"id"`
	Status      Status      `json:"status"`
	Input       Payload     `json:"input"`
	Result      *Prediction `json:"result,omitempty"`
	LastError   string      `json:"error,omitempty"`
	ModelName   string      `json:"model_name"`
	SubmittedAt time.Time   `json:"submitted_at"`
	StartedAt   time.Time   `json:"started_at,omitempty"`
	FinishedAt  time.Time   `json:"finished_at,omitempty"`
}

// Clone returns a copy that shares no mutable state with j.
func (j PredictionJob) Clone() PredictionJob {
	cp := j
	if j.Result != nil {
		r := Prediction{Values: append([]float64(nil), j.Result.Values...), Batch: j.Result.Batch}
		cp.Result = &r
	}
	if j.Input.Records != nil {
		cp.Input.Records = append([]map[string]any(nil), j.Input.Records...)
	}
	return cp
}

// Duration is the evaluation time of a finished job.
func (j PredictionJob) Duration() time.Duration {
	if j.StartedAt.IsZero() || j.FinishedAt.IsZero() {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}
