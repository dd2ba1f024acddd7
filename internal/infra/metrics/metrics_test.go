//go:build !integration

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePrediction(t *testing.T) {
	before := testutil.ToFloat64(predictionsTotal.WithLabelValues("completed"))
	ObservePrediction(" Completed ", 10*time.Millisecond)
	if got := testutil.ToFloat64(predictionsTotal.WithLabelValues("completed")); got != before+1 {
		t.Fatalf("want %v, got %v", before+1, got)
	}
}

func TestSetJobStatus(t *testing.T) {
	SetJobStatus(3)
	if got := testutil.ToFloat64(jobStatus); got != 3 {
		t.Fatalf("want 3, got %v", got)
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}
