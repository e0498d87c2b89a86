package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Reps.WithLabelValues("Squats").Add(3)
	m.Sessions.WithLabelValues("completed").Inc()

	if got := testutil.ToFloat64(m.Reps.WithLabelValues("Squats")); got != 3 {
		t.Errorf("reps = %v, want 3", got)
	}
	if n := testutil.CollectAndCount(m.Sessions); n != 1 {
		t.Errorf("session series = %d, want 1", n)
	}
}

func TestNewRegistryCollectsRuntime(t *testing.T) {
	families, err := NewRegistry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) == 0 {
		t.Error("expected runtime metric families")
	}
}
