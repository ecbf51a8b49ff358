package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hpungsan/minutes/internal/notes"
)

func TestDefault_Singleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() returned different instances")
	}
}

func TestObserveClassification(t *testing.T) {
	m := Default()

	beforeTotal := testutil.ToFloat64(m.ClassificationsTotal)
	beforeActions := testutil.ToFloat64(m.LinesTotal.WithLabelValues("actions"))
	beforeDropped := testutil.ToFloat64(m.LinesTotal.WithLabelValues("dropped"))

	text := "Decision: go\nbob: send it\nsmall talk"
	r := notes.Classify(text)
	m.ObserveClassification(len(notes.SplitLines(text)), notes.ComputeStats(r))

	if got := testutil.ToFloat64(m.ClassificationsTotal) - beforeTotal; got != 1 {
		t.Errorf("classifications delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LinesTotal.WithLabelValues("actions")) - beforeActions; got != 1 {
		t.Errorf("actions delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LinesTotal.WithLabelValues("dropped")) - beforeDropped; got != 1 {
		t.Errorf("dropped delta = %v, want 1", got)
	}
}

func TestObserveRequest(t *testing.T) {
	m := Default()
	before := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/digests", "200"))
	m.ObserveRequest("/digests", 200)
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/digests", "200")) - before; got != 1 {
		t.Errorf("requests delta = %v, want 1", got)
	}
}
