package metrics

import (
	"errors"
	"testing"
	"time"
)

type fakeBackend struct {
	counters   map[string]float64
	histograms map[string][]float64
	lastLabels Labels
	flushed    int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		counters:   map[string]float64{},
		histograms: map[string][]float64{},
	}
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.counters[name] += delta
	f.lastLabels = labels
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.histograms[name] = append(f.histograms[name], value)
	f.lastLabels = labels
}

func (f *fakeBackend) Flush() error {
	f.flushed++
	return nil
}

func withFake(t *testing.T) *fakeBackend {
	t.Helper()
	fb := newFakeBackend()
	SetBackend(fb)
	t.Cleanup(func() { SetBackend(nopBackend{}) })
	return fb
}

func TestRecordStepSuccess(t *testing.T) {
	fb := withFake(t)

	RecordStep("yields", "aggregate", nil, 250*time.Millisecond)

	if got := fb.counters["cropyield_step_total"]; got != 1 {
		t.Fatalf("step counter=%v; want 1", got)
	}
	if got := fb.histograms["cropyield_step_duration_seconds"]; len(got) != 1 || got[0] != 0.25 {
		t.Fatalf("duration=%v; want [0.25]", got)
	}
	if fb.lastLabels["status"] != "success" || fb.lastLabels["step"] != "aggregate" {
		t.Fatalf("labels=%v", fb.lastLabels)
	}
}

func TestRecordStepFailure(t *testing.T) {
	fb := withFake(t)

	RecordStep("yields", "render", errors.New("boom"), time.Second)

	if fb.lastLabels["status"] != "failure" {
		t.Fatalf("labels=%v; want failure status", fb.lastLabels)
	}
}

func TestRecordRows(t *testing.T) {
	fb := withFake(t)

	RecordRows("yields", "parsed", 100)
	RecordRows("yields", "parsed", 20)
	RecordRows("yields", "skipped", 0)  // no-op
	RecordRows("yields", "skipped", -5) // no-op

	if got := fb.counters["cropyield_rows_total"]; got != 120 {
		t.Fatalf("rows counter=%v; want 120", got)
	}
	if fb.lastLabels["kind"] != "parsed" {
		t.Fatalf("labels=%v", fb.lastLabels)
	}
}

func TestSetBackendNilKeepsCurrent(t *testing.T) {
	fb := withFake(t)
	SetBackend(nil)
	RecordRows("yields", "decoded", 1)
	if got := fb.counters["cropyield_rows_total"]; got != 1 {
		t.Fatalf("nil SetBackend replaced the backend")
	}
}

func TestFlushDelegates(t *testing.T) {
	fb := withFake(t)
	if err := Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if fb.flushed != 1 {
		t.Fatalf("flushed=%d; want 1", fb.flushed)
	}
}
