package stepauth

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsIncAndValue(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricAuthSuccess)
	m.Inc(MetricAuthSuccess)
	m.Inc(MetricRefreshReplayDetected)

	if got := m.Value(MetricAuthSuccess); got != 2 {
		t.Fatalf("auth success = %d, want 2", got)
	}
	if got := m.Value(MetricRefreshReplayDetected); got != 1 {
		t.Fatalf("replay detected = %d, want 1", got)
	}
	if got := m.Value(MetricAuthFailure); got != 0 {
		t.Fatalf("auth failure = %d, want 0", got)
	}
}

func TestMetricsDisabledRecordsNothing(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricAuthSuccess)
	m.Observe(MetricVerifyLatency, time.Millisecond)

	if got := m.Value(MetricAuthSuccess); got != 0 {
		t.Fatalf("disabled collector recorded %d", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatal("disabled collector produced a non-empty snapshot")
	}
}

func TestMetricsNilIsInert(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLogout)
	m.Observe(MetricVerifyLatency, time.Second)
	if m.Enabled() {
		t.Fatal("nil collector reports enabled")
	}
	if m.Value(MetricLogout) != 0 {
		t.Fatal("nil collector holds a value")
	}
}

func TestMetricsLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Observe(MetricVerifyLatency, 2*time.Millisecond)
	m.Observe(MetricVerifyLatency, 4*time.Millisecond)
	m.Observe(MetricVerifyLatency, 8*time.Millisecond)
	m.Observe(MetricVerifyLatency, 200*time.Millisecond)
	m.Observe(MetricVerifyLatency, 2*time.Second)

	buckets := m.Snapshot().Histograms[MetricVerifyLatency]
	want := []uint64{2, 1, 0, 0, 0, 1, 0, 1}
	for i := range want {
		if buckets[i] != want[i] {
			t.Fatalf("bucket[%d] = %d, want %d (all: %v)", i, buckets[i], want[i], buckets)
		}
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricTokenVerifySuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricTokenVerifySuccess); got != workers*perWorker {
		t.Fatalf("counter = %d, want %d", got, workers*perWorker)
	}
}

func TestMetricsSnapshotIsCopy(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLogoutAll)

	snap := m.Snapshot()
	m.Inc(MetricLogoutAll)

	if snap.Counters[MetricLogoutAll] != 1 {
		t.Fatalf("snapshot value = %d, want 1", snap.Counters[MetricLogoutAll])
	}
	if m.Value(MetricLogoutAll) != 2 {
		t.Fatalf("live value = %d, want 2", m.Value(MetricLogoutAll))
	}
}
