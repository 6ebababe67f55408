package otel

import (
	"context"
	"sync"
	"testing"

	goAccount "github.com/MrEthical07/goAccount"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	counters map[goAccount.MetricID]uint64
	latency  []uint64
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goAccount.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goAccount.MetricsSnapshot{
		Counters:   make(map[goAccount.MetricID]uint64, len(f.counters)),
		Histograms: map[goAccount.MetricID][]uint64{},
	}
	for k, v := range f.counters {
		out.Counters[k] = v
	}
	if f.latency != nil {
		out.Histograms[goAccount.MetricAuthenticateLatency] = append([]uint64(nil), f.latency...)
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				return data.DataPoints[0].Value
			case metricdata.Gauge[int64]:
				return data.DataPoints[0].Value
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return 0
}

func TestExporterCollectsCountersAndBuckets(t *testing.T) {
	reader, provider := newMeter()
	src := &fakeSource{
		counters: map[goAccount.MetricID]uint64{goAccount.MetricReissueSuccess: 3},
		latency:  []uint64{1, 1, 1, 1, 1, 1, 1, 1},
		dropped:  1,
	}

	exp, err := NewExporter(provider.Meter("goaccount-test"), src)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got := sumValue(t, rm, "goaccount_reissue_success_total"); got != 3 {
		t.Fatalf("expected 3 reissues, got %d", got)
	}
	if got := sumValue(t, rm, "goaccount_authenticate_latency_seconds_bucket_le_inf"); got != 8 {
		t.Fatalf("expected cumulative 8, got %d", got)
	}
	if got := sumValue(t, rm, "goaccount_audit_dropped_total"); got != 1 {
		t.Fatalf("expected 1 dropped, got %d", got)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newMeter()
	if _, err := NewExporter(provider.Meter("goaccount-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewExporter(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterConcurrentCollect(t *testing.T) {
	reader, provider := newMeter()
	src := &fakeSource{counters: map[goAccount.MetricID]uint64{goAccount.MetricLoginSuccess: 1}}

	exp, err := NewExporter(provider.Meter("goaccount-test"), src)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer exp.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.counters[goAccount.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
