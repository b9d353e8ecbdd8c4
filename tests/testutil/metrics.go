package testutil

import (
	"context"
	"testing"

	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// MetricsReader collects what a test MeterProvider has recorded
type MetricsReader struct {
	Provider *telemetry.MeterProvider
	reader   *sdkmetric.ManualReader
}

// NewBusinessMetrics returns business metrics backed by a manual reader
func NewBusinessMetrics(t *testing.T) (*telemetry.BusinessMetrics, *MetricsReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, nil)
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})

	bm, err := telemetry.NewBusinessMetrics(mp.Meter("retail.business"))
	require.NoError(t, err)
	return bm, &MetricsReader{Provider: mp, reader: reader}
}

// CounterValue sums the points of an int64 counter whose attributes contain
// every kv. A metric never recorded reads as zero.
func (r *MetricsReader) CounterValue(t *testing.T, name string, kvs ...attribute.KeyValue) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, r.reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if matches(dp.Attributes, kvs) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func matches(set attribute.Set, kvs []attribute.KeyValue) bool {
	for _, kv := range kvs {
		v, ok := set.Value(kv.Key)
		if !ok || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}
