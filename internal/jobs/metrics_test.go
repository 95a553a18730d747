package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	metrics:
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("partytb:export").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("partytb:export").End(boom), boom)

	require.Equal(t, 1.0, counterValue(t, reg, "partytb_jobs_total", map[string]string{"job": "partytb:export", "status": "success"}))
	require.Equal(t, 1.0, counterValue(t, reg, "partytb_jobs_total", map[string]string{"job": "partytb:export", "status": "failure"}))
	require.Equal(t, 1.0, counterValue(t, reg, "partytb_jobs_failures_total", map[string]string{"job": "partytb:export"}))
}

func TestAddExportedRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.AddExportedRows("csv", 4)
	m.AddExportedRows("csv", 0)
	require.Equal(t, 4.0, counterValue(t, reg, "partytb_exported_rows_total", map[string]string{"format": "csv"}))
}

func TestNilMetricsTrackerPassesErrorThrough(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("x").End(boom), boom)
	m.AddExportedRows("csv", 1)
}
