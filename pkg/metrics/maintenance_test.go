package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMaintenanceRecordsRunsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMaintenance(reg)

	m.ObserveRun("purge-expired", 20*time.Millisecond, nil)
	m.ObserveRun("purge-expired", 10*time.Millisecond, errors.New("db down"))
	m.AddPurged(7)
	m.AddPurged(-1)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for _, result := range []string{"success", "failure"} {
		got, err := fetchCounterValue(mfs, "farmfresh_maintenance_job_runs_total", "result", result)
		if err != nil {
			t.Fatalf("fetch %s: %v", result, err)
		}
		if got != 1 {
			t.Fatalf("expected one %s run, got %v", result, got)
		}
	}

	mf := findMetricFamily(mfs, "farmfresh_storage_entries_purged_total")
	if mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 7 {
		t.Fatalf("expected purged total 7")
	}
}

func TestNilMaintenanceIsNoop(t *testing.T) {
	var m *Maintenance
	m.ObserveRun("x", time.Second, nil)
	m.AddPurged(1)
	NewMaintenance(nil).AddPurged(1)
}
