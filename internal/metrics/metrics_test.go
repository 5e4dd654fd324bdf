package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ExpenseRecorded(false)
	m.ExpenseRecorded(false)
	m.ExpenseRecorded(true)
	m.ReconcileFinished(nil, 3)
	// A failed run still counts the balances it corrected for other owners
	m.ReconcileFinished(errors.New("db down"), 2)
	m.PublishFailed()
	m.ObserveRPC("/splitty.v1.LedgerService/SettleUp", "ok", 0.02)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"expenses", testutil.ToFloat64(m.ExpensesRecorded), 2},
		{"settlements", testutil.ToFloat64(m.SettlementsTotal), 1},
		{"reconcile ok", testutil.ToFloat64(m.ReconcileRuns.WithLabelValues("ok")), 1},
		{"reconcile error", testutil.ToFloat64(m.ReconcileRuns.WithLabelValues("error")), 1},
		{"drifts", testutil.ToFloat64(m.BalanceDrifts), 5},
		{"publish failures", testutil.ToFloat64(m.EventPublishFails), 1},
		{"rpc requests", testutil.ToFloat64(m.RPCRequests.WithLabelValues("/splitty.v1.LedgerService/SettleUp", "ok")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(m.RPCDuration); n != 1 {
		t.Errorf("RPCDuration series = %d, want 1", n)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ExpenseRecorded(true)
	m.ReconcileFinished(nil, 1)
	m.PublishFailed()
	m.ObserveRPC("p", "ok", 1)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ExpenseRecorded(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "splitty_expenses_recorded_total 1") {
		t.Errorf("exposition missing expense counter:\n%s", body)
	}
}
