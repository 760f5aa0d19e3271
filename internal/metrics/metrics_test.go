package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Transition("claim")
	m.QuotaRejected("open requests")
	m.Expired(3)
	m.ObserveRPC("/x", "ok", time.Millisecond)
}

func TestCounters(t *testing.T) {
	m := New()

	m.Transition("claim")
	m.Transition("claim")
	m.Transition("fulfill")
	m.QuotaRejected("groups created")
	m.Expired(2)
	m.ObserveRPC("/mutualaid.v1.RequestService/ClaimRequest", "ok", 5*time.Millisecond)

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("claim")); got != 2 {
		t.Errorf("claim transitions: expected 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.quotaRejections.WithLabelValues("groups created")); got != 1 {
		t.Errorf("quota rejections: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.expired); got != 2 {
		t.Errorf("expired: expected 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("/mutualaid.v1.RequestService/ClaimRequest", "ok")); got != 1 {
		t.Errorf("rpc requests: expected 1, got %v", got)
	}
}
