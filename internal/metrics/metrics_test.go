package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservePerco(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObservePerco("update_bio", nil, 10*time.Millisecond)
	m.ObservePerco("update_bio", errors.New("boom"), time.Millisecond)
	m.ObservePerco("update_bio", nil, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.percoRequests.WithLabelValues("update_bio", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.percoRequests.WithLabelValues("update_bio", "error")))
}

func TestSetTokenExpiry(t *testing.T) {
	m := New(prometheus.NewRegistry())

	exp := time.Unix(1_900_000_000, 0)
	m.SetTokenExpiry(exp)
	assert.Equal(t, float64(exp.Unix()), testutil.ToFloat64(m.tokenExpiry))

	m.SetTokenExpiry(time.Time{})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.tokenExpiry))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObservePerco("devices", nil, time.Second)
	m.ObserveLookup("found")
	m.ObserveHTTP("/x", "GET", 200, time.Second)
	m.SetTokenExpiry(time.Now())
}
