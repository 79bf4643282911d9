package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStep(t *testing.T) {
	o := &Observer{Model: "TEST"}
	o.ObserveStep(30, 3, true, false)
	o.ObserveStep(30, 8, false, false)
	o.ObserveStep(30, 0, true, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(stepsTotal.WithLabelValues("TEST", "converged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(stepsTotal.WithLabelValues("TEST", "nonconverged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(stepsTotal.WithLabelValues("TEST", "steady")))
	assert.Equal(t, 11.0, testutil.ToFloat64(trialsTotal.WithLabelValues("TEST")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `hydroroute_steps_total{model="TEST",result="steady"} 1`)
}
