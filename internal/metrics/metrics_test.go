package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CountsAndExposes(t *testing.T) {
	r := NewRegistry()
	r.Renders.WithLabelValues(OutcomeOK).Inc()
	r.Renders.WithLabelValues(OutcomeOK).Inc()
	r.Renders.WithLabelValues(OutcomeInvalid).Inc()
	r.ChallansCreated.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Renders.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ChallansCreated))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `challan_renders_total{outcome="invalid"} 1`)
	assert.Contains(t, string(body), "challans_created_total 1")
}
