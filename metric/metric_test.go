package metric

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordConversion(true, 3, time.Millisecond)
		m.RecordStatement("entity")
		m.RecordDiagnostic("malformed-attribute")
		m.RecordEvaluation("hasName", 1, nil, time.Millisecond)
	})
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.RecordConversion(true, 3, time.Millisecond)
	m.RecordConversion(false, 0, time.Millisecond)
	m.RecordStatement("entity")
	m.RecordStatement("entity")
	m.RecordEvaluation("hasName", 2, nil, time.Millisecond)
	m.RecordEvaluation("broken", 0, errors.New("syntax"), time.Millisecond)
	m.RecordEvaluation("ok", 0, nil, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conversions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conversions.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Quads))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Statements.WithLabelValues("entity")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Violations.WithLabelValues("hasName")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("violated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("pass")))
}

func TestMetrics_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))
	require.NoError(t, m.Register(reg))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))
	m.RecordStatement("namespace")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "semweave_convert_statements_total"))
}
