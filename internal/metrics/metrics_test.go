package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "ok", CodeOf(nil))
	assert.Equal(t, "invalid_argument", CodeOf(connect.NewError(connect.CodeInvalidArgument, errors.New("bad"))))
	assert.Equal(t, "unknown", CodeOf(errors.New("plain")))
}

func TestSelectionSaved(t *testing.T) {
	m := New()
	m.SelectionSaved(true, false)
	m.SelectionSaved(true, true)
	m.SelectionSaved(false, true)
	m.SelectionSaved(false, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.selections.WithLabelValues("starter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.selections.WithLabelValues("both")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.selections.WithLabelValues("main")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SelectionSaved(true, true)
		m.SelectionsReset()
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.SelectionsReset()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "dinner_selection_resets_total 1"), body)
	assert.Contains(t, body, "go_goroutines")
}
