package health_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-presupuesto/internal/health"
)

func TestReadinessAfterShutdown(t *testing.T) {
	h := health.Handler{Probes: []health.Probe{health.PostgresProbe(stubPinger{}, 0)}}
	t.Cleanup(func() { health.SetReady(true) })

	code, _ := ready(t, h)
	require.Equal(t, http.StatusOK, code)

	health.SetReady(false)
	code, report := ready(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "shutting_down", report.Status)
}
