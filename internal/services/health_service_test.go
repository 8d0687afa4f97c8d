package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/pkg/contracts"
)

func TestHealthService(t *testing.T) {
	f := newFixture(t, nil)
	hs := NewHealthService(f.svc, nil)
	ctx := context.Background()

	t.Run("health", func(t *testing.T) {
		status := hs.HealthCheck(ctx)
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, contracts.Version, status.Version)
		assert.False(t, status.Timestamp.IsZero())
	})

	t.Run("liveness", func(t *testing.T) {
		status := hs.LivenessCheck(ctx)
		assert.Equal(t, "alive", status.Status)
		require.NotNil(t, status.Runtime)
		assert.Contains(t, status.Runtime, "goroutines")
	})

	t.Run("readiness", func(t *testing.T) {
		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, "ready", status.Status)
		require.Contains(t, status.Services, "reports")
		assert.Equal(t, "ready", status.Services["reports"].(ServiceHealth).Status)
	})

	t.Run("version", func(t *testing.T) {
		info := hs.Version()
		assert.Equal(t, contracts.Version, info["version"])
		assert.Equal(t, contracts.ReportFormatVersion, info["report_format"])
		assert.NotContains(t, info, "build_time", "unset ldflags are omitted")
	})
}

func TestHealthServiceNotReadyWithoutReports(t *testing.T) {
	hs := NewHealthService(nil, nil)
	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
}
