package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	hs := NewHealthService("1.0.0", "2024-03-01T00:00:00Z", newTestDashboard(t), nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestReadinessFollowsSnapshot(t *testing.T) {
	dashboard := newTestDashboard(t)
	hs := NewHealthService("1.0.0", "", dashboard, nil)
	ctx := context.Background()

	status := hs.ReadinessCheck(ctx)
	assert.Equal(t, "not_ready", status.Status)

	require.NoError(t, dashboard.Refresh(ctx))

	status = hs.ReadinessCheck(ctx)
	assert.Equal(t, "ready", status.Status)
	data, ok := status.Services["data"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "ready", data.Status)
}

func TestLivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.0.0", "2024-03-01T00:00:00Z", nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "go_version")

	version := hs.Version()
	assert.Equal(t, "1.0.0", version["version"])
	assert.Equal(t, "2024-03-01T00:00:00Z", version["build_time"])
}
