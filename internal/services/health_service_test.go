package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tabclean/internal/shared/testutil"
)

type mockClientCounter struct {
	mock.Mock
}

func (m *mockClientCounter) ClientCount() int {
	return m.Called().Int(0)
}

func TestHealthServiceReadiness(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	ws := newWorkspaceFixture(t).ws

	tests := []struct {
		name      string
		clients   ClientCounter
		outputDir string
		want      string
	}{
		{"all ready", newCounter(2), t.TempDir(), "ready"},
		{"no output dir configured", newCounter(0), "", "ready"},
		{"missing output dir", newCounter(0), filepath.Join(t.TempDir(), "gone"), "not_ready"},
		{"no hub", nil, "", "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService(BuildInfo{Version: "1.2.3"}, ws, tt.clients, tt.outputDir, logger)
			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, "1.2.3", status.Version)
			assert.Contains(t, status.Services, "workspace")
		})
	}
}

func TestHealthServiceStats(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	f := newWorkspaceFixture(t)
	counter := newCounter(3)
	hs := NewHealthService(BuildInfo{Version: "dev", BuildID: "abc"}, f.ws, counter, "", logger)

	stats := hs.SystemStats(context.Background())
	assert.Equal(t, 3, stats.WebSocketClients)
	assert.False(t, stats.Loaded)

	f.load(t)
	stats = hs.SystemStats(context.Background())
	assert.True(t, stats.Loaded)
	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 11, stats.Columns)

	info := hs.Version()
	assert.Equal(t, "dev", info["version"])
	assert.Equal(t, "abc", info["build_id"])
	assert.NotContains(t, info, "build_time")

	assert.Equal(t, "ok", hs.HealthCheck(context.Background()).Status)
	assert.Equal(t, "alive", hs.LivenessCheck(context.Background()).Status)
}

func newCounter(n int) *mockClientCounter {
	m := &mockClientCounter{}
	m.On("ClientCount").Return(n)
	return m
}
