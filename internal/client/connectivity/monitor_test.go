package connectivity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fitsync/internal/client/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMonitor_IsSyncConfigured(t *testing.T) {
	pinger := &PingerMock{PingFunc: func(context.Context) error { return nil }}

	tests := []struct {
		pinger   Pinger
		name     string
		endpoint string
		token    string
		want     bool
	}{
		{name: "configured", pinger: pinger, endpoint: "http://sync", token: "t", want: true},
		{name: "no endpoint", pinger: pinger, token: "t", want: false},
		{name: "no token", pinger: pinger, endpoint: "http://sync", want: false},
		{name: "no client", endpoint: "http://sync", token: "t", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor(tt.pinger, tt.endpoint, tt.token, 0, testLogger())
			assert.Equal(t, tt.want, m.IsSyncConfigured())
		})
	}
}

func TestMonitor_Probe_NotConfigured(t *testing.T) {
	pinger := &PingerMock{PingFunc: func(context.Context) error { return nil }}
	m := NewMonitor(pinger, "", "", 0, testLogger())

	result := m.Probe(context.Background())

	assert.False(t, result.Connected)
	assert.Equal(t, "sync is not configured", result.Error)
	assert.Empty(t, pinger.PingCalls(), "unconfigured monitor must not touch the network")
}

func TestMonitor_Probe(t *testing.T) {
	tests := []struct {
		pingErr       error
		name          string
		wantError     string
		wantConnected bool
	}{
		{
			name:          "reachable",
			wantConnected: true,
		},
		{
			name:      "unauthorized",
			pingErr:   fmt.Errorf("ping failed: %w", fmt.Errorf("%w: token expired", api.ErrUnauthorized)),
			wantError: "authentication failed",
		},
		{
			name:      "transport",
			pingErr:   &api.TransportError{Op: "GET /api/v1/ping", Err: errors.New("connection refused")},
			wantError: "remote store unreachable",
		},
		{
			name:      "server error",
			pingErr:   &api.TransportError{Op: "GET /api/v1/ping", StatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")},
			wantError: "remote store unreachable",
		},
		{
			name:      "timeout",
			pingErr:   &api.TransportError{Op: "GET /api/v1/ping", Err: context.DeadlineExceeded},
			wantError: "timeout after 5s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger := &PingerMock{PingFunc: func(context.Context) error { return tt.pingErr }}
			m := NewMonitor(pinger, "http://sync", "token", 0, testLogger())

			result := m.Probe(context.Background())

			assert.Equal(t, tt.wantConnected, result.Connected)
			if tt.wantError == "" {
				assert.Empty(t, result.Error)
			} else {
				assert.Contains(t, result.Error, tt.wantError)
			}
			require.Len(t, pinger.PingCalls(), 1)
		})
	}
}

func TestMonitor_Probe_BoundedByTimeout(t *testing.T) {
	pinger := &PingerMock{PingFunc: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	m := NewMonitor(pinger, "http://sync", "token", 20*time.Millisecond, testLogger())

	start := time.Now()
	result := m.Probe(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, result.Connected)
	assert.Equal(t, "timeout after 20ms", result.Error)
}

func TestMonitor_Status(t *testing.T) {
	pinger := &PingerMock{PingFunc: func(context.Context) error { return nil }}
	m := NewMonitor(pinger, "http://sync", "token", 0, testLogger())

	status := m.Status(context.Background())

	assert.True(t, status.Configured)
	assert.True(t, status.Connected)
	assert.Empty(t, status.Error)
}
