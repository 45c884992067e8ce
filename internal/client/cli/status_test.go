package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientsync "github.com/iudanet/fitsync/internal/client/sync"
	"github.com/iudanet/fitsync/internal/health"
)

func TestCli_runStatus(t *testing.T) {
	tests := []struct {
		name   string
		status clientsync.Status
		remote health.Checker
		want   []string
	}{
		{
			name:   "never synced",
			status: clientsync.Status{State: clientsync.StatusIdle},
			want:   []string{"State:        idle", "Last success: never", "All local changes are synchronized"},
		},
		{
			name: "pending and error",
			status: clientsync.Status{
				State:         clientsync.StatusError,
				LastError:     "bad gateway",
				Pending:       4,
				LastSuccessAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			},
			want: []string{"State:        error", "Last error:   bad gateway", "Pending sync: 4 change(s)", "2024-03-15T10:00:00"},
		},
		{
			name:   "server unreachable",
			status: clientsync.Status{State: clientsync.StatusIdle},
			remote: health.CheckerFunc(func(ctx context.Context) health.Status {
				return health.Status{Configured: true, Error: "timeout after 5s"}
			}),
			want: []string{"Server:       unreachable (timeout after 5s)"},
		},
		{
			name:   "not configured",
			status: clientsync.Status{State: clientsync.StatusIdle},
			remote: health.CheckerFunc(func(ctx context.Context) health.Status {
				return health.Status{}
			}),
			want: []string{"Server:       not configured"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockIO, out := newTestIO()
			syncer := &SyncerMock{
				StatusFunc: func(ctx context.Context) clientsync.Status { return tt.status },
			}

			c := New(mockIO, nil, syncer, nil, tt.remote)
			require.NoError(t, c.runStatus(context.Background()))

			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
			assert.Len(t, syncer.StatusCalls(), 1)
		})
	}
}
