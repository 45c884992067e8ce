package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientsync "github.com/iudanet/fitsync/internal/client/sync"
	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/schema"
)

func TestCli_runSync(t *testing.T) {
	tests := []struct {
		name    string
		res     *clientsync.PassResult
		err     error
		want    []string
		wantErr string
	}{
		{
			name: "success",
			res:  &clientsync.PassResult{Pushed: 3, Pulled: 2, Applied: 1, Repushed: 1, Flagged: 1, Orphaned: 2},
			want: []string{
				"Synchronization completed successfully",
				"Pushed to server:   3",
				"Pulled from server: 2",
				"Applied locally:    1",
				"Queued for resend:  1",
				"Need review:        1",
				"Orphaned logs:      2",
			},
		},
		{
			name: "rejections and skipped",
			res: &clientsync.PassResult{
				Rejected: []clientsync.ConstraintRejection{{
					EntityType: models.EntitySocialProfile,
					EntityID:   "p1",
					Reason:     "constraint",
					Detail:     "handle taken",
				}},
				Skipped: []error{&schema.SchemaMismatchError{EntityType: models.EntityWorkoutLog, EntityID: "w1", Field: "sets"}},
			},
			want: []string{"Rejected by server (1)", "handle taken", "Skipped (1)", "w1"},
		},
		{
			name: "not configured",
			res:  &clientsync.PassResult{NotConfigured: true},
			want: []string{"Sync is not configured"},
		},
		{
			name: "offline",
			res:  &clientsync.PassResult{Disconnected: true, ProbeError: "timeout after 5s"},
			want: []string{"Server is unreachable: timeout after 5s", "Local changes are kept"},
		},
		{
			name: "already running",
			err:  clientsync.ErrPassInFlight,
			want: []string{"already running"},
		},
		{
			name:    "failure",
			res:     &clientsync.PassResult{},
			err:     errBoom,
			wantErr: "synchronization failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockIO, out := newTestIO()
			syncer := &SyncerMock{
				RunOnceFunc: func(ctx context.Context) (*clientsync.PassResult, error) { return tt.res, tt.err },
			}

			err := New(mockIO, nil, syncer, nil, nil).runSync(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.True(t, errors.Is(err, errBoom))
				return
			}
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestCli_runPending(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		mockIO, out := newTestIO()
		pending := pendingFunc(func(ctx context.Context, seq uint64) ([]models.MutationLogEntry, error) {
			assert.Zero(t, seq)
			return nil, nil
		})

		require.NoError(t, New(mockIO, nil, nil, pending, nil).runPending(context.Background()))
		assert.Contains(t, out.String(), "No pending changes.")
	})

	t.Run("entries", func(t *testing.T) {
		mockIO, out := newTestIO()
		pending := pendingFunc(func(ctx context.Context, seq uint64) ([]models.MutationLogEntry, error) {
			return []models.MutationLogEntry{
				{Seq: 1, Operation: models.OpCreate, EntityType: models.EntityProgram, EntityID: "p1"},
				{Seq: 2, Operation: models.OpDelete, EntityType: models.EntityWorkoutLog, EntityID: "w1"},
			}, nil
		})

		require.NoError(t, New(mockIO, nil, nil, pending, nil).runPending(context.Background()))
		assert.Contains(t, out.String(), "Found 2 pending change(s)")
		assert.Contains(t, out.String(), "     1  create  program            p1")
		assert.Contains(t, out.String(), "     2  delete  workout_log        w1")
	})

	t.Run("error", func(t *testing.T) {
		mockIO, _ := newTestIO()
		pending := pendingFunc(func(ctx context.Context, seq uint64) ([]models.MutationLogEntry, error) {
			return nil, errBoom
		})

		err := New(mockIO, nil, nil, pending, nil).runPending(context.Background())
		assert.ErrorIs(t, err, errBoom)
	})
}
