package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fitsync/internal/client/data"
	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/models"
)

func deleteMock() *data.ServiceMock {
	return &data.ServiceMock{
		GetFunc: func(ctx context.Context, et models.EntityType, id string) (models.Entity, error) {
			return &models.Program{SyncFields: models.SyncFields{ID: id}, Name: "Strength"}, nil
		},
		DeleteFunc: func(ctx context.Context, et models.EntityType, id string) error {
			return nil
		},
	}
}

func TestCli_runDelete(t *testing.T) {
	tests := []struct {
		name        string
		inputs      []string
		yes         bool
		wantDeleted bool
		wantPrompt  bool
		want        string
	}{
		{name: "confirmed", inputs: []string{"yes"}, wantDeleted: true, wantPrompt: true, want: "Deleted successfully"},
		{name: "short confirm", inputs: []string{"y"}, wantDeleted: true, wantPrompt: true, want: "Deleted successfully"},
		{name: "cancelled", inputs: []string{"no"}, wantPrompt: true, want: "Deletion cancelled."},
		{name: "yes flag", yes: true, wantDeleted: true, want: "Deleted successfully"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockIO, out := newTestIO(tt.inputs...)
			mockData := deleteMock()

			err := New(mockIO, mockData, nil, nil, nil).runDelete(context.Background(), "program", "p1", tt.yes)
			require.NoError(t, err)

			assert.Contains(t, out.String(), tt.want)
			assert.Contains(t, out.String(), "Training days of this program are deleted too")

			if tt.wantPrompt {
				assert.Len(t, mockIO.ReadInputCalls(), 1)
			} else {
				assert.Empty(t, mockIO.ReadInputCalls())
			}

			if tt.wantDeleted {
				require.Len(t, mockData.DeleteCalls(), 1)
				assert.Equal(t, models.EntityProgram, mockData.DeleteCalls()[0].T)
				assert.Equal(t, "p1", mockData.DeleteCalls()[0].ID)
			} else {
				assert.Empty(t, mockData.DeleteCalls())
			}
		})
	}
}

func TestCli_runDelete_NotFound(t *testing.T) {
	mockIO, _ := newTestIO()
	mockData := &data.ServiceMock{
		GetFunc: func(ctx context.Context, et models.EntityType, id string) (models.Entity, error) {
			return nil, storage.ErrEntityNotFound
		},
	}

	err := New(mockIO, mockData, nil, nil, nil).runDelete(context.Background(), "workout_log", "missing", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workout_log not found with ID: missing")
	assert.Empty(t, mockData.DeleteCalls())
}

func TestCli_runDelete_ServiceError(t *testing.T) {
	mockIO, _ := newTestIO()
	mockData := deleteMock()
	mockData.DeleteFunc = func(ctx context.Context, et models.EntityType, id string) error {
		return data.ErrOwnerMismatch
	}

	err := New(mockIO, mockData, nil, nil, nil).runDelete(context.Background(), "program", "p1", true)
	assert.ErrorIs(t, err, data.ErrOwnerMismatch)
}
