package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fitsync/internal/models"
)

func appendN(t *testing.T, store *Storage, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := store.AppendLog(context.Background(), models.MutationLogEntry{
			EntityType: models.EntityProgram,
			EntityID:   "p-1",
			Operation:  models.OpUpdate,
			Payload:    testProgram("p-1", int64(i+1)),
			RecordedAt: int64(i + 1),
		})
		require.NoError(t, err)
	}
}

func readSeqs(t *testing.T, store *Storage, after uint64) []uint64 {
	t.Helper()
	var seqs []uint64
	err := store.ReadLogSince(context.Background(), after, func(e models.MutationLogEntry) bool {
		seqs = append(seqs, e.Seq)
		return true
	})
	require.NoError(t, err)
	return seqs
}

func TestStorage_AppendLog_AssignsIncreasingSeq(t *testing.T) {
	store, _ := createTestStorage(t)
	ctx := context.Background()

	var previous uint64
	for i := 0; i < 5; i++ {
		seq, err := store.AppendLog(ctx, models.MutationLogEntry{
			EntityType: models.EntityProgram,
			EntityID:   "p-1",
			Operation:  models.OpDelete,
		})
		require.NoError(t, err)
		assert.Greater(t, seq, previous)
		previous = seq
	}
}

func TestStorage_ReadLogSince(t *testing.T) {
	store, _ := createTestStorage(t)
	appendN(t, store, 5)

	tests := []struct {
		name  string
		want  []uint64
		after uint64
	}{
		{name: "from start", after: 0, want: []uint64{1, 2, 3, 4, 5}},
		{name: "from middle", after: 3, want: []uint64{4, 5}},
		{name: "past head", after: 5, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readSeqs(t, store, tt.after))
		})
	}
}

func TestStorage_ReadLogSince_StopsEarly(t *testing.T) {
	store, _ := createTestStorage(t)
	appendN(t, store, 5)

	var seen int
	err := store.ReadLogSince(context.Background(), 0, func(models.MutationLogEntry) bool {
		seen++
		return seen < 2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
}

func TestStorage_ReadLogSince_Cancelled(t *testing.T) {
	store, _ := createTestStorage(t)
	appendN(t, store, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.ReadLogSince(ctx, 0, func(models.MutationLogEntry) bool { return true })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStorage_CompactLog(t *testing.T) {
	store, _ := createTestStorage(t)
	ctx := context.Background()
	appendN(t, store, 6)

	// Подтверждено до 4, запись 2 отклонена и остается в журнале
	require.NoError(t, store.CompactLog(ctx, 4, map[uint64]struct{}{2: {}}))
	assert.Equal(t, []uint64{2, 5, 6}, readSeqs(t, store, 0))

	stats, err := store.LogStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), stats.Head)
	assert.Equal(t, uint64(2), stats.Oldest)
	assert.Equal(t, 3, stats.Len)

	require.NoError(t, store.CompactLog(ctx, 6, nil))
	stats, err = store.LogStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), stats.Head, "head never decreases after compaction")
	assert.Equal(t, uint64(0), stats.Oldest)
	assert.Equal(t, 0, stats.Len)

	// Следующая запись продолжает нумерацию
	appendN(t, store, 1)
	assert.Equal(t, []uint64{7}, readSeqs(t, store, 0))
}

func TestStorage_Log_SurvivesReopen(t *testing.T) {
	store, dbPath := createTestStorage(t)
	ctx := context.Background()
	appendN(t, store, 3)
	require.NoError(t, store.SetCursor(ctx, models.SyncCursor{LastPushedSeq: 1, LastPulledAt: 77}))

	// Имитируем перезапуск процесса
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, []uint64{1, 2, 3}, readSeqs(t, reopened, 0))

	var payload models.Entity
	require.NoError(t, reopened.ReadLogSince(ctx, 2, func(e models.MutationLogEntry) bool {
		payload = e.Payload
		return false
	}))
	require.NotNil(t, payload)
	assert.Equal(t, int64(3), payload.Sync().UpdatedAt)

	cursor, err := reopened.GetCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cursor.LastPushedSeq)
	assert.Equal(t, int64(77), cursor.LastPulledAt)
}
