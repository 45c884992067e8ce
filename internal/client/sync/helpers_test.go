package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/fitsync/internal/client/connectivity"
	"github.com/iudanet/fitsync/internal/client/oplog"
	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/client/storage/boltdb"
	"github.com/iudanet/fitsync/internal/crdt"
	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/schema"
	"github.com/iudanet/fitsync/pkg/api"
)

const (
	testOwner = "user-1"
	testTime  = "2024-03-15T10:00:00Z"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRemote хранилище в памяти с той же семантикой записи, что и сервер
type fakeRemote struct {
	records map[string]api.Record
	seq     int64
	mu      gosync.Mutex
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{records: make(map[string]api.Record)}
}

func remoteKey(t models.EntityType, id string) string {
	return string(t) + "/" + id
}

func (f *fakeRemote) mock() *RemoteStoreMock {
	return &RemoteStoreMock{
		PingFunc:       func(ctx context.Context) error { return nil },
		ReadSinceFunc:  f.readSince,
		WriteBatchFunc: f.writeBatch,
	}
}

func (f *fakeRemote) readSince(_ context.Context, ownerID string, t models.EntityType, watermark int64) (*api.ReadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []api.Record{}
	for _, rec := range f.records {
		if rec.EntityType == string(t) && rec.OwnerID == ownerID && rec.ServerSeq > watermark {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServerSeq < out[j].ServerSeq })
	return &api.ReadResponse{Records: out, Watermark: f.seq}, nil
}

func (f *fakeRemote) writeBatch(_ context.Context, t models.EntityType, records []api.Record) (*api.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := &api.WriteResult{Accepted: []string{}}
	for _, rec := range records {
		key := remoteKey(t, rec.ID)
		existing, ok := f.records[key]

		if ok && existing.OwnerID != rec.OwnerID {
			res.Rejected = append(res.Rejected, api.Rejection{ID: rec.ID, Reason: api.ReasonForbidden})
			continue
		}
		if f.uniqueTaken(t, rec) {
			res.Rejected = append(res.Rejected, api.Rejection{
				ID:     rec.ID,
				Reason: api.ReasonConstraint,
				Detail: "unique key " + rec.UniqueKey + " already taken",
			})
			continue
		}

		res.Accepted = append(res.Accepted, rec.ID)
		if ok && !newer(rec, existing) {
			res.Stale = append(res.Stale, rec.ID)
			continue
		}
		f.apply(key, rec)
	}
	return res, nil
}

func (f *fakeRemote) uniqueTaken(t models.EntityType, rec api.Record) bool {
	if rec.UniqueKey == "" || rec.DeletedAt != nil {
		return false
	}
	for _, other := range f.records {
		if other.EntityType == string(t) && other.ID != rec.ID &&
			other.DeletedAt == nil && other.UniqueKey == rec.UniqueKey {
			return true
		}
	}
	return false
}

func (f *fakeRemote) apply(key string, rec api.Record) {
	f.seq++
	rec.ServerSeq = f.seq
	f.records[key] = rec
}

func newer(incoming, existing api.Record) bool {
	version := func(rec api.Record) crdt.Version {
		return crdt.Version{DeviceID: rec.DeviceID, UpdatedAt: rec.UpdatedAt, Deleted: rec.DeletedAt != nil}
	}
	return crdt.Compare(version(incoming), version(existing)) > 0
}

// put записывает запись в обход правил, имитируя изменения других устройств
func (f *fakeRemote) put(t *testing.T, e models.Entity) {
	t.Helper()
	rec, err := schema.ToRemote(e)
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.apply(remoteKey(e.Kind(), rec.ID), rec)
}

func (f *fakeRemote) get(t models.EntityType, id string) (api.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[remoteKey(t, id)]
	return rec, ok
}

func connectedProber() *ProberMock {
	return &ProberMock{
		IsSyncConfiguredFunc: func() bool { return true },
		ProbeFunc: func(ctx context.Context) connectivity.ProbeResult {
			return connectivity.ProbeResult{Connected: true}
		},
	}
}

// testDevice локальное окружение одного устройства
type testDevice struct {
	store  *boltdb.Storage
	log    *oplog.Log
	clock  *crdt.HybridClock
	engine *Engine
	id     string
}

func newTestDevice(t *testing.T, deviceID string, remote RemoteStore, prober Prober) *testDevice {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), deviceID+".db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return newTestDeviceWithStore(t, deviceID, store, store, remote, prober)
}

func newTestDeviceWithStore(t *testing.T, deviceID string, bolt *boltdb.Storage, local storage.LocalStore, remote RemoteStore, prober Prober) *testDevice {
	t.Helper()

	clock := crdt.NewHybridClock(deviceID)
	log := oplog.New(bolt, clock)
	return &testDevice{
		store:  bolt,
		log:    log,
		clock:  clock,
		engine: NewEngine(remote, local, log, clock, prober, testLogger()),
		id:     deviceID,
	}
}

// write сохраняет запись с заданной меткой и добавляет запись в журнал
func (d *testDevice) write(t *testing.T, e models.Entity, op models.Operation) {
	t.Helper()
	e.Sync().DeviceID = d.id
	entry := d.log.NewEntry(e.Kind(), e.Sync().ID, op, e)
	_, err := d.store.WriteWithLog(context.Background(), e, entry)
	require.NoError(t, err)
}

// remove превращает запись в tombstone с меткой updatedAt
func (d *testDevice) remove(t *testing.T, kind models.EntityType, id string, updatedAt int64) {
	t.Helper()
	current := d.get(t, kind, id)
	require.NotNil(t, current)

	tomb := models.Clone(current)
	tomb.Sync().DeletedAt = "2024-03-16T09:00:00Z"
	tomb.Sync().UpdatedAt = updatedAt
	d.write(t, tomb, models.OpDelete)
}

func (d *testDevice) get(t *testing.T, kind models.EntityType, id string) models.Entity {
	t.Helper()
	e, err := d.store.Get(context.Background(), kind, id)
	if errors.Is(err, storage.ErrEntityNotFound) {
		return nil
	}
	require.NoError(t, err)
	return e
}

func (d *testDevice) cursor(t *testing.T) models.SyncCursor {
	t.Helper()
	c, err := d.store.GetCursor(context.Background())
	require.NoError(t, err)
	return c
}

func (d *testDevice) pending(t *testing.T) []models.MutationLogEntry {
	t.Helper()
	entries, err := d.log.Snapshot(context.Background(), 0)
	require.NoError(t, err)
	return entries
}

func (d *testDevice) sync(t *testing.T) *PassResult {
	t.Helper()
	res, err := d.engine.Run(context.Background(), testOwner)
	require.NoError(t, err)
	return res
}

func program(id string, updatedAt int64, name string) *models.Program {
	return &models.Program{
		SyncFields: models.SyncFields{
			ID:        id,
			OwnerID:   testOwner,
			CreatedAt: testTime,
			UpdatedAt: updatedAt,
		},
		Name: name,
	}
}

func trainingDay(id, programID string, updatedAt int64) *models.TrainingDay {
	return &models.TrainingDay{
		SyncFields: models.SyncFields{
			ID:        id,
			OwnerID:   testOwner,
			CreatedAt: testTime,
			UpdatedAt: updatedAt,
		},
		ProgramID: programID,
		Name:      "Day " + id,
		Blocks:    []models.ExerciseBlock{},
	}
}

func workoutLog(id string, updatedAt int64, notes string) *models.WorkoutLog {
	return &models.WorkoutLog{
		SyncFields: models.SyncFields{
			ID:        id,
			OwnerID:   testOwner,
			CreatedAt: testTime,
			UpdatedAt: updatedAt,
		},
		PerformedAt: testTime,
		Notes:       notes,
		Sets:        []models.LoggedSet{},
	}
}

func socialProfile(id string, updatedAt int64, handle string) *models.SocialProfile {
	return &models.SocialProfile{
		SyncFields: models.SyncFields{
			ID:        id,
			OwnerID:   testOwner,
			CreatedAt: testTime,
			UpdatedAt: updatedAt,
		},
		Handle: handle,
	}
}

func withDevice[E models.Entity](e E, deviceID string) E {
	e.Sync().DeviceID = deviceID
	return e
}
