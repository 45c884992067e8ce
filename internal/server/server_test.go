package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/fitsync/internal/client/api"
	"github.com/iudanet/fitsync/internal/client/connectivity"
	"github.com/iudanet/fitsync/internal/client/data"
	"github.com/iudanet/fitsync/internal/client/oplog"
	"github.com/iudanet/fitsync/internal/client/storage/boltdb"
	clientsync "github.com/iudanet/fitsync/internal/client/sync"
	"github.com/iudanet/fitsync/internal/crdt"
	"github.com/iudanet/fitsync/internal/health"
	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/server/config"
	"github.com/iudanet/fitsync/internal/server/handlers"
	"github.com/iudanet/fitsync/internal/server/middleware"
	"github.com/iudanet/fitsync/internal/server/storage"
	"github.com/iudanet/fitsync/internal/server/storage/sqlite"
	"github.com/iudanet/fitsync/pkg/api"
)

const testOwner = "user-1"

var testJWT = handlers.JWTConfig{Secret: []byte("test-secret"), TokenTTL: time.Hour}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, store storage.RecordStorage, rate int) *httptest.Server {
	t.Helper()

	limiter := middleware.NewRateLimiter(rate, time.Minute)
	t.Cleanup(limiter.Stop)

	srv := httptest.NewServer(NewRouter(RouterConfig{
		Storage: store,
		Limiter: limiter,
		Logger:  testLogger(),
		JWT:     testJWT,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newSQLiteStore(t *testing.T) *sqlite.Storage {
	t.Helper()
	s, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func issue(t *testing.T, owner string) string {
	t.Helper()
	token, _, err := handlers.IssueToken(testJWT, owner)
	require.NoError(t, err)
	return token
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		wantCode int
	}{
		{name: "database available", wantCode: http.StatusOK},
		{name: "database down", pingErr: storage.ErrStorageUnavailable, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &storage.RecordStorageMock{
				PingFunc: func(ctx context.Context) error { return tt.pingErr },
			}
			srv := newTestServer(t, store, 100)

			resp, err := http.Get(srv.URL + "/api/v1/health")
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var status health.Status
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
			assert.True(t, status.Configured)
			assert.Equal(t, tt.pingErr == nil, status.Connected)
		})
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	srv := newTestServer(t, newSQLiteStore(t), 100)

	for _, path := range []string{"/api/v1/ping", "/api/v1/records/program?since=0"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	client := clientapi.NewClient(srv.URL, "bogus")
	assert.ErrorIs(t, client.Ping(context.Background()), clientapi.ErrUnauthorized)
}

func TestRouter_ClientRoundTrip(t *testing.T) {
	srv := newTestServer(t, newSQLiteStore(t), 100)
	ctx := context.Background()
	client := clientapi.NewClient(srv.URL, issue(t, testOwner))

	require.NoError(t, client.Ping(ctx))

	rec := api.Record{
		ID:        "p1",
		OwnerID:   testOwner,
		DeviceID:  "device-a",
		CreatedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		UpdatedAt: 100,
		Data:      json.RawMessage(`{"name":"PPL"}`),
	}
	foreign := rec
	foreign.ID = "p2"
	foreign.OwnerID = "user-2"

	res, err := client.WriteBatch(ctx, models.EntityProgram, []api.Record{rec, foreign})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, res.Accepted)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, api.ReasonForbidden, res.Rejected[0].Reason)

	got, err := client.ReadSince(ctx, testOwner, models.EntityProgram, 0)
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "p1", got.Records[0].ID)
	assert.Equal(t, string(models.EntityProgram), got.Records[0].EntityType)
	assert.Equal(t, int64(1), got.Records[0].ServerSeq)
	assert.Equal(t, int64(1), got.Watermark)

	got, err = client.ReadSince(ctx, testOwner, models.EntityProgram, got.Watermark)
	require.NoError(t, err)
	assert.Empty(t, got.Records)
	assert.Equal(t, int64(1), got.Watermark)

	_, err = client.ReadSince(ctx, "user-2", models.EntityProgram, 0)
	assert.ErrorIs(t, err, clientapi.ErrUnauthorized, "reading another owner is forbidden")
}

func TestRouter_RateLimitIsTransientForClient(t *testing.T) {
	srv := newTestServer(t, newSQLiteStore(t), 1)
	client := clientapi.NewClient(srv.URL, issue(t, testOwner))

	require.NoError(t, client.Ping(context.Background()))

	err := client.Ping(context.Background())
	var transport *clientapi.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, http.StatusTooManyRequests, transport.StatusCode)
}

type device struct {
	store  *boltdb.Storage
	data   data.Service
	engine *clientsync.Engine
}

func newDevice(t *testing.T, name, serverURL, token string) *device {
	t.Helper()
	ctx := context.Background()

	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), name+".db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	client := clientapi.NewClient(serverURL, token)
	clock := crdt.NewHybridClock(name)
	log := oplog.New(store, clock)
	monitor := connectivity.NewMonitor(client, serverURL, token, 2*time.Second, testLogger())

	return &device{
		store:  store,
		data:   data.NewService(store, log, clock, testOwner),
		engine: clientsync.NewEngine(client, store, log, clock, monitor, testLogger()),
	}
}

func TestEndToEnd_TwoDevices(t *testing.T) {
	srv := newTestServer(t, newSQLiteStore(t), 1000)
	token := issue(t, testOwner)
	ctx := context.Background()

	phone := newDevice(t, "phone", srv.URL, token)
	laptop := newDevice(t, "laptop", srv.URL, token)

	saved, err := phone.data.Save(ctx, &models.Program{Name: "Push Pull Legs", Active: true})
	require.NoError(t, err)
	programID := saved.Sync().ID

	res, err := phone.engine.Run(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)

	res, err = laptop.engine.Run(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)

	got, err := laptop.data.Get(ctx, models.EntityProgram, programID)
	require.NoError(t, err)
	assert.Equal(t, "Push Pull Legs", got.(*models.Program).Name)

	// удаление на ноутбуке доходит до телефона
	require.NoError(t, laptop.data.Delete(ctx, models.EntityProgram, programID))
	_, err = laptop.engine.Run(ctx, testOwner)
	require.NoError(t, err)
	_, err = phone.engine.Run(ctx, testOwner)
	require.NoError(t, err)

	_, err = phone.data.Get(ctx, models.EntityProgram, programID)
	assert.ErrorIs(t, err, data.ErrEntityDeleted)
}

// Правка, сохраненная офлайн до чужой синхронизации, имеет меньшую метку,
// но применяется сервером позже и должна дойти до второго устройства
func TestEndToEnd_OfflineEditReachesOtherDevice(t *testing.T) {
	srv := newTestServer(t, newSQLiteStore(t), 1000)
	token := issue(t, testOwner)
	ctx := context.Background()

	phone := newDevice(t, "phone", srv.URL, token)
	laptop := newDevice(t, "laptop", srv.URL, token)

	x, err := phone.data.Save(ctx, &models.Program{Name: "Phone offline"})
	require.NoError(t, err)
	y, err := laptop.data.Save(ctx, &models.Program{Name: "Laptop online"})
	require.NoError(t, err)
	require.LessOrEqual(t, x.Sync().UpdatedAt, y.Sync().UpdatedAt)

	res, err := laptop.engine.Run(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)

	res, err = phone.engine.Run(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)
	assert.Equal(t, 2, res.Pulled)

	res, err = laptop.engine.Run(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pulled)
	assert.Equal(t, 1, res.Applied)

	got, err := laptop.data.Get(ctx, models.EntityProgram, x.Sync().ID)
	require.NoError(t, err)
	assert.Equal(t, "Phone offline", got.(*models.Program).Name)

	phoneCursor, err := phone.store.GetCursor(ctx)
	require.NoError(t, err)
	laptopCursor, err := laptop.store.GetCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), phoneCursor.LastPulledAt)
	assert.Equal(t, int64(2), laptopCursor.LastPulledAt)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.DBPath = filepath.Join(t.TempDir(), "server.db")
	cfg.JWTSecret = "s"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, testLogger()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = "mysql"

	_, err := OpenStorage(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown storage driver")
}
