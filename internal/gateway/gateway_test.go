package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/logging"
	"profilehub/internal/observability"
	"profilehub/internal/probe"
	"profilehub/internal/profile"
	"profilehub/internal/server"
	"profilehub/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fixture 組合一個真實的 profile 服務、Remote、Local 與 Gateway。
type fixture struct {
	ts      *httptest.Server
	store   *profile.Store
	local   *Local
	kv      *storage.MemoryKV
	gw      *Gateway
	metrics *observability.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := profile.NewStore()
	ts := httptest.NewServer(server.NewServer(store, server.Options{Logger: logging.Discard()}).Router())
	t.Cleanup(ts.Close)

	p, err := probe.New(ts.URL+"/api", probe.Options{})
	require.NoError(t, err)
	remote, err := NewRemote(ts.URL+"/api", 0)
	require.NoError(t, err)
	kv := storage.NewMemory()
	local := NewLocal(kv)
	metrics := observability.New(prometheus.NewRegistry())

	return &fixture{
		ts:      ts,
		store:   store,
		local:   local,
		kv:      kv,
		gw:      New(p, remote, local, Options{Logger: logging.Discard(), Metrics: metrics}),
		metrics: metrics,
	}
}

// stubChecker 回傳固定的可用性。
type stubChecker bool

func (s stubChecker) Available(context.Context) bool { return bool(s) }

func ada() profile.Profile {
	return profile.Profile{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com"}
}

func TestSaveRoundTripRemote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.gw.Save(ctx, ada())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, BackendRemote, f.gw.LastBackend())

	created.FirstName = "Augusta"
	updated, err := f.gw.Save(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Augusta", updated.FirstName)

	all, err := f.gw.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "save without id then with id must yield one record")
	assert.Equal(t, updated, all[0])

	// 遠端可用時不得寫入本地
	localAll, _ := f.local.List(ctx)
	assert.Empty(t, localAll)
}

func TestDeleteRemote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.gw.Save(ctx, ada())
	require.NoError(t, err)

	require.NoError(t, f.gw.Delete(ctx, created.ID))
	assert.Equal(t, 0, f.store.Len())
}

func TestUnreachableStoreFallsBackToLocal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ts.Close()

	saved, err := f.gw.Save(ctx, ada())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, BackendLocal, f.gw.LastBackend())

	all, err := f.gw.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, saved, all[0])

	// 本地資料實際以單一鍵寫入
	raw, ok, err := f.kv.Get(FallbackKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, raw, saved.ID)
}

func TestTwoIndependentTruths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	remoteRec, err := f.gw.Save(ctx, ada())
	require.NoError(t, err)
	assert.Equal(t, BackendRemote, f.gw.LastBackend())

	f.ts.Close()

	// 切換到本地後看不到遠端資料，這是預期行為
	all, err := f.gw.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// 遠端建立的紀錄在本地不存在 → NotFound
	remoteRec.FirstName = "Offline"
	_, err = f.gw.Save(ctx, remoteRec)
	assert.ErrorIs(t, err, profile.ErrNotFound)
	assert.ErrorIs(t, f.gw.Delete(ctx, remoteRec.ID), profile.ErrNotFound)
}

func TestRemoteServerErrorFallsBack(t *testing.T) {
	// health 正常但其他端點回 500
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"boom"}`))
	}))
	defer ts.Close()

	p, _ := probe.New(ts.URL+"/api", probe.Options{})
	remote, _ := NewRemote(ts.URL+"/api", 0)
	metrics := observability.New(prometheus.NewRegistry())
	gw := New(p, remote, NewLocal(storage.NewMemory()), Options{Logger: logging.Discard(), Metrics: metrics})

	saved, err := gw.Save(context.Background(), ada())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, BackendLocal, gw.LastBackend())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GatewayOperations.WithLabelValues("save", BackendRemote, "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GatewayOperations.WithLabelValues("save", BackendLocal, "ok")))
}

func TestValidationErrorIsTyped(t *testing.T) {
	f := newFixture(t)
	bad := ada()
	bad.FirstName = ""

	_, err := f.gw.Save(context.Background(), bad)
	var ve *profile.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields(), "firstName")
	assert.Equal(t, 0, f.store.Len())
}

func TestLocalFailureIsUnknown(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Close())
	gw := New(stubChecker(false), nil, NewLocal(kv), Options{Logger: logging.Discard()})

	_, err := gw.List(context.Background())
	var ue *UnknownError
	require.ErrorAs(t, err, &ue)
	assert.True(t, errors.Is(err, storage.ErrClosed))

	var te *TransportError
	assert.False(t, errors.As(err, &te), "transport errors must never escape the gateway")
}

func TestNoRemoteUsesLocalOnly(t *testing.T) {
	gw := New(stubChecker(true), nil, NewLocal(storage.NewMemory()), Options{Logger: logging.Discard()})
	saved, err := gw.Save(context.Background(), ada())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, BackendLocal, gw.LastBackend())
	assert.False(t, gw.Available(context.Background()))
}
