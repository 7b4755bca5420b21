package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/doing"
	"github.com/aretw0/doing/internal/logging"
	"github.com/aretw0/doing/pkg/adapters/memory"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/aretw0/doing/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(context.Background(), domain.Snapshot{
		Name: "alpha", State: domain.StateRecurring, Desire: domain.ControlRecur, Steps: 3, UpdatedAt: now,
	}))
	require.NoError(t, store.Save(context.Background(), domain.Snapshot{
		Name: "beta", State: domain.StateExited, Desire: domain.ControlExit, Done: true, Steps: 5, UpdatedAt: now,
	}))
	return store
}

func TestServer_ListDoers(t *testing.T) {
	handler := NewHandler(seededStore(t), WithLogger(logging.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/doers", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var snaps []domain.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snaps))
	require.Len(t, snaps, 2)
	assert.Equal(t, "alpha", snaps[0].Name)
	assert.Equal(t, domain.StateRecurring, snaps[0].State)
	assert.Equal(t, "beta", snaps[1].Name)
	assert.True(t, snaps[1].Done)
}

func TestServer_ListDoers_Empty(t *testing.T) {
	handler := NewHandler(memory.NewStore(), WithLogger(logging.NewNop()))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doers", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestServer_GetDoer(t *testing.T) {
	handler := NewHandler(seededStore(t), WithLogger(logging.NewNop()))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doers/alpha", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var snap domain.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
	assert.Equal(t, "alpha", snap.Name)
	assert.Equal(t, 3, snap.Steps)
	assert.Equal(t, domain.ControlRecur, snap.Desire)
}

func TestServer_GetDoer_NotFound(t *testing.T) {
	handler := NewHandler(seededStore(t), WithLogger(logging.NewNop()))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doers/ghost", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `doer "ghost" not found`)
}

func TestServer_HealthAndInfo(t *testing.T) {
	handler := NewHandler(memory.NewStore(), WithLogger(logging.NewNop()))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&info))
	assert.Equal(t, "doing-http", info["app"])
	assert.NotEmpty(t, info["version"])
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	metrics.SetLive(2)

	handler := NewHandler(memory.NewStore(), WithGatherer(reg), WithLogger(logging.NewNop()))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "doing_live_doers 2")
}

func TestServer_SubscribeEvents(t *testing.T) {
	streams := NewStreamManager(logging.NewNop())
	handler := NewHandler(memory.NewStore(), WithStreams(streams), WithLogger(logging.NewNop()))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events?doer=worker", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		handler.ServeHTTP(w, req)
	}()

	require.Eventually(t, func() bool { return streams.Subscribers("worker") == 1 }, time.Second, 5*time.Millisecond)

	d := doing.New(doing.WithName("worker"), doing.WithLifecycleHooks(streams.Hooks()))
	_, err := d.Step(context.Background(), domain.ControlEnter)
	require.NoError(t, err)

	other := doing.New(doing.WithName("other"), doing.WithLifecycleHooks(streams.Hooks()))
	_, err = other.Step(context.Background(), domain.ControlEnter)
	require.NoError(t, err)

	// Let the handler drain the buffered event before disconnecting.
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-finished

	body := w.Body.String()
	assert.Contains(t, body, "event: ping")
	assert.Contains(t, body, `"doer_name":"worker"`)
	assert.Contains(t, body, `"to":"entered"`)
	assert.NotContains(t, body, `"doer_name":"other"`)
	assert.Equal(t, 0, streams.Subscribers("worker"))
}

func TestStreamManager_GlobalTopicSeesEverything(t *testing.T) {
	sm := NewStreamManager(logging.NewNop())
	all, stopAll := sm.Subscribe("")
	defer stopAll()
	one, stopOne := sm.Subscribe("a")
	defer stopOne()

	sm.Broadcast("a", "first")
	sm.Broadcast("b", "second")

	assert.Equal(t, "first", <-one)
	assert.Equal(t, "first", <-all)
	assert.Equal(t, "second", <-all)
	assert.Empty(t, one)
}

func TestStreamManager_UnsubscribeIsIdempotent(t *testing.T) {
	sm := NewStreamManager(nil)
	_, stop := sm.Subscribe("x")
	assert.Equal(t, 1, sm.Subscribers("x"))

	stop()
	stop()
	assert.Equal(t, 0, sm.Subscribers("x"))
}
