// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftaway/internal/api"
	"driftaway/internal/cache"
	"driftaway/internal/chat"
	"driftaway/internal/common/config"
	"driftaway/internal/common/database"
	"driftaway/internal/common/logger"
	"driftaway/internal/model"
	"driftaway/internal/orchestrator"
	"driftaway/internal/pipeline"
	"driftaway/internal/providers"
	"driftaway/internal/repair"
	"driftaway/internal/trip"
	"driftaway/pkg/registry"
)

// The fake gateway answers every prompt with a weather report. Only the
// weather provider accepts it; the others fail schema validation, hit the
// broken repair service and fall back.
const weatherReport = `{"location":"Goa","forecast":[{"date":"2025-12-20","temperature":"31°C","condition":"Sunny"}]}`

const tripsJSON = `{
  "user-1": {
    "destination": {"name": "Goa"},
    "origin": {"name": "Bengaluru"},
    "startDate": "2025-12-20",
    "endDate": "2025-12-24",
    "guests": 2,
    "budget": {"total": 60000, "currency": "INR"},
    "preferences": {"food": "seafood"}
  }
}`

type env struct {
	server      *httptest.Server
	modelCalls  *int32
	repairCalls *int32
	redis       *miniredis.Miniredis
}

func setup(t *testing.T) *env {
	t.Helper()
	log := logger.NewTestLogger(t)

	var modelCalls, repairCalls int32
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&modelCalls, 1)
		json.NewEncoder(w).Encode(map[string]string{"text": weatherReport})
	}))
	t.Cleanup(gateway.Close)

	snipSmart := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&repairCalls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(snipSmart.Close)

	mr := miniredis.RunT(t)
	rdb := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	responses, err := cache.New(config.CacheConfig{Backend: "redis", TTL: 3600, KeyPrefix: "mcp:"}, rdb)
	require.NoError(t, err)

	store, err := trip.LoadMemoryStore([]byte(tripsJSON))
	require.NoError(t, err)

	gen := model.NewHTTPGenerator(&model.HTTPConfig{BaseURL: gateway.URL, Timeout: 2 * time.Second})
	rep := repair.NewClient(&repair.Config{URL: snipSmart.URL, Timeout: time.Second})
	engine := pipeline.NewEngine(gen, rep, log)

	orch := orchestrator.New(store, providers.All(engine), responses, orchestrator.Config{
		MaxConcurrency:  3,
		ProviderTimeout: 5 * time.Second,
		CacheTTL:        time.Hour,
	}, log)

	reg, err := registry.Default()
	require.NoError(t, err)

	server := httptest.NewServer(api.NewRouter(api.Deps{
		Planner:  orch,
		Chat:     chat.NewService(orch, gen, chat.Config{MaxHistory: 4}, log),
		Registry: reg,
		Ready:    rdb.Ping,
		Logger:   log,
	}))
	t.Cleanup(server.Close)

	return &env{server: server, modelCalls: &modelCalls, repairCalls: &repairCalls, redis: mr}
}

func (e *env) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func (e *env) post(t *testing.T, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decodeAggregate(t *testing.T, body []byte) orchestrator.AggregateResult {
	t.Helper()
	var agg orchestrator.AggregateResult
	require.NoError(t, json.Unmarshal(body, &agg))
	return agg
}

// ==========================
// Journeys
// ==========================

func TestE2E_PlanThenCachedReplan(t *testing.T) {
	e := setup(t)

	resp, body := e.get(t, "/api/v1/trips/user-1/plan")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	agg := decodeAggregate(t, body)
	require.Len(t, agg.Results, 7)

	weather := agg.Results["weather"]
	assert.Equal(t, pipeline.StatusSuccess, weather.Status)
	assert.JSONEq(t, weatherReport, string(weather.Payload))
	assert.False(t, weather.Cached)

	for id, slot := range agg.Results {
		if id == "weather" {
			continue
		}
		assert.Equal(t, pipeline.StatusFallback, slot.Status, id)
		assert.Contains(t, slot.Reason, "schema mismatch", id)
		assert.Contains(t, string(slot.Payload), `"source":"mock"`, id)
	}
	assert.Equal(t, int32(7), atomic.LoadInt32(e.modelCalls))
	assert.Equal(t, int32(6), atomic.LoadInt32(e.repairCalls))
	assert.Len(t, e.redis.Keys(), 7)

	_, body = e.get(t, "/api/v1/trips/user-1/plan")
	again := decodeAggregate(t, body)
	for id, slot := range again.Results {
		assert.True(t, slot.Cached, id)
		assert.Equal(t, agg.Results[id].Status, slot.Status, id)
	}
	assert.Equal(t, int32(7), atomic.LoadInt32(e.modelCalls), "second plan served from redis")
}

func TestE2E_FieldUpdateForcesRefresh(t *testing.T) {
	e := setup(t)

	resp, body := e.post(t, "/api/v1/trips/user-1/updates", map[string]interface{}{"field": "preferences"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	agg := decodeAggregate(t, body)
	assert.ElementsMatch(t, []string{"food", "activities"}, keys(agg.Results))
	assert.Equal(t, int32(2), atomic.LoadInt32(e.modelCalls))

	_, body = e.post(t, "/api/v1/trips/user-1/updates", map[string]interface{}{"field": "preferences", "force": true})
	agg = decodeAggregate(t, body)
	for id, slot := range agg.Results {
		assert.False(t, slot.Cached, id)
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(e.modelCalls))
}

func TestE2E_SingleProviderAndErrors(t *testing.T) {
	e := setup(t)

	resp, body := e.get(t, "/api/v1/trips/user-1/providers/weather")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pipeline.StatusSuccess, decodeAggregate(t, body).Results["weather"].Status)

	resp, _ = e.get(t, "/api/v1/trips/user-1/providers/spa")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.get(t, "/api/v1/trips/ghost/plan")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.post(t, "/api/v1/trips/user-1/updates", map[string]interface{}{"field": "color"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestE2E_Chat(t *testing.T) {
	e := setup(t)

	resp, body := e.post(t, "/api/v1/trips/user-1/chat", map[string]interface{}{"message": "Will it rain?"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out chat.Response
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.Reply)
	require.Len(t, out.History, 2)
	assert.Equal(t, chat.RoleUser, out.History[0].Role)
}

func TestE2E_ReadinessFollowsRedis(t *testing.T) {
	e := setup(t)

	resp, _ := e.get(t, "/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	e.redis.Close()
	resp, _ = e.get(t, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func keys(m map[string]orchestrator.Slot) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
