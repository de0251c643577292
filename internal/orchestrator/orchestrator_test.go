// internal/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"driftaway/internal/cache"
	apperrors "driftaway/internal/common/errors"
	"driftaway/internal/common/logger"
	"driftaway/internal/model"
	"driftaway/internal/pipeline"
	"driftaway/internal/providers"
	"driftaway/internal/providers/weather"
	"driftaway/internal/trip"
)

// ==========================
// Test Doubles
// ==========================

type stubProvider struct {
	id      string
	calls   int32
	result  pipeline.Result
	panics  bool
	delay   time.Duration
	onStart func()
	onEnd   func()
}

func newStub(id string, status pipeline.Status) *stubProvider {
	res := pipeline.Result{Provider: id, Status: status}
	switch status {
	case pipeline.StatusSuccess:
		res.Payload = json.RawMessage(`{"provider":"` + id + `"}`)
	case pipeline.StatusFallback:
		res.Payload = json.RawMessage(`{"source":"mock"}`)
		res.Reason = "invalid JSON"
	case pipeline.StatusError:
		res.Message = "upstream exploded"
	}
	return &stubProvider{id: id, result: res}
}

func (s *stubProvider) ID() string { return s.id }

func (s *stubProvider) Prepare(doc *trip.Document) (pipeline.Invocation, error) {
	return &stubInvocation{provider: s, destination: doc.DestinationName()}, nil
}

func (s *stubProvider) Enrich(ctx context.Context, doc *trip.Document) pipeline.Result {
	inv, _ := s.Prepare(doc)
	return inv.Run(ctx)
}

func (s *stubProvider) Calls() int { return int(atomic.LoadInt32(&s.calls)) }

type stubInvocation struct {
	provider    *stubProvider
	destination string
}

func (i *stubInvocation) Request() interface{} {
	return map[string]string{"destination": i.destination}
}

func (i *stubInvocation) Run(ctx context.Context) pipeline.Result {
	s := i.provider
	atomic.AddInt32(&s.calls, 1)
	if s.onStart != nil {
		s.onStart()
	}
	if s.onEnd != nil {
		defer s.onEnd()
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.panics {
		panic("provider blew up")
	}
	return s.result
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, uid string) (*trip.Document, error) {
	return nil, errors.New("firestore: unavailable")
}

type recordingRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingRecorder) RecordRequest(ctx context.Context, trigger, outcome string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, trigger+"="+outcome)
}

// ==========================
// Test Helpers
// ==========================

func parisStore() *trip.MemoryStore {
	guests := 2
	store := trip.NewMemoryStore()
	store.Put("user-1", &trip.Document{
		Destination: &trip.Place{Name: "Paris"},
		Origin:      &trip.Place{Name: "London"},
		StartDate:   "2025-10-15",
		EndDate:     "2025-10-22",
		Guests:      &guests,
	})
	return store
}

func allStubs() map[string]*stubProvider {
	stubs := make(map[string]*stubProvider)
	for _, id := range planOrder {
		stubs[id] = newStub(id, pipeline.StatusSuccess)
	}
	return stubs
}

func asProviders(stubs ...*stubProvider) []pipeline.Provider {
	out := make([]pipeline.Provider, 0, len(stubs))
	for _, s := range stubs {
		out = append(out, s)
	}
	return out
}

func stubList(stubs map[string]*stubProvider) []*stubProvider {
	out := make([]*stubProvider, 0, len(stubs))
	for _, s := range stubs {
		out = append(out, s)
	}
	return out
}

func newOrchestrator(store trip.Store, ps []pipeline.Provider, c cache.Cache, opts ...Option) *Orchestrator {
	return New(store, ps, c, Config{MaxConcurrency: 4, ProviderTimeout: 2 * time.Second}, logger.NewNoOpLogger(), opts...)
}

// ==========================
// Aggregation Tests
// ==========================

func TestOrchestrator_PlanTrip_PartialFailure(t *testing.T) {
	hotel := newStub("hotel", pipeline.StatusSuccess)
	food := newStub("food", pipeline.StatusSuccess)
	food.panics = true
	weatherStub := newStub("weather", pipeline.StatusFallback)

	o := newOrchestrator(parisStore(), asProviders(hotel, food, weatherStub), nil)

	var agg *AggregateResult
	var err error
	require.NotPanics(t, func() {
		agg, err = o.PlanTrip(context.Background(), "user-1", Options{})
	})
	require.NoError(t, err)

	require.Len(t, agg.Results, 3)
	assert.Equal(t, pipeline.StatusSuccess, agg.Results["hotel"].Status)
	assert.JSONEq(t, `{"provider":"hotel"}`, string(agg.Results["hotel"].Payload))
	assert.Equal(t, pipeline.StatusFallback, agg.Results["weather"].Status)
	assert.Equal(t, "invalid JSON", agg.Results["weather"].Reason)

	assert.Equal(t, pipeline.StatusError, agg.Results["food"].Status)
	assert.Equal(t, "Failed to invoke food: panic: provider blew up", agg.Results["food"].Error)
	assert.Empty(t, agg.Results["food"].Payload)

	assert.Equal(t, []string{"food"}, agg.Failed())
	assert.Equal(t, "user-1", agg.UID)
	assert.Equal(t, "plan", agg.Trigger)
	assert.NotEmpty(t, agg.RequestID)
	assert.False(t, agg.GeneratedAt.IsZero())
}

func TestOrchestrator_PlanTrip_RunsEveryProvider(t *testing.T) {
	stubs := allStubs()
	o := newOrchestrator(parisStore(), asProviders(stubList(stubs)...), nil)

	agg, err := o.PlanTrip(context.Background(), "user-1", Options{})
	require.NoError(t, err)

	assert.Len(t, agg.Results, len(planOrder))
	for id, s := range stubs {
		assert.Equal(t, 1, s.Calls(), id)
	}
}

func TestOrchestrator_FieldUpdate_Routing(t *testing.T) {
	tests := []struct {
		field    string
		expected []string
	}{
		{FieldBudget, []string{"activities", "food", "hotel"}},
		{FieldDestination, []string{"activities", "hotel", "primary-transport", "weather"}},
		{FieldTravelDates, []string{"hotel", "local-transport", "primary-transport"}},
		{FieldPreferences, []string{"activities", "food"}},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			stubs := allStubs()
			o := newOrchestrator(parisStore(), asProviders(stubList(stubs)...), nil)

			agg, err := o.FieldUpdate(context.Background(), "user-1", tt.field, Options{})
			require.NoError(t, err)

			var invoked []string
			for id, s := range stubs {
				if s.Calls() > 0 {
					invoked = append(invoked, id)
				}
			}
			sort.Strings(invoked)
			assert.Equal(t, tt.expected, invoked)
			assert.Len(t, agg.Results, len(tt.expected))
			assert.Equal(t, "field:"+tt.field, agg.Trigger)
		})
	}
}

func TestOrchestrator_FieldUpdate_UnknownField(t *testing.T) {
	stubs := allStubs()
	o := newOrchestrator(parisStore(), asProviders(stubList(stubs)...), nil)

	_, err := o.FieldUpdate(context.Background(), "user-1", "guests", Options{})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnknownField))
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
	for _, s := range stubs {
		assert.Zero(t, s.Calls())
	}
}

func TestOrchestrator_RunProvider(t *testing.T) {
	hotel := newStub("hotel", pipeline.StatusSuccess)
	food := newStub("food", pipeline.StatusSuccess)
	o := newOrchestrator(parisStore(), asProviders(hotel, food), nil)

	agg, err := o.RunProvider(context.Background(), "user-1", "food", Options{})
	require.NoError(t, err)
	assert.Len(t, agg.Results, 1)
	assert.Equal(t, 1, food.Calls())
	assert.Zero(t, hotel.Calls())
	assert.Equal(t, "provider:food", agg.Trigger)

	_, err = o.RunProvider(context.Background(), "user-1", "spa", Options{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnknownProvider))
}

// ==========================
// Trip Loading Tests
// ==========================

func TestOrchestrator_TripNotFound(t *testing.T) {
	hotel := newStub("hotel", pipeline.StatusSuccess)
	recorder := &recordingRecorder{}
	o := newOrchestrator(trip.NewMemoryStore(), asProviders(hotel), nil, WithRecorder(recorder))

	_, err := o.PlanTrip(context.Background(), "ghost", Options{})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTripNotFound))
	assert.ErrorIs(t, err, trip.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
	assert.Zero(t, hotel.Calls())
	assert.Equal(t, []string{"plan=not_found"}, recorder.outcomes)
}

func TestOrchestrator_TripStoreFailure(t *testing.T) {
	o := newOrchestrator(failingStore{}, asProviders(newStub("hotel", pipeline.StatusSuccess)), nil)

	_, err := o.PlanTrip(context.Background(), "user-1", Options{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTripStoreFailed))
}

func TestOrchestrator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newOrchestrator(parisStore(), asProviders(newStub("hotel", pipeline.StatusSuccess)), nil)
	_, err := o.PlanTrip(ctx, "user-1", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

// ==========================
// Cache Tests
// ==========================

func TestOrchestrator_CachedSecondCall(t *testing.T) {
	var modelCalls int32
	gen := model.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		atomic.AddInt32(&modelCalls, 1)
		return `{"location":"Paris","forecast":[{"date":"2025-10-15","temperature":"18°C","condition":"Rain"}]}`, nil
	})
	engine := pipeline.NewEngine(gen, nil, nil)
	o := newOrchestrator(parisStore(), []pipeline.Provider{weather.New(engine)}, cache.NewMemoryCache("mcp:", time.Minute))

	first, err := o.RunProvider(context.Background(), "user-1", weather.ID, Options{})
	require.NoError(t, err)
	second, err := o.RunProvider(context.Background(), "user-1", weather.ID, Options{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&modelCalls))
	assert.False(t, first.Results[weather.ID].Cached)
	assert.True(t, second.Results[weather.ID].Cached)
	assert.JSONEq(t, string(first.Results[weather.ID].Payload), string(second.Results[weather.ID].Payload))
}

func TestOrchestrator_CacheKeepsFallbackStatus(t *testing.T) {
	fallback := newStub("weather", pipeline.StatusFallback)
	o := newOrchestrator(parisStore(), asProviders(fallback), cache.NewMemoryCache("", time.Minute))

	_, err := o.PlanTrip(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	agg, err := o.PlanTrip(context.Background(), "user-1", Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, fallback.Calls())
	slot := agg.Results["weather"]
	assert.True(t, slot.Cached)
	assert.Equal(t, pipeline.StatusFallback, slot.Status)
	assert.Equal(t, "invalid JSON", slot.Reason)
}

func TestOrchestrator_ErrorsAreNotCached(t *testing.T) {
	failing := newStub("hotel", pipeline.StatusError)
	c := cache.NewMemoryCache("", time.Minute)
	o := newOrchestrator(parisStore(), asProviders(failing), c)

	for i := 0; i < 2; i++ {
		agg, err := o.PlanTrip(context.Background(), "user-1", Options{})
		require.NoError(t, err)
		assert.Equal(t, "Failed to invoke hotel: upstream exploded", agg.Results["hotel"].Error)
	}

	assert.Equal(t, 2, failing.Calls())
	assert.Zero(t, c.Len())
}

func TestOrchestrator_ForceBypassesCache(t *testing.T) {
	hotel := newStub("hotel", pipeline.StatusSuccess)
	o := newOrchestrator(parisStore(), asProviders(hotel), cache.NewMemoryCache("", time.Minute))

	_, err := o.PlanTrip(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	agg, err := o.PlanTrip(context.Background(), "user-1", Options{Force: true})
	require.NoError(t, err)
	assert.False(t, agg.Results["hotel"].Cached)

	agg, err = o.PlanTrip(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.True(t, agg.Results["hotel"].Cached)

	assert.Equal(t, 2, hotel.Calls())
}

// ==========================
// Concurrency Tests
// ==========================

func TestOrchestrator_BoundedConcurrency(t *testing.T) {
	var current, peak int32
	stubs := allStubs()
	for _, s := range stubs {
		s.delay = 30 * time.Millisecond
		s.onStart = func() {
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
		}
		s.onEnd = func() { atomic.AddInt32(&current, -1) }
	}

	o := New(parisStore(), asProviders(stubList(stubs)...), nil, Config{MaxConcurrency: 2}, nil)
	agg, err := o.PlanTrip(context.Background(), "user-1", Options{})
	require.NoError(t, err)

	assert.Len(t, agg.Results, len(stubs))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(1))
}

// ==========================
// Real Provider Tests
// ==========================

func TestOrchestrator_MissingMandatoryFieldSlot(t *testing.T) {
	var modelCalls int32
	gen := model.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		atomic.AddInt32(&modelCalls, 1)
		return "", model.ErrModelFailed
	})
	store := trip.NewMemoryStore()
	store.Put("user-2", &trip.Document{Destination: &trip.Place{Name: "Goa"}})

	o := newOrchestrator(store, providers.All(pipeline.NewEngine(gen, nil, nil)), cache.NewMemoryCache("", time.Minute))
	agg, err := o.PlanTrip(context.Background(), "user-2", Options{})
	require.NoError(t, err)

	assert.Equal(t, pipeline.StatusError, agg.Results["weather"].Status)
	assert.Equal(t, "Failed to invoke weather: MISSING_MANDATORY_FIELD: endDate, startDate", agg.Results["weather"].Error)
	assert.Equal(t, pipeline.StatusError, agg.Results["primary-transport"].Status)

	for _, id := range []string{"food", "local-transport", "budget"} {
		assert.Equal(t, pipeline.StatusFallback, agg.Results[id].Status, id)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&modelCalls))
}

func TestOrchestrator_LooselyTypedTripStillPlans(t *testing.T) {
	doc, err := trip.Decode(map[string]interface{}{
		"destination": "Paris",
		"origin":      map[string]interface{}{"name": "London"},
		"startDate":   "2025-10-15",
		"endDate":     "2025-10-22T00:00:00Z",
		"guests":      "2",
		"budget": map[string]interface{}{
			"allocation": map[string]interface{}{"hotel": map[string]interface{}{"amount": "15000"}},
		},
		"preferences": "anything goes",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"preferences"}, doc.Ignored)

	store := trip.NewMemoryStore()
	store.Put("user-3", doc)
	gen := model.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", model.ErrModelFailed
	})

	o := newOrchestrator(store, providers.All(pipeline.NewEngine(gen, nil, nil)), nil)
	agg, err := o.PlanTrip(context.Background(), "user-3", Options{})
	require.NoError(t, err)

	assert.Len(t, agg.Results, len(planOrder))
	for id, res := range agg.Results {
		assert.Equal(t, pipeline.StatusFallback, res.Status, id)
	}
}

func TestOrchestrator_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	o := newOrchestrator(parisStore(), asProviders(newStub("hotel", pipeline.StatusSuccess)), nil, WithTracer(tp.Tracer("test")))
	_, err := o.PlanTrip(context.Background(), "user-1", Options{})
	require.NoError(t, err)

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{"orchestrator.run", "provider.hotel"}, names)
}

func TestRoute(t *testing.T) {
	ids, ok := Route(FieldBudget)
	require.True(t, ok)
	ids[0] = "mutated"

	again, _ := Route(FieldBudget)
	assert.NotEqual(t, "mutated", again[0])

	_, ok = Route("guests")
	assert.False(t, ok)
	assert.Equal(t, []string{"budget", "destination", "preferences", "travel_dates"}, Fields())
}
