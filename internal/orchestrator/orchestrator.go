// internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"driftaway/internal/cache"
	apperrors "driftaway/internal/common/errors"
	"driftaway/internal/common/logger"
	"driftaway/internal/common/metrics"
	"driftaway/internal/pipeline"
	"driftaway/internal/trip"
)

const (
	DefaultMaxConcurrency  = 4
	DefaultProviderTimeout = 45 * time.Second
)

// Options tune a single orchestration request.
type Options struct {
	// Force skips the cache lookup. The fresh result is still stored.
	Force bool
}

// Slot is one provider's outcome inside an aggregate.
type Slot struct {
	Status  pipeline.Status `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Error   string          `json:"error,omitempty"`
	Cached  bool            `json:"cached"`
}

// AggregateResult is built once per request and not modified afterwards.
type AggregateResult struct {
	RequestID   string          `json:"requestId"`
	UID         string          `json:"uid"`
	Trigger     string          `json:"trigger"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Results     map[string]Slot `json:"results"`
}

// Failed lists providers that produced no usable payload.
func (a *AggregateResult) Failed() []string {
	return lo.Filter(lo.Keys(a.Results), func(id string, _ int) bool {
		return a.Results[id].Status == pipeline.StatusError
	})
}

// Recorder receives one measurement per request.
type Recorder interface {
	RecordRequest(ctx context.Context, trigger, outcome string, duration time.Duration)
}

type Config struct {
	MaxConcurrency  int
	ProviderTimeout time.Duration
	CacheTTL        time.Duration
}

type Orchestrator struct {
	store     trip.Store
	providers map[string]pipeline.Provider
	cache     cache.Cache
	config    Config
	tracer    trace.Tracer
	recorder  Recorder
	logger    logger.Logger
}

type Option func(*Orchestrator)

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

func New(store trip.Store, providers []pipeline.Provider, c cache.Cache, cfg Config, log logger.Logger, opts ...Option) *Orchestrator {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultProviderTimeout
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	o := &Orchestrator{
		store:     store,
		providers: lo.KeyBy(providers, func(p pipeline.Provider) string { return p.ID() }),
		cache:     c,
		config:    cfg,
		tracer:    otel.Tracer("driftaway/orchestrator"),
		logger:    log.With(map[string]interface{}{"component": "orchestrator"}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PlanTrip runs every registered provider for uid.
func (o *Orchestrator) PlanTrip(ctx context.Context, uid string, opts Options) (*AggregateResult, error) {
	ids := lo.Filter(planOrder, func(id string, _ int) bool {
		_, ok := o.providers[id]
		return ok
	})
	for id := range o.providers {
		if !lo.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return o.run(ctx, uid, "plan", ids, opts)
}

// FieldUpdate runs only the providers that depend on field.
func (o *Orchestrator) FieldUpdate(ctx context.Context, uid, field string, opts Options) (*AggregateResult, error) {
	ids, ok := Route(field)
	if !ok {
		return nil, apperrors.NewUnknownFieldError(field, Fields())
	}
	ids = lo.Filter(ids, func(id string, _ int) bool {
		_, ok := o.providers[id]
		return ok
	})
	return o.run(ctx, uid, "field:"+field, ids, opts)
}

// RunProvider runs a single provider.
func (o *Orchestrator) RunProvider(ctx context.Context, uid, providerID string, opts Options) (*AggregateResult, error) {
	if _, ok := o.providers[providerID]; !ok {
		return nil, apperrors.NewUnknownProviderError(providerID)
	}
	return o.run(ctx, uid, "provider:"+providerID, []string{providerID}, opts)
}

// Trip loads the trip document for uid, mapping store failures to request
// errors.
func (o *Orchestrator) Trip(ctx context.Context, uid string) (*trip.Document, error) {
	doc, err := o.store.Get(ctx, uid)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, trip.ErrNotFound) {
			return nil, apperrors.NewTripNotFoundError(uid, err)
		}
		return nil, apperrors.NewTripStoreFailedError(uid, err)
	}
	if doc == nil {
		return nil, apperrors.NewTripNotFoundError(uid, trip.ErrNotFound)
	}
	if doc.UID == "" {
		doc.UID = uid
	}
	return doc, nil
}

func (o *Orchestrator) run(ctx context.Context, uid, trigger string, ids []string, opts Options) (*AggregateResult, error) {
	start := time.Now()
	requestID := uuid.New().String()
	log := o.logger.With(map[string]interface{}{
		"requestId": requestID,
		"uid":       uid,
		"trigger":   trigger,
	})

	ctx, span := o.tracer.Start(ctx, "orchestrator.run", trace.WithAttributes(
		attribute.String("uid", uid),
		attribute.String("trigger", trigger),
	))
	defer span.End()

	doc, err := o.Trip(ctx, uid)
	if err != nil {
		outcome := "store_error"
		switch {
		case apperrors.IsCode(err, apperrors.ErrCodeTripNotFound):
			outcome = "not_found"
		case ctx.Err() != nil:
			outcome = "cancelled"
		}
		log.Warn("trip unavailable", map[string]interface{}{"error": err.Error()})
		span.SetStatus(codes.Error, outcome)
		o.record(ctx, trigger, outcome, start)
		return nil, err
	}
	if len(doc.Ignored) > 0 {
		log.Warn("ignoring unusable trip fields", map[string]interface{}{"fields": doc.Ignored})
	}

	var mu sync.Mutex
	results := make(map[string]Slot, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.config.MaxConcurrency)
	for _, id := range ids {
		p := o.providers[id]
		g.Go(func() error {
			slot := o.invoke(gctx, p, doc, opts)
			mu.Lock()
			results[p.ID()] = slot
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn("request cancelled", map[string]interface{}{"error": err.Error()})
		span.SetStatus(codes.Error, "cancelled")
		o.record(ctx, trigger, "cancelled", start)
		return nil, err
	}

	agg := &AggregateResult{
		RequestID:   requestID,
		UID:         uid,
		Trigger:     trigger,
		GeneratedAt: time.Now().UTC(),
		Results:     results,
	}

	outcome := "ok"
	if failed := agg.Failed(); len(failed) > 0 {
		outcome = "partial"
		log.Warn("providers failed", map[string]interface{}{"providers": failed})
	}
	log.Info("orchestration completed", map[string]interface{}{
		"providers":  len(ids),
		"outcome":    outcome,
		"durationMs": time.Since(start).Milliseconds(),
	})
	o.record(ctx, trigger, outcome, start)
	return agg, nil
}

// invoke runs one provider with cache lookup, a private timeout and panic
// isolation. It always returns a slot.
func (o *Orchestrator) invoke(ctx context.Context, p pipeline.Provider, doc *trip.Document, opts Options) (slot Slot) {
	id := p.ID()
	log := o.logger.With(map[string]interface{}{"provider": id, "uid": doc.UID})

	ctx, span := o.tracer.Start(ctx, "provider."+id, trace.WithAttributes(attribute.String("provider", id)))
	defer span.End()

	metrics.ProvidersInFlight.WithLabelValues(id).Inc()
	defer metrics.ProvidersInFlight.WithLabelValues(id).Dec()

	defer func() {
		if r := recover(); r != nil {
			log.Error("provider panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			slot = failedSlot(id, fmt.Errorf("panic: %v", r))
		}
		span.SetAttributes(attribute.String("status", string(slot.Status)), attribute.Bool("cached", slot.Cached))
		if slot.Status == pipeline.StatusError {
			span.SetStatus(codes.Error, slot.Error)
		}
	}()

	inv, err := p.Prepare(doc)
	if err != nil {
		metrics.ProviderRuns.WithLabelValues(id, string(pipeline.StatusError)).Inc()
		log.Warn("provider not runnable", map[string]interface{}{"error": err.Error()})
		return failedSlot(id, err)
	}
	input := inv.Request()

	if !opts.Force {
		if cached, ok := o.lookup(ctx, id, input, log); ok {
			return cached
		}
	} else {
		metrics.CacheLookups.WithLabelValues(id, "bypass").Inc()
	}

	runCtx, cancel := context.WithTimeout(ctx, o.config.ProviderTimeout)
	defer cancel()
	res := inv.Run(runCtx)

	if res.Status == pipeline.StatusError {
		return failedSlot(id, errors.New(res.Message))
	}
	o.remember(ctx, id, input, res, log)
	return Slot{Status: res.Status, Payload: res.Payload, Reason: res.Reason}
}

func (o *Orchestrator) lookup(ctx context.Context, id string, input interface{}, log logger.Logger) (Slot, bool) {
	if o.cache == nil {
		return Slot{}, false
	}
	raw, ok, err := o.cache.Get(ctx, id, input)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(id, "error").Inc()
		log.Warn("cache lookup failed", map[string]interface{}{"error": err.Error()})
		return Slot{}, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues(id, "miss").Inc()
		return Slot{}, false
	}

	var res pipeline.Result
	if err := json.Unmarshal(raw, &res); err != nil || !res.Usable() {
		metrics.CacheLookups.WithLabelValues(id, "error").Inc()
		log.Warn("discarding unreadable cache entry", nil)
		return Slot{}, false
	}
	metrics.CacheLookups.WithLabelValues(id, "hit").Inc()
	return Slot{Status: res.Status, Payload: res.Payload, Reason: res.Reason, Cached: true}, true
}

func (o *Orchestrator) remember(ctx context.Context, id string, input interface{}, res pipeline.Result, log logger.Logger) {
	if o.cache == nil || !res.Usable() {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		log.Warn("cache encode failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := o.cache.Put(ctx, id, input, raw, o.config.CacheTTL); err != nil {
		log.Warn("cache store failed", map[string]interface{}{"error": err.Error()})
	}
}

func (o *Orchestrator) record(ctx context.Context, trigger, outcome string, start time.Time) {
	if o.recorder != nil {
		o.recorder.RecordRequest(ctx, trigger, outcome, time.Since(start))
	}
}

func failedSlot(id string, cause error) Slot {
	return Slot{
		Status: pipeline.StatusError,
		Error:  fmt.Sprintf("Failed to invoke %s: %v", id, cause),
	}
}
