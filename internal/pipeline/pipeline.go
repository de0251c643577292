// internal/pipeline/pipeline.go
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"driftaway/internal/common/logger"
	"driftaway/internal/common/metrics"
	"driftaway/internal/common/validation"
	"driftaway/internal/model"
	"driftaway/internal/repair"
	"driftaway/internal/trip"
)

var (
	ErrInvalidJSON    = errors.New("invalid JSON")
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// Provider is one enrichment capability.
type Provider interface {
	ID() string
	// Prepare extracts the provider's request from doc. It fails only when
	// a mandatory field is missing.
	Prepare(doc *trip.Document) (Invocation, error)
	// Enrich runs the whole pipeline and never panics or returns an error.
	Enrich(ctx context.Context, doc *trip.Document) Result
}

// Invocation is a prepared provider run.
type Invocation interface {
	// Request is the subset of the trip the provider reads. It identifies
	// the run for caching.
	Request() interface{}
	Run(ctx context.Context) Result
}

// Spec is what a capability plugs into the shared pipeline.
type Spec[R any] struct {
	ID      string
	Extract func(doc *trip.Document) (R, error)
	Prompt  func(req R) string
	Mock    func(req R) interface{}
	// Schema is the JSON schema model output must satisfy. Nil accepts any
	// JSON object.
	Schema map[string]interface{}
}

// Engine holds the collaborators every provider shares.
type Engine struct {
	model  model.Generator
	repair repair.Repairer
	logger logger.Logger
}

func NewEngine(gen model.Generator, rep repair.Repairer, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Engine{
		model:  gen,
		repair: rep,
		logger: log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

type plugin[R any] struct {
	engine *Engine
	spec   Spec[R]
}

// New binds spec to engine.
func New[R any](engine *Engine, spec Spec[R]) Provider {
	return &plugin[R]{engine: engine, spec: spec}
}

func (p *plugin[R]) ID() string { return p.spec.ID }

func (p *plugin[R]) Prepare(doc *trip.Document) (Invocation, error) {
	req, err := p.spec.Extract(doc)
	if err != nil {
		return nil, err
	}
	return &invocation[R]{plugin: p, req: req, uid: uidOf(doc)}, nil
}

func (p *plugin[R]) Enrich(ctx context.Context, doc *trip.Document) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failure(p.spec.ID, fmt.Errorf("panic: %v", r))
		}
	}()

	inv, err := p.Prepare(doc)
	if err != nil {
		metrics.ProviderRuns.WithLabelValues(p.spec.ID, string(StatusError)).Inc()
		return Failure(p.spec.ID, err)
	}
	return inv.Run(ctx)
}

type invocation[R any] struct {
	plugin *plugin[R]
	req    R
	uid    string
}

func (i *invocation[R]) Request() interface{} { return i.req }

func (i *invocation[R]) Run(ctx context.Context) (res Result) {
	spec := i.plugin.spec
	e := i.plugin.engine
	log := e.logger.With(map[string]interface{}{
		"provider": spec.ID,
		"uid":      i.uid,
	})

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("provider panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			res = Failure(spec.ID, fmt.Errorf("panic: %v", r))
		}
		metrics.ProviderRuns.WithLabelValues(spec.ID, string(res.Status)).Inc()
		metrics.ProviderRunDuration.WithLabelValues(spec.ID).Observe(time.Since(start).Seconds())
	}()

	text, reason := i.generate(ctx, spec.Prompt(i.req))
	if reason == nil {
		payload, err := decode(text, spec.Schema)
		if err == nil {
			log.Info("provider enriched", map[string]interface{}{"durationMs": time.Since(start).Milliseconds()})
			return Success(spec.ID, payload)
		}
		reason = err
	}

	log.Warn("model output irregular, attempting repair", map[string]interface{}{"reason": reason.Error()})

	if e.repair != nil {
		repaired, err := e.repair.Repair(ctx, text)
		if err == nil {
			payload, verr := decode(string(repaired), spec.Schema)
			if verr == nil {
				log.Info("provider enriched after repair", map[string]interface{}{"durationMs": time.Since(start).Milliseconds()})
				return Success(spec.ID, payload)
			}
			log.Warn("repaired output rejected", map[string]interface{}{"error": verr.Error()})
		} else {
			log.Warn("repair unavailable", map[string]interface{}{"error": err.Error()})
		}
	}

	mock, err := markMock(spec.Mock(i.req))
	if err != nil {
		return Failure(spec.ID, fmt.Errorf("encode fallback: %w", err))
	}
	log.Warn("falling back to mock response", map[string]interface{}{"reason": reason.Error()})
	return Fallback(spec.ID, mock, reason.Error())
}

func (i *invocation[R]) generate(ctx context.Context, prompt string) (string, error) {
	e := i.plugin.engine
	if e.model == nil {
		return "", fmt.Errorf("%w: no model configured", model.ErrModelFailed)
	}
	text, err := e.model.Generate(ctx, prompt)
	if err != nil {
		return text, err
	}
	if len(bytes.TrimSpace([]byte(text))) == 0 {
		return text, model.ErrEmptyResponse
	}
	return text, nil
}

func uidOf(doc *trip.Document) string {
	if doc == nil {
		return ""
	}
	return doc.UID
}

// decode strictly parses text as a JSON object and checks it against schema.
func decode(text string, schema map[string]interface{}) (json.RawMessage, error) {
	raw := bytes.TrimSpace([]byte(text))
	if len(raw) == 0 || raw[0] != '{' || !json.Valid(raw) {
		return nil, ErrInvalidJSON
	}

	if schema != nil {
		result, err := validation.ValidateDocument(schema, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
		}
		if !result.Valid {
			return nil, fmt.Errorf("%w: %s", ErrSchemaMismatch, result.Summary())
		}
	}
	return json.RawMessage(raw), nil
}

// markMock encodes a mock payload and tags it so consumers can tell it
// apart from live output.
func markMock(mock interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(mock)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw, nil
	}
	fields["source"] = json.RawMessage(`"mock"`)
	fields["status"] = json.RawMessage(`"fallback"`)
	return json.Marshal(fields)
}
