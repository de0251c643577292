// internal/api/router.go
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"driftaway/internal/chat"
	apperrors "driftaway/internal/common/errors"
	"driftaway/internal/common/logger"
	"driftaway/internal/orchestrator"
	"driftaway/pkg/registry"
)

// Planner is the orchestration surface the API exposes.
type Planner interface {
	PlanTrip(ctx context.Context, uid string, opts orchestrator.Options) (*orchestrator.AggregateResult, error)
	FieldUpdate(ctx context.Context, uid, field string, opts orchestrator.Options) (*orchestrator.AggregateResult, error)
	RunProvider(ctx context.Context, uid, providerID string, opts orchestrator.Options) (*orchestrator.AggregateResult, error)
}

type Chatter interface {
	Reply(ctx context.Context, uid string, req chat.Request) (*chat.Response, error)
}

type Deps struct {
	Planner  Planner
	Chat     Chatter
	Registry *registry.ProviderRegistry
	// Ready reports whether downstream dependencies are reachable. Nil means
	// always ready.
	Ready     func(ctx context.Context) error
	RateLimit struct {
		RPS   float64
		Burst int
	}
	Logger logger.Logger
}

type handler struct {
	deps   Deps
	logger logger.Logger
}

// NewRouter builds the HTTP surface.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	log := deps.Logger.With(map[string]interface{}{"component": "api"})
	h := &handler{deps: deps, logger: log}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	r.GET("/health", h.health)
	r.GET("/ready", h.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(RateLimit(deps.RateLimit.RPS, deps.RateLimit.Burst, log))
	{
		v1.GET("/providers", h.listProviders)

		trips := v1.Group("/trips/:uid")
		trips.GET("/plan", h.planTrip)
		trips.POST("/updates", h.fieldUpdate)
		trips.GET("/providers/:provider", h.runProvider)
		trips.POST("/chat", h.chat)
	}
	return r
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *handler) ready(c *gin.Context) {
	if h.deps.Ready != nil {
		if err := h.deps.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  err.Error(),
				"time":   time.Now().Format(time.RFC3339),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

type providerInfo struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"displayName"`
	Description     string   `json:"description"`
	MandatoryFields []string `json:"mandatoryFields"`
}

func (h *handler) listProviders(c *gin.Context) {
	var out []providerInfo
	if h.deps.Registry != nil {
		for _, p := range h.deps.Registry.Providers {
			out = append(out, providerInfo{
				ID:              p.ID,
				DisplayName:     p.DisplayName,
				Description:     p.Description,
				MandatoryFields: p.MandatoryFields,
			})
		}
	}
	c.JSON(http.StatusOK, gin.H{"providers": out, "fields": orchestrator.Fields()})
}

func (h *handler) planTrip(c *gin.Context) {
	opts, ok := h.options(c, false)
	if !ok {
		return
	}
	agg, err := h.deps.Planner.PlanTrip(c.Request.Context(), c.Param("uid"), opts)
	h.respond(c, agg, err)
}

type fieldUpdateRequest struct {
	Field string `json:"field" binding:"required"`
	Force bool   `json:"force"`
}

func (h *handler) fieldUpdate(c *gin.Context) {
	var req fieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperrors.NewInvalidRequestError("body must be {\"field\": string, \"force\": bool}"))
		return
	}
	opts, ok := h.options(c, req.Force)
	if !ok {
		return
	}
	agg, err := h.deps.Planner.FieldUpdate(c.Request.Context(), c.Param("uid"), req.Field, opts)
	h.respond(c, agg, err)
}

func (h *handler) runProvider(c *gin.Context) {
	opts, ok := h.options(c, false)
	if !ok {
		return
	}
	agg, err := h.deps.Planner.RunProvider(c.Request.Context(), c.Param("uid"), c.Param("provider"), opts)
	h.respond(c, agg, err)
}

func (h *handler) chat(c *gin.Context) {
	if h.deps.Chat == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": gin.H{"code": "CHAT_DISABLED", "message": "chat is not configured"}})
		return
	}
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperrors.NewInvalidRequestError("body must be {\"message\": string, \"history\": [...]}"))
		return
	}
	resp, err := h.deps.Chat.Reply(c.Request.Context(), c.Param("uid"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// options merges the force query parameter with a body flag.
func (h *handler) options(c *gin.Context, force bool) (orchestrator.Options, bool) {
	if raw := c.Query("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.fail(c, apperrors.NewInvalidRequestError("force must be a boolean"))
			return orchestrator.Options{}, false
		}
		force = force || v
	}
	return orchestrator.Options{Force: force}, true
}

func (h *handler) respond(c *gin.Context, agg *orchestrator.AggregateResult, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

// statusClientClosedRequest marks requests the caller abandoned before a
// response was ready.
const statusClientClosedRequest = 499

func (h *handler) fail(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		h.logger.Debug("client closed request", map[string]interface{}{
			"requestId": c.GetString(ctxRequestID),
		})
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}

	status := apperrors.HTTPStatus(err)
	body := gin.H{"code": "INTERNAL_ERROR", "message": "internal error"}
	category := "unknown"
	se, ok := apperrors.As(err)
	if !ok && errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
		body = gin.H{"code": "REQUEST_TIMEOUT", "message": "request timed out"}
		category = "timeout"
	}
	if ok {
		body = gin.H{"code": se.Code, "message": se.Message}
		if se.Details != "" {
			body["details"] = se.Details
		}
		category = apperrors.GetErrorCategory(se.Code)
	}

	fields := map[string]interface{}{
		"requestId": c.GetString(ctxRequestID),
		"category":  category,
		"error":     err.Error(),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request error", fields)
	} else {
		h.logger.Debug("request rejected", fields)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
