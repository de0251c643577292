// internal/chat/service.go
package chat

import (
	"context"
	"strings"
	"text/template"
	"time"

	apperrors "driftaway/internal/common/errors"
	"driftaway/internal/common/logger"
	"driftaway/internal/model"
	"driftaway/internal/trip"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultMaxHistory = 20

	// FallbackReply is sent when the model produces nothing usable.
	FallbackReply = "Sorry, I couldn't put together a reply just now. Could you ask me again in a moment?"
)

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Message string `json:"message"`
	History []Turn `json:"history"`
}

type Response struct {
	Reply   string `json:"reply"`
	History []Turn `json:"history"`
}

// TripLoader resolves a trip by user id. Not-found errors pass through.
type TripLoader interface {
	Trip(ctx context.Context, uid string) (*trip.Document, error)
}

type Config struct {
	MaxHistory int
	Timeout    time.Duration
}

type Service struct {
	trips  TripLoader
	model  model.Generator
	config Config
	logger logger.Logger
}

var prompt = template.Must(template.New("chat").Parse(`You are a friendly travel assistant helping a user plan their trip.
{{with .Trip}}Trip details:
- Destination: {{or .DestinationName "not decided yet"}}
{{if .OriginName}}- Travelling from: {{.OriginName}}
{{end}}{{if .StartDate}}- Dates: {{.StartDate}} to {{.EndDate}}
{{end}}- Guests: {{.GuestCount}}
{{end}}
{{range .History}}{{.Role}}: {{.Content}}
{{end}}user: {{.Message}}
assistant:`))

func NewService(trips TripLoader, gen model.Generator, cfg Config, log logger.Logger) *Service {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		trips:  trips,
		model:  gen,
		config: cfg,
		logger: log.With(map[string]interface{}{"component": "chat"}),
	}
}

// Reply answers message in the context of uid's trip and returns the updated
// conversation. Model failures produce FallbackReply rather than an error.
func (s *Service) Reply(ctx context.Context, uid string, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperrors.NewInvalidRequestError("message is required")
	}

	doc, err := s.trips.Trip(ctx, uid)
	if err != nil {
		return nil, err
	}

	history := truncate(req.History, s.config.MaxHistory)
	reply := s.generate(ctx, uid, render(doc, history, message))

	history = append(history,
		Turn{Role: RoleUser, Content: message},
		Turn{Role: RoleAssistant, Content: reply},
	)
	return &Response{Reply: reply, History: truncate(history, s.config.MaxHistory)}, nil
}

func (s *Service) generate(ctx context.Context, uid, text string) string {
	if s.model == nil {
		return FallbackReply
	}
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	out, err := s.model.Generate(ctx, text)
	if err != nil {
		s.logger.Warn("chat generation failed", map[string]interface{}{"uid": uid, "error": err.Error()})
		return FallbackReply
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return FallbackReply
	}
	return out
}

func render(doc *trip.Document, history []Turn, message string) string {
	var sb strings.Builder
	err := prompt.Execute(&sb, map[string]interface{}{
		"Trip":    doc,
		"History": history,
		"Message": message,
	})
	if err != nil {
		return message
	}
	return sb.String()
}

// truncate keeps the most recent max turns in a fresh slice.
func truncate(history []Turn, max int) []Turn {
	if len(history) > max {
		history = history[len(history)-max:]
	}
	out := make([]Turn, len(history), len(history)+2)
	copy(out, history)
	return out
}
