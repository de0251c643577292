// Package model wraps the text-generation backends used by the providers and
// the chat assistant.
package model

import (
	"context"
	"errors"
)

var (
	ErrModelTimeout  = errors.New("MODEL_TIMEOUT")
	ErrModelFailed   = errors.New("MODEL_FAILED")
	ErrEmptyResponse = errors.New("MODEL_EMPTY_RESPONSE")
)

// Generator turns a prompt into text. Implementations make exactly one
// upstream attempt per call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrModelTimeout
	}
	return err
}
