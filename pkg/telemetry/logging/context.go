package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	// CommandKey is the context key for the running command.
	CommandKey contextKey = "command"

	// ProfileKey is the context key for the active profile.
	ProfileKey contextKey = "profile"

	// RunIDKey is the context key for a pipeline run or refresh ID.
	RunIDKey contextKey = "run_id"
)

var contextKeys = []contextKey{CommandKey, ProfileKey, RunIDKey}

// WithCommand adds the command name to the context.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, CommandKey, command)
}

// WithProfile adds the profile name to the context.
func WithProfile(ctx context.Context, profile string) context.Context {
	return context.WithValue(ctx, ProfileKey, profile)
}

// WithRunID adds a run identifier to the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// contextFields returns the attributes stored in ctx.
func contextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}
