// Package logging builds the process-wide structured logger, grounded
// on the pack's zap.NewProductionConfig/zap.NewDevelopmentConfig
// convention (see cmd/nerd/main.go in the retrieval pack).
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger for the given level name ("debug", "info",
// "warn", "error") and output format. json=false uses the human
// console encoder, useful for the interactive CLI.
func New(level string, json bool) (*zap.Logger, error) {
	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: parse level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// TurnFields builds the standard structured fields attached to every
// turn-scoped log line (spec.md §4.10: session/universe/actor are the
// three coordinates that identify any in-flight turn).
func TurnFields(sessionID, universeID, actorID string) []zap.Field {
	return []zap.Field{
		zap.String("session_id", sessionID),
		zap.String("universe_id", universeID),
		zap.String("actor_id", actorID),
	}
}
