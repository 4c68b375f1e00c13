// Package rpgerr provides structured error handling for the resolution
// engine. It names the closed set of error kinds spec.md §7 requires and
// carries enough game-state context that a caller can decide whether to
// surface, retry, or roll back without string-matching messages.
package rpgerr

import (
	"context"
	"errors"
	"fmt"
)

// Code is one of the closed error kinds from spec.md §7.
type Code string

const (
	// CodeBadInput covers malformed dice notation and unknown intents.
	CodeBadInput Code = "invalid_argument"
	// CodeNotFound covers a missing entity or ability.
	CodeNotFound Code = "not_found"
	// CodeInsufficientResource covers exhausted slots, momentum, or uses.
	CodeInsufficientResource Code = "resource_exhausted"
	// CodeInvalidTarget covers a targeting-type mismatch.
	CodeInvalidTarget Code = "invalid_target"
	// CodeRuleViolation covers things like two concentration effects.
	CodeRuleViolation Code = "rule_violation"
	// CodeConflictState covers a stale version on save. Nothing in this
	// module retries on it.
	CodeConflictState Code = "conflict_state"
	// CodeTimeout covers an LLM call exceeding its deadline.
	CodeTimeout Code = "timeout"
	// CodeRepo covers persistence failures; fatal to the turn.
	CodeRepo Code = "internal"
	// CodeCanceled covers a canceled turn.
	CodeCanceled Code = "canceled"
	// CodeUnknown is the fallback for errors this package didn't create.
	CodeUnknown Code = "unknown"
)

// Error is the engine's error type. It carries a closed Code, a
// human-readable message, optional metadata for diagnostics, and a
// wrapped cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

// Error implements error.
func (e *Error) Error() string {
	if e == nil {
		return "rpgerr: nil error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Option configures an Error at construction time.
type Option func(*Error)

// WithMeta attaches a diagnostic field to the error.
func WithMeta(key string, value any) Option {
	return func(e *Error) {
		if e.Meta == nil {
			e.Meta = make(map[string]any)
		}
		e.Meta[key] = value
	}
}

// New creates an Error with the given code and message.
func New(code Code, message string, opts ...Option) *Error {
	e := &Error{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err, preserving its Code if it is already an *Error.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return New(CodeUnknown, message)
	}
	var inner *Error
	code := CodeUnknown
	var meta map[string]any
	if errors.As(err, &inner) {
		code = inner.Code
		meta = copyMeta(inner.Meta)
	}
	e := &Error{Code: code, Message: message, Cause: err, Meta: meta}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GetCode extracts the Code from any error, defaulting to CodeUnknown.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return CodeCanceled
	}
	return CodeUnknown
}

// GetMeta extracts the diagnostic metadata from any error.
func GetMeta(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Meta
	}
	return nil
}

// Constructors for each closed error kind in spec.md §7.

// BadInput reports malformed notation or an unknown intent.
func BadInput(reason string, opts ...Option) *Error {
	return New(CodeBadInput, reason, opts...)
}

// NotFound reports a missing entity or ability.
func NotFound(what string, opts ...Option) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s not found", what), opts...)
}

// InsufficientResource reports an exhausted resource.
func InsufficientResource(resource string, opts ...Option) *Error {
	return New(CodeInsufficientResource, fmt.Sprintf("insufficient %s", resource), opts...)
}

// InvalidTarget reports a targeting-type mismatch.
func InvalidTarget(reason string, opts ...Option) *Error {
	return New(CodeInvalidTarget, fmt.Sprintf("invalid target: %s", reason), opts...)
}

// RuleViolation reports a broken game-rule invariant.
func RuleViolation(reason string, opts ...Option) *Error {
	return New(CodeRuleViolation, reason, opts...)
}

// ConflictState reports a stale-version write conflict.
func ConflictState(reason string, opts ...Option) *Error {
	return New(CodeConflictState, reason, opts...)
}

// Timeout reports an LLM call that exceeded its deadline.
func Timeout(reason string, opts ...Option) *Error {
	return New(CodeTimeout, reason, opts...)
}

// Repo reports a persistence failure fatal to the turn.
func Repo(err error, op string) *Error {
	e := Wrap(err, op, WithMeta("rpgerr_code", CodeRepo))
	e.Code = CodeRepo
	return e
}

// Is* helpers let callers branch on the closed error-kind set.

// IsBadInput reports whether err is a BadInput error.
func IsBadInput(err error) bool { return GetCode(err) == CodeBadInput }

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return GetCode(err) == CodeNotFound }

// IsInsufficientResource reports whether err is an InsufficientResource error.
func IsInsufficientResource(err error) bool { return GetCode(err) == CodeInsufficientResource }

// IsInvalidTarget reports whether err is an InvalidTarget error.
func IsInvalidTarget(err error) bool { return GetCode(err) == CodeInvalidTarget }

// IsRuleViolation reports whether err is a RuleViolation error.
func IsRuleViolation(err error) bool { return GetCode(err) == CodeRuleViolation }

// IsConflictState reports whether err is a ConflictState error.
func IsConflictState(err error) bool { return GetCode(err) == CodeConflictState }

// IsTimeout reports whether err is a Timeout error.
func IsTimeout(err error) bool { return GetCode(err) == CodeTimeout }

// IsRepo reports whether err is a persistence failure.
func IsRepo(err error) bool { return GetCode(err) == CodeRepo }
