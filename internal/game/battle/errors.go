package battle

import (
	"errors"
	"fmt"
)

// Code classifies battle failures.
type Code string

const (
	// CodeInvariant marks an internal inconsistency, such as an action
	// executing for a combatant that has already fainted.
	CodeInvariant         Code = "INVARIANT_VIOLATION"
	// CodeDataInconsistency marks bad static data or roster input.
	CodeDataInconsistency Code = "DATA_INCONSISTENCY"
	// CodeInvalidDecision marks a player decision that cannot be applied.
	CodeInvalidDecision   Code = "INVALID_DECISION"
	// CodeBattleEnded marks an operation on a finished battle.
	CodeBattleEnded       Code = "BATTLE_ENDED"
)

// Sentinels for errors.Is checks; any *Error with the same code matches.
var (
	ErrInvariant         = &Error{Code: CodeInvariant, Message: "invariant violated"}
	ErrDataInconsistency = &Error{Code: CodeDataInconsistency, Message: "data inconsistency"}
	ErrInvalidDecision   = &Error{Code: CodeInvalidDecision, Message: "invalid decision"}
	ErrBattleEnded       = &Error{Code: CodeBattleEnded, Message: "battle has ended"}
)

// Error is a coded battle error with optional context.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns a copy of e with key set to value.
func (e *Error) WithMetadata(key, value string) *Error {
	out := *e
	out.Metadata = make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		out.Metadata[k] = v
	}
	out.Metadata[key] = value
	return &out
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if
// there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
