// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Outcome classifies a Result.
type Outcome int

const (
	// OutcomeOK means a value is present.
	OutcomeOK Outcome = iota
	// OutcomeAbsent means the collaborator produced nothing usable. The
	// caller decides whether that matters.
	OutcomeAbsent
	// OutcomeFatal means the request could not be attempted at all.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeAbsent:
		return "absent"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Result carries the answer of an optional collaborator (downloader,
// summarizer, review gate, activity fetch) so callers can tell "nothing
// came back" apart from "the call itself was broken".
type Result[T any] struct {
	Value   T
	Outcome Outcome
	// Err is the reason for an Absent or Fatal result. It may be nil for
	// Absent.
	Err error
}

// Ok wraps a present value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: OutcomeOK}
}

// Absent reports that no value is available; reason is kept for logging.
func Absent[T any](reason error) Result[T] {
	return Result[T]{Outcome: OutcomeAbsent, Err: reason}
}

// Fatal reports that the call could not be made.
func Fatal[T any](err error) Result[T] {
	return Result[T]{Outcome: OutcomeFatal, Err: err}
}

// Get returns the value and whether it is present.
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.Outcome == OutcomeOK
}
