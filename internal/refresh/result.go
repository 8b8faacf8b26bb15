package refresh

import "fmt"

// FailureKind classifies a failed backend operation.
type FailureKind string

const (
	// FetchFailure is a failed read; it is logged and the value falls back to empty.
	FetchFailure FailureKind = "fetch_failure"
	// MutationFailure is a failed create; it is surfaced to the user.
	MutationFailure FailureKind = "mutation_failure"
	// DeleteFailure is a failed delete; it is logged only.
	DeleteFailure FailureKind = "delete_failure"
)

// Result is the outcome of a backend operation: a value or a classified failure.
type Result[T any] struct {
	value T
	kind  FailureKind
	err   error
}

func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

func Failure[T any](kind FailureKind, err error) Result[T] {
	return Result[T]{kind: kind, err: err}
}

func (r Result[T]) OK() bool {
	return r.err == nil
}

// Value returns the value and whether the operation succeeded.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.err == nil
}

// ValueOr returns the value, or fallback on failure.
func (r Result[T]) ValueOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

func (r Result[T]) Kind() FailureKind {
	return r.kind
}

// Err returns the failure reason, nil on success.
func (r Result[T]) Err() error {
	if r.err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", r.kind, r.err)
}
