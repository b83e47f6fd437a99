// Package outcome holds the result type every backend call returns.
package outcome

import "fmt"

// Kind discriminates a Result.
type Kind int

const (
	KindSuccess Kind = iota
	KindNotFound
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindNotFound:
		return "not_found"
	default:
		return "failure"
	}
}

// Result is Success(value), NotFound, or Failure(reason).
// Value carries a URL or a row id depending on the backend.
type Result struct {
	Kind   Kind
	Value  string
	Reason error
}

// Success returns a successful result carrying value.
func Success(value string) Result {
	return Result{Kind: KindSuccess, Value: value}
}

// NotFound returns a typed miss.
func NotFound() Result {
	return Result{Kind: KindNotFound}
}

// Failure returns a failed result with the reason attached.
func Failure(reason error) Result {
	if reason == nil {
		reason = fmt.Errorf("unknown failure")
	}
	return Result{Kind: KindFailure, Reason: reason}
}

// Failuref is Failure with a formatted reason.
func Failuref(format string, args ...interface{}) Result {
	return Failure(fmt.Errorf(format, args...))
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

func (r Result) String() string {
	switch r.Kind {
	case KindSuccess:
		return "success(" + r.Value + ")"
	case KindNotFound:
		return "not_found"
	default:
		return "failure(" + r.Reason.Error() + ")"
	}
}
