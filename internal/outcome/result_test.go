package outcome

import (
	"errors"
	"testing"
)

func TestResultKinds(t *testing.T) {
	if r := Success("https://x"); !r.OK() || r.Value != "https://x" {
		t.Errorf("Success() = %+v", r)
	}
	if r := NotFound(); r.OK() || r.Kind != KindNotFound {
		t.Errorf("NotFound() = %+v", r)
	}

	reason := errors.New("boom")
	r := Failure(reason)
	if r.OK() || !errors.Is(r.Reason, reason) {
		t.Errorf("Failure() = %+v", r)
	}
	if r.String() != "failure(boom)" {
		t.Errorf("String() = %q", r.String())
	}
}

func TestFailureNilReason(t *testing.T) {
	r := Failure(nil)
	if r.Reason == nil {
		t.Fatal("Failure(nil) should carry a reason")
	}
}
