package loom

import (
	"errors"
	"testing"
)

func TestEngineErrorIsMatchesByKind(t *testing.T) {
	err := newErr(KindNoSuchBuffer, ScopeBuffer, "buffer xyz not found", nil)
	if !errors.Is(err, ErrNoSuchBuffer) {
		t.Error("errors.Is should match on Kind regardless of Message")
	}
	if errors.Is(err, ErrNoSuchMarker) {
		t.Error("errors.Is should not match a different Kind")
	}
}

func TestEngineErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := newErr(KindIoError, ScopeBuffer, "read failed", cause)
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the wrapped cause")
	}
}

func TestEngineErrorMessageFormat(t *testing.T) {
	err := newErr(KindInvalidOffset, ScopeBuffer, "offset out of range", nil)
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() should not be empty")
	}
}
