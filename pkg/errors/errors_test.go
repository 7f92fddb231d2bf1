package errors

import (
	"errors"
	"fmt"
	"testing"
)

type mismatch struct{}

func (mismatch) Error() string { return "checksum differs" }
func (mismatch) Code() Code    { return ErrCodeGraphMismatch }

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeInvalidInput, "tolerance %d", -1), "INVALID_INPUT: tolerance -1"},
		{"wrapped", Wrap(ErrCodeStore, errors.New("disk full"), "write %s", "k"), "STORE_ERROR: write k: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrCodeStore, cause, "read snapshot")
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() should return the cause")
	}
}

func TestIsAndGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("x"), ""},
		{"structured", New(ErrCodeMalformedGraph, "x"), ErrCodeMalformedGraph},
		{"fmt wrapped", fmt.Errorf("build: %w", New(ErrCodeTimeout, "x")), ErrCodeTimeout},
		{"outermost wins", Wrap(ErrCodeStore, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeStore},
		{"coder", mismatch{}, ErrCodeGraphMismatch},
		{"coder in chain", fmt.Errorf("load: %w", mismatch{}), ErrCodeGraphMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false, want true", tt.code)
			}
			if Is(tt.err, "") {
				t.Error("Is(\"\") should always be false")
			}
		})
	}
}
