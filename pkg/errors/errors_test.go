package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidDataset, "test message: %s", "value")

	if err.Code != ErrCodeInvalidDataset {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidDataset)
	}
	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_DATASET: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeStorage, cause, "failed to save")

	if err.Code != ErrCodeStorage {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStorage)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got, want := err.Error(), "STORAGE_ERROR: failed to save: underlying error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"different code", New(ErrCodeInvalidInput, "test"), ErrCodeNotFound, false},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
		{"wrapped in fmt", wrapf(New(ErrCodeSessionNotFound, "gone")), ErrCodeSessionNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func wrapf(err error) error {
	return &wrapper{err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "outer: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }

func TestGetCodeAndUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidOptions, "ratio must be in (0, 1)")
	if GetCode(err) != ErrCodeInvalidOptions {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if UserMessage(err) != "ratio must be in (0, 1)" {
		t.Errorf("UserMessage() = %q", UserMessage(err))
	}

	plain := errors.New("boom")
	if GetCode(plain) != "" {
		t.Errorf("GetCode(plain) = %v, want empty", GetCode(plain))
	}
	if UserMessage(plain) != "boom" {
		t.Errorf("UserMessage(plain) = %q", UserMessage(plain))
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidDataset, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidName, "x"), http.StatusBadRequest},
		{New(ErrCodeSessionNotFound, "x"), http.StatusNotFound},
		{New(ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{New(ErrCodeStorage, "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "arabidopsis", false},
		{"with dots and dashes", "at-vs-bd.v2", false},
		{"empty", "", true},
		{"traversal", "../etc", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"colon", "user:1", true},
		{"control", "a\x00b", true},
		{"too long", string(make([]byte, 200)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("expected INVALID_NAME, got %v", GetCode(err))
			}
		})
	}
}
