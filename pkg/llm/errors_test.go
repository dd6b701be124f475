package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{"unauthorized", errors.New("error, status code: 401, message: Unauthorized"), ErrorTypeAuth, false},
		{"model missing", errors.New("the model `nope` does not exist"), ErrorTypeModel, false},
		{"endpoint 404", errors.New("error, status code: 404"), ErrorTypeEndpoint, false},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrorTypeEndpoint, true},
		{"rate limited", errors.New("error, status code: 429, message: rate limit exceeded"), ErrorTypeUnknown, true},
		{"server error", errors.New("error, status code: 503"), ErrorTypeEndpoint, true},
		{"timeout", errors.New("context deadline exceeded"), ErrorTypeEndpoint, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if got.Type != tt.wantType {
				t.Errorf("type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error should wrap the cause")
			}
		})
	}
}

func TestClassifyError_PassesThroughStructured(t *testing.T) {
	orig := NewError(ErrorTypeAuth, "authentication failed", false, errors.New("HTTP 401"))
	wrapped := fmt.Errorf("generate: %w", orig)

	got := ClassifyError(wrapped)
	if got != orig {
		t.Errorf("expected the original *Error back, got %+v", got)
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if got := ClassifyError(nil); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
