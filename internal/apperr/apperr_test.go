package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"direct", New(KindEmptyResponse, "extract", nil), KindEmptyResponse},
		{"wrapped", fmt.Errorf("generate: %w", New(KindMalformedPayload, "", errors.New("bad"))), KindMalformedPayload},
		{"unclassified", errors.New("dial tcp: refused"), KindBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessage_FixedPerKind(t *testing.T) {
	err := fmt.Errorf("grade: %w", New(KindEmptyResponse, "assistant", nil))
	if got := Message(err); got != "Received an empty response from the AI." {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestMessage_BackendSurfacesCause(t *testing.T) {
	err := New(KindBackend, "terms_plan", errors.New("Request failed with status 500"))
	if got := Message(err); got != "Request failed with status 500" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	if HTTPStatus(KindInvalidInput) != http.StatusBadRequest {
		t.Error("invalid input should be 400")
	}
	if HTTPStatus(KindMissingCredential) != http.StatusUnauthorized {
		t.Error("missing credential should be 401")
	}
	if HTTPStatus(KindUnexpectedShape) != http.StatusBadGateway {
		t.Error("unexpected shape should be 502")
	}
}

func TestErrorString(t *testing.T) {
	err := New(KindUnexpectedShape, "decode mcq", errors.New("options must have 4 entries"))
	want := "decode mcq: unexpected_shape: options must have 4 entries"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestMessage_UserWordedOverridesKind(t *testing.T) {
	err := Userf(KindUnexpectedShape, "planner.LessonPlan", "Lesson plans not found in response.")
	if got := Message(err); got != "Lesson plans not found in response." {
		t.Fatalf("unexpected message %q", got)
	}
	if KindOf(err) != KindUnexpectedShape {
		t.Fatalf("expected kind to be kept, got %s", KindOf(err))
	}
}

func TestWrap_KeepsExistingKind(t *testing.T) {
	inner := New(KindMissingCredential, "credential", nil)
	err := Wrap(KindBackend, "assessment.Generate", inner)
	if KindOf(err) != KindMissingCredential {
		t.Fatalf("expected missing credential, got %s", KindOf(err))
	}

	plain := Wrap(KindBackend, "assessment.Generate", errors.New("connection reset"))
	if KindOf(plain) != KindBackend {
		t.Fatalf("expected backend failure, got %s", KindOf(plain))
	}
	if Wrap(KindBackend, "op", nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
