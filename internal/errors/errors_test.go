package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  *AppError
		code ErrorCode
		http int
	}{
		{"validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"missing field", MissingField("webhook_url"), ErrCodeMissingField, http.StatusBadRequest},
		{"unsupported source", UnsupportedSource("https://vimeo.com/1"), ErrCodeUnsupportedSource, http.StatusBadRequest},
		{"unauthorized", Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized},
		{"internal", Internal(stderrors.New("boom")), ErrCodeInternal, http.StatusInternalServerError},
		{"external", ExternalServiceError("whisper", stderrors.New("down")), ErrCodeExternalService, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Fatalf("Code = %s, want %s", tc.err.Code, tc.code)
			}
			if tc.err.HTTPStatus != tc.http {
				t.Fatalf("HTTPStatus = %d, want %d", tc.err.HTTPStatus, tc.http)
			}
		})
	}
}

func TestUnauthorizedDefaultMessage(t *testing.T) {
	if got := Unauthorized("").Message; got != "Invalid or missing API key" {
		t.Fatalf("Message = %q", got)
	}
	if got := Unauthorized("token expired").Message; got != "token expired" {
		t.Fatalf("Message = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Internal(cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("errors.Is does not see the cause")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if got, ok := AsAppError(wrapped); !ok || got != err {
		t.Fatalf("AsAppError(%v) = %v, %v", wrapped, got, ok)
	}
}

func TestToResponse(t *testing.T) {
	err := UnsupportedSource("https://vimeo.com/1")
	resp := err.ToResponse()

	if resp.Error.Code != ErrCodeUnsupportedSource {
		t.Fatalf("response code = %s", resp.Error.Code)
	}
	if resp.Error.Message != err.Message {
		t.Fatalf("response message = %q", resp.Error.Message)
	}
	if resp.Error.Details["video_url"] != "https://vimeo.com/1" {
		t.Fatalf("response details = %v", resp.Error.Details)
	}
}

func TestWithDetail(t *testing.T) {
	err := Validation("bad").WithDetail("field", "video_url")
	if err.Details["field"] != "video_url" {
		t.Fatalf("Details = %v", err.Details)
	}
}
