package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsMatchesByCode(t *testing.T) {
	err := NotFound("mentor not found")
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected NotFound to match sentinel")
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatal("NotFound should not match Forbidden")
	}

	wrapped := fmt.Errorf("request: %w", CapacityExceeded("mentor is full"))
	if !errors.Is(wrapped, ErrCapacityExceeded) {
		t.Fatal("expected wrapped error to match")
	}
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Unavailable(cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if Message(err) != "store unavailable" {
		t.Errorf("message leaked cause: %q", Message(err))
	}
}

func TestCodeMappings(t *testing.T) {
	tests := []struct {
		code Code
		grpc codes.Code
		http int
	}{
		{CodeNotFound, codes.NotFound, http.StatusNotFound},
		{CodeForbidden, codes.PermissionDenied, http.StatusForbidden},
		{CodeConflict, codes.AlreadyExists, http.StatusConflict},
		{CodeCapacityExceeded, codes.ResourceExhausted, http.StatusConflict},
		{CodeValidation, codes.InvalidArgument, http.StatusBadRequest},
		{CodeUnavailable, codes.Unavailable, http.StatusServiceUnavailable},
		{CodeUnauthenticated, codes.Unauthenticated, http.StatusUnauthorized},
		{Code("other"), codes.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.GRPCCode(); got != tt.grpc {
				t.Errorf("grpc: got %v want %v", got, tt.grpc)
			}
			if got := tt.code.HTTPStatus(); got != tt.http {
				t.Errorf("http: got %d want %d", got, tt.http)
			}
		})
	}
}

func TestToStatus(t *testing.T) {
	if ToStatus(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	s, _ := status.FromError(ToStatus(Forbidden("only the mentor can decide")))
	if s.Code() != codes.PermissionDenied {
		t.Errorf("expected PermissionDenied, got %v", s.Code())
	}
	if s.Message() != "only the mentor can decide" {
		t.Errorf("message: %q", s.Message())
	}
	s, _ = status.FromError(ToStatus(errors.New("boom")))
	if s.Code() != codes.Internal {
		t.Errorf("expected Internal, got %v", s.Code())
	}
}
