package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	err := Timeoutf("slow")
	if CodeOf(err) != ErrorCodeTimeout {
		t.Fatalf("CodeOf = %v, want timeout", CodeOf(err))
	}
	if CodeOf(fmt.Errorf("plain")) != ErrorCodeUnknown {
		t.Fatalf("plain error should map to unknown")
	}
	if CodeOf(nil) != ErrorCodeUnknown {
		t.Fatalf("nil should map to unknown")
	}
}

func TestWrapPreservesRootAndCode(t *testing.T) {
	root := fmt.Errorf("root cause")
	err := Wrapf(root, ErrorCodeUpstream, "calling upstream")

	if CodeOf(err) != ErrorCodeUpstream {
		t.Fatalf("CodeOf = %v", CodeOf(err))
	}
	if !errors.Is(err, root) {
		t.Fatalf("wrapped error lost its root")
	}
	if Root(err) != root {
		t.Fatalf("Root = %v, want root cause", Root(err))
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Timeoutf("x"), http.StatusGatewayTimeout},
		{Upstreamf("x"), http.StatusBadGateway},
		{TooManyRequestsf("x"), http.StatusTooManyRequests},
		{InvalidArgf("x"), http.StatusUnprocessableEntity},
		{NotFoundf("x"), http.StatusNotFound},
		{Unauthorizedf("x"), http.StatusUnauthorized},
		{Forbiddenf("x"), http.StatusForbidden},
		{JSONErrf("x"), http.StatusBadRequest},
		{Configf("x"), http.StatusInternalServerError},
		{Unavailablef("x"), http.StatusServiceUnavailable},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(Timeoutf("x")) || !Retryable(Unavailablef("x")) {
		t.Fatalf("timeout and unavailable should be retryable")
	}
	if Retryable(Upstreamf("x")) || Retryable(InvalidArgf("x")) {
		t.Fatalf("upstream and invalid argument are not retryable")
	}
}

func TestIsCode(t *testing.T) {
	err := Wrapf(Timeoutf("inner"), ErrorCodeUpstream, "outer")
	if !IsCode(err, ErrorCodeUpstream) {
		t.Fatalf("outer code should win")
	}
}

func TestToWire(t *testing.T) {
	err := Newf(ErrorCodeValidation, "bad field")
	w := WireFrom(err)
	if w.Code != ErrorCodeValidation || w.Message != "bad field" {
		t.Fatalf("wire = %+v", w)
	}
}
