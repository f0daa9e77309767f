package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want int
	}{
		{"missing parameter", MissingParameter("q is required"), http.StatusBadRequest},
		{"invalid coordinate", InvalidCoordinate("bad lat"), http.StatusBadRequest},
		{"location not found", LocationNotFound("nothing"), http.StatusNotFound},
		{"upstream unavailable", UpstreamUnavailable("down", errors.New("dial tcp")), http.StatusBadGateway},
		{"upstream malformed", UpstreamMalformed("garbage", nil), http.StatusInternalServerError},
		{"missing credential", MissingCredential("no key"), http.StatusInternalServerError},
		{"no model", NoModelAvailable("empty"), http.StatusInternalServerError},
		{"bad request", BadRequest("bad input"), http.StatusBadRequest},
		{"internal", Internal("boom"), http.StatusInternalServerError},
		{"unknown kind", New(KindUnknown, "???"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.HTTPStatus(); got != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, got)
			}
		})
	}
}

func TestGetCodeThroughWrapping(t *testing.T) {
	base := LocationNotFound("no results")
	wrapped := fmt.Errorf("search: %w", base)

	if GetCode(wrapped) != CodeLocationNotFound {
		t.Fatalf("expected code %s, got %q", CodeLocationNotFound, GetCode(wrapped))
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatal("expected wrapped error to keep its kind")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := UpstreamUnavailable("nominatim unavailable", errors.New("timeout")).WithOp("reverse")

	if err.Error() != "reverse: nominatim unavailable: timeout" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
