package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fiap/signup-service/pkg/correlation"
)

func TestRequestIDPropagatesInboundHeaderVerbatim(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = correlation.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlation.Header, "corr-from-gateway")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "corr-from-gateway" {
		t.Fatalf("expected inbound id on context, got %q", seen)
	}
	if got := rec.Header().Get(correlation.Header); got != "corr-from-gateway" {
		t.Fatalf("expected inbound id echoed on response, got %q", got)
	}
}

func TestRequestIDGeneratesWhenHeaderAbsent(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = correlation.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("expected a generated correlation id on the context")
	}
	if got := rec.Header().Get(correlation.Header); got != seen {
		t.Fatalf("response header %q does not match context id %q", got, seen)
	}
}
