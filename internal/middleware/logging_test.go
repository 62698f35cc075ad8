package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRecorderCapturesStatus(t *testing.T) {
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gallery/categories", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status to pass through, got %d", rec.Code)
	}
}

func TestStatusRecorderDefaultsTo200(t *testing.T) {
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("body without explicit WriteHeader"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected implicit 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected the body to pass through")
	}
}

func TestStatusRecorderCountsBytes(t *testing.T) {
	sr := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	sr.Write([]byte("12345"))
	sr.Write([]byte("678"))

	if sr.bytes != 8 {
		t.Errorf("expected 8 bytes recorded, got %d", sr.bytes)
	}
	if sr.status != http.StatusOK {
		t.Errorf("expected implicit 200, got %d", sr.status)
	}
}
