package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) PingContext(ctx context.Context) error {
	return p.err
}

func TestHealthHandler_OK(t *testing.T) {
	h := NewHealthHandler(&stubPinger{})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if decodeJSONMap(t, w)["ok"] != true {
		t.Error("ok must be true")
	}
}

func TestHealthHandler_DBDown(t *testing.T) {
	h := NewHealthHandler(&stubPinger{err: errors.New("connection refused")})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}
