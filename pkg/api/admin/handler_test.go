package admin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Request validation runs before any pipeline work, so these paths are
// exercised with an empty handler.

func TestBatchRejectsGet(t *testing.T) {
	h := NewHandler(nil)
	rec := httptest.NewRecorder()
	h.HandleImportFilings(rec, httptest.NewRequest(http.MethodGet, "/api/admin/import-filings", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestBatchRejectsBadBody(t *testing.T) {
	h := NewHandler(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/extract-guidance", strings.NewReader("not json"))
	h.HandleExtractGuidance(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBatchRejectsEmptyTickers(t *testing.T) {
	h := NewHandler(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/extract-guidance", strings.NewReader(`{"tickers": []}`))
	h.HandleExtractGuidance(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBatchOptionsPreflight(t *testing.T) {
	h := NewHandler(nil)
	rec := httptest.NewRecorder()
	h.HandlePullActuals(rec, httptest.NewRequest(http.MethodOptions, "/api/admin/pull-actuals", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS headers on preflight")
	}
}

func TestResolveRequiresTicker(t *testing.T) {
	h := NewHandler(nil)
	rec := httptest.NewRecorder()
	h.HandleResolve(rec, httptest.NewRequest(http.MethodGet, "/api/admin/resolve", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
