package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"cbc-rag/internal/storage"
	storage_mocks "cbc-rag/internal/storage/mocks"
)

func newHistoryRouter(store storage.AnalysisStore) http.Handler {
	h := NewHistoryHandler(store)
	r := chi.NewRouter()
	r.Get("/api/v1/history", h.List)
	r.Get("/api/v1/history/{id}", h.Get)
	return r
}

func TestHistoryHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage_mocks.NewMockAnalysisStore(ctrl)
	store.EXPECT().
		ListRecent(gomock.Any(), 20).
		Return([]*storage.AnalysisRecord{
			{ID: "newest", Query: "q1", Method: "semantic"},
			{ID: "older", Query: "q2", Method: "keyword", Degraded: true},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	newHistoryRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp HistoryListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Analyses) != 2 || resp.Analyses[0].ID != "newest" {
		t.Errorf("analyses = %v", resp.Analyses)
	}
}

func TestHistoryHandler_List_CustomLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage_mocks.NewMockAnalysisStore(ctrl)
	store.EXPECT().ListRecent(gomock.Any(), 5).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=5", nil)
	rec := httptest.NewRecorder()
	newHistoryRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHistoryHandler_List_InvalidLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage_mocks.NewMockAnalysisStore(ctrl)

	for _, limit := range []string{"0", "101", "-3", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/history?limit="+limit, nil)
		rec := httptest.NewRecorder()
		newHistoryRouter(store).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestHistoryHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage_mocks.NewMockAnalysisStore(ctrl)
	store.EXPECT().
		GetByID(gomock.Any(), "abc-123").
		Return(&storage.AnalysisRecord{ID: "abc-123", Query: "anemia"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history/abc-123", nil)
	rec := httptest.NewRecorder()
	newHistoryRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp storage.AnalysisRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.ID != "abc-123" {
		t.Errorf("ID = %q", resp.ID)
	}
}

func TestHistoryHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage_mocks.NewMockAnalysisStore(ctrl)
	store.EXPECT().
		GetByID(gomock.Any(), "missing").
		Return(nil, storage.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history/missing", nil)
	rec := httptest.NewRecorder()
	newHistoryRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
