package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pitchboard/internal/middleware"
	"github.com/hitoshi/pitchboard/internal/model"
	"github.com/hitoshi/pitchboard/internal/pitch"
)

// --- モック定義 ---

type mockPitchService struct {
	createFn func(ctx context.Context, userID string, input pitch.CreateInput) (*model.Pitch, error)
	listFn   func(ctx context.Context, userID string) ([]*model.Pitch, error)
	getFn    func(ctx context.Context, userID, pitchID string) (*model.Pitch, error)
	updateFn func(ctx context.Context, userID, pitchID string, input pitch.UpdateInput) (*model.Pitch, error)
	deleteFn func(ctx context.Context, userID, pitchID string) error
}

func (m *mockPitchService) Create(ctx context.Context, userID string, input pitch.CreateInput) (*model.Pitch, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, input)
	}
	return nil, nil
}

func (m *mockPitchService) List(ctx context.Context, userID string) ([]*model.Pitch, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockPitchService) Get(ctx context.Context, userID, pitchID string) (*model.Pitch, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, pitchID)
	}
	return nil, nil
}

func (m *mockPitchService) Update(ctx context.Context, userID, pitchID string, input pitch.UpdateInput) (*model.Pitch, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, pitchID, input)
	}
	return nil, nil
}

func (m *mockPitchService) Delete(ctx context.Context, userID, pitchID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, pitchID)
	}
	return nil
}

var _ PitchServiceInterface = (*mockPitchService)(nil)

// newPitchTestRouter はプリンシパル注入済みのテスト用ルーターを構築する。
func newPitchTestRouter(svc PitchServiceInterface, principal *model.User) http.Handler {
	h := NewPitchHandler(svc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if principal != nil {
				req = req.WithContext(middleware.ContextWithPrincipal(req.Context(), principal))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/pitches", func(r chi.Router) {
		r.Get("/", h.ListPitches)
		r.Post("/", h.CreatePitch)
		r.Get("/{id}", h.GetPitch)
		r.Put("/{id}", h.UpdatePitch)
		r.Delete("/{id}", h.DeletePitch)
	})
	return r
}

func testPrincipal() *model.User {
	return &model.User{ID: "user-1", Email: "user@example.com", Role: model.RoleUser}
}

// --- テスト ---

func TestListPitches_ReturnsOwnedPitchesInEnvelope(t *testing.T) {
	svc := &mockPitchService{
		listFn: func(ctx context.Context, userID string) ([]*model.Pitch, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return []*model.Pitch{
				{ID: "pitch-1", UserID: userID, Title: "ピッチ1", Status: model.PitchStatusDraft, CreatedAt: time.Now()},
			}, nil
		},
	}
	router := newPitchTestRouter(svc, testPrincipal())

	req := httptest.NewRequest(http.MethodGet, "/api/pitches", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Success bool            `json:"success"`
		Data    []pitchResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Success {
		t.Error("expected success=true")
	}
	if len(body.Data) != 1 {
		t.Fatalf("data count = %d, want 1", len(body.Data))
	}
	if body.Data[0].ID != "pitch-1" {
		t.Errorf("pitch ID = %q, want %q", body.Data[0].ID, "pitch-1")
	}
}

func TestListPitches_NoPitches_ReturnsEmptyArray(t *testing.T) {
	svc := &mockPitchService{
		listFn: func(ctx context.Context, userID string) ([]*model.Pitch, error) {
			return nil, nil
		},
	}
	router := newPitchTestRouter(svc, testPrincipal())

	req := httptest.NewRequest(http.MethodGet, "/api/pitches", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 空の場合もnullではなく[]を返すこと
	if !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty data array", w.Body.String())
	}
}

func TestCreatePitch_ValidBody_Returns201(t *testing.T) {
	svc := &mockPitchService{
		createFn: func(ctx context.Context, userID string, input pitch.CreateInput) (*model.Pitch, error) {
			return &model.Pitch{
				ID:          "new-pitch-id",
				UserID:      userID,
				Title:       input.Title,
				Description: input.Description,
				Content:     input.Content,
				Status:      model.PitchStatusDraft,
			}, nil
		},
	}
	router := newPitchTestRouter(svc, testPrincipal())

	reqBody := `{"title":"新規ピッチ","description":"概要","content":"本文"}`
	req := httptest.NewRequest(http.MethodPost, "/api/pitches", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var body struct {
		Success bool          `json:"success"`
		Data    pitchResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Data.Title != "新規ピッチ" {
		t.Errorf("title = %q, want %q", body.Data.Title, "新規ピッチ")
	}
	if body.Data.Status != "draft" {
		t.Errorf("status = %q, want draft", body.Data.Status)
	}
}

func TestCreatePitch_EmptyTitle_Returns400(t *testing.T) {
	svc := &mockPitchService{
		createFn: func(ctx context.Context, userID string, input pitch.CreateInput) (*model.Pitch, error) {
			return nil, model.NewValidationError("title", "タイトルは必須です")
		},
	}
	router := newPitchTestRouter(svc, testPrincipal())

	req := httptest.NewRequest(http.MethodPost, "/api/pitches", strings.NewReader(`{"title":""}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Success {
		t.Error("success should be false")
	}
	if body.Code != "VALIDATION_FAILED" {
		t.Errorf("code = %q, want VALIDATION_FAILED", body.Code)
	}
}

func TestCreatePitch_MalformedJSON_Returns400(t *testing.T) {
	router := newPitchTestRouter(&mockPitchService{}, testPrincipal())

	req := httptest.NewRequest(http.MethodPost, "/api/pitches", strings.NewReader(`{not valid json`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestGetPitch_OwnedPitch_ReturnsPitch(t *testing.T) {
	svc := &mockPitchService{
		getFn: func(ctx context.Context, userID, pitchID string) (*model.Pitch, error) {
			if pitchID != "pitch-1" {
				t.Errorf("pitchID = %q, want %q", pitchID, "pitch-1")
			}
			return &model.Pitch{ID: pitchID, UserID: userID, Title: "自分のピッチ", Status: model.PitchStatusDraft}, nil
		},
	}
	router := newPitchTestRouter(svc, testPrincipal())

	req := httptest.NewRequest(http.MethodGet, "/api/pitches/pitch-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestGetPitch_NotOwned_Returns404(t *testing.T) {
	svc := &mockPitchService{
		getFn: func(ctx context.Context, userID, pitchID string) (*model.Pitch, error) {
			// 他ユーザー所有と不存在は区別されない
			return nil, model.NewPitchNotFoundError(pitchID)
		},
	}
	router := newPitchTestRouter(svc, testPrincipal())

	req := httptest.NewRequest(http.MethodGet, "/api/pitches/someone-elses-pitch", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != "PITCH_NOT_FOUND" {
		t.Errorf("code = %q, want PITCH_NOT_FOUND", body.Code)
	}
}

func TestUpdatePitch_PartialBody_PassesPointerFields(t *testing.T) {
	var gotInput pitch.UpdateInput
	svc := &mockPitchService{
		updateFn: func(ctx context.Context, userID, pitchID string, input pitch.UpdateInput) (*model.Pitch, error) {
			gotInput = input
			return &model.Pitch{ID: pitchID, UserID: userID, Title: *input.Title, Status: model.PitchStatusDraft}, nil
		},
	}
	router := newPitchTestRouter(svc, testPrincipal())

	req := httptest.NewRequest(http.MethodPut, "/api/pitches/pitch-1", strings.NewReader(`{"title":"更新後"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	if gotInput.Title == nil || *gotInput.Title != "更新後" {
		t.Errorf("title = %v, want 更新後", gotInput.Title)
	}
	// 省略したフィールドはnilで渡ること
	if gotInput.Description != nil || gotInput.Content != nil || gotInput.Status != nil {
		t.Error("omitted fields should remain nil")
	}
}

func TestUpdatePitch_NotOwned_Returns404(t *testing.T) {
	svc := &mockPitchService{
		updateFn: func(ctx context.Context, userID, pitchID string, input pitch.UpdateInput) (*model.Pitch, error) {
			return nil, model.NewPitchNotFoundError(pitchID)
		},
	}
	router := newPitchTestRouter(svc, testPrincipal())

	req := httptest.NewRequest(http.MethodPut, "/api/pitches/other", strings.NewReader(`{"title":"x"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestDeletePitch_Owned_ReturnsSuccessMessage(t *testing.T) {
	var deletedID string
	svc := &mockPitchService{
		deleteFn: func(ctx context.Context, userID, pitchID string) error {
			deletedID = pitchID
			return nil
		},
	}
	router := newPitchTestRouter(svc, testPrincipal())

	req := httptest.NewRequest(http.MethodDelete, "/api/pitches/pitch-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if deletedID != "pitch-1" {
		t.Errorf("deleted pitch = %q, want %q", deletedID, "pitch-1")
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["success"] != true {
		t.Error("expected success=true")
	}
}

func TestDeletePitch_NotOwned_Returns404(t *testing.T) {
	svc := &mockPitchService{
		deleteFn: func(ctx context.Context, userID, pitchID string) error {
			return model.NewPitchNotFoundError(pitchID)
		},
	}
	router := newPitchTestRouter(svc, testPrincipal())

	req := httptest.NewRequest(http.MethodDelete, "/api/pitches/other", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestPitchHandlers_NoPrincipal_Returns401(t *testing.T) {
	router := newPitchTestRouter(&mockPitchService{}, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/pitches"},
		{http.MethodPost, "/api/pitches"},
		{http.MethodGet, "/api/pitches/pitch-1"},
		{http.MethodPut, "/api/pitches/pitch-1"},
		{http.MethodDelete, "/api/pitches/pitch-1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Result().StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
			}
		})
	}
}
