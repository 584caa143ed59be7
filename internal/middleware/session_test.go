package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/pitchboard/internal/model"
)

// --- モック定義 ---

type mockSessionFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

var _ SessionFinder = (*mockSessionFinder)(nil)
var _ UserFinder = (*mockUserFinder)(nil)

// --- テスト ---

func TestSessionMiddleware_ValidSession_InjectsPrincipal(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id == "valid-session-id" {
				return &model.Session{
					ID:        "valid-session-id",
					UserID:    "user-123",
					ExpiresAt: time.Now().Add(1 * time.Hour),
				}, nil
			}
			return nil, nil
		},
	}
	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "user@example.com", Role: model.RoleUser}, nil
		},
	}

	mw := NewSessionMiddleware(sessions, users)

	var capturedPrincipal *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := PrincipalFromContext(r.Context())
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		capturedPrincipal = principal
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/pitches", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session-id"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if capturedPrincipal == nil {
		t.Fatal("expected principal in context")
	}
	if capturedPrincipal.ID != "user-123" {
		t.Errorf("principal ID = %q, want %q", capturedPrincipal.ID, "user-123")
	}
}

func TestSessionMiddleware_NoSessionCookie_Returns401(t *testing.T) {
	mw := NewSessionMiddleware(&mockSessionFinder{}, &mockUserFinder{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/pitches", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Success {
		t.Error("success should be false")
	}
	if body.Code != "UNAUTHORIZED" {
		t.Errorf("code = %q, want UNAUTHORIZED", body.Code)
	}
}

func TestSessionMiddleware_UnknownToken_Returns401(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			// 不明なトークンはnilで返る
			return nil, nil
		},
	}
	mw := NewSessionMiddleware(sessions, &mockUserFinder{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/pitches", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "unknown-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestSessionMiddleware_SessionLookupError_Returns500(t *testing.T) {
	// ストレージ障害は未認証（401）ではなく一時的な失敗（500）として返す
	sessions := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, errors.New("storage timeout")
		},
	}
	mw := NewSessionMiddleware(sessions, &mockUserFinder{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/pitches", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "some-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", body.Code)
	}
}

func TestSessionMiddleware_UserLookupError_Returns500(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, UserID: "user-123", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, errors.New("storage timeout")
		},
	}
	mw := NewSessionMiddleware(sessions, users)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/pitches", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}

func TestSessionMiddleware_UserMissing_Returns401(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, UserID: "ghost-user", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			// セッションは有効だがユーザーが存在しない
			return nil, nil
		},
	}
	mw := NewSessionMiddleware(sessions, users)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/pitches", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "orphan-session"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestRoleMiddleware_AllowedRole_Passes(t *testing.T) {
	mw := NewRoleMiddleware(model.RoleAdmin)

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	admin := &model.User{ID: "admin-1", Role: model.RoleAdmin}
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), admin))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("handler should be called for allowed role")
	}
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRoleMiddleware_DisallowedRole_Returns403(t *testing.T) {
	mw := NewRoleMiddleware(model.RoleAdmin)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	user := &model.User{ID: "user-1", Role: model.RoleUser}
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), user))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != "FORBIDDEN" {
		t.Errorf("code = %q, want FORBIDDEN", body.Code)
	}
}

func TestRoleMiddleware_NoPrincipal_Returns401(t *testing.T) {
	mw := NewRoleMiddleware(model.RoleAdmin)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestPrincipalFromContext_NoPrincipal_ReturnsError(t *testing.T) {
	_, err := PrincipalFromContext(context.Background())
	if err == nil {
		t.Fatal("expected error when no principal in context")
	}
}
