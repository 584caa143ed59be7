// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/pitchboard/internal/auth"
	"github.com/hitoshi/pitchboard/internal/middleware"
	"github.com/hitoshi/pitchboard/internal/model"
)

const (
	sessionCookieName = "session_id"
	oauthStateCookie  = "oauth_state"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	LogoutAll(ctx context.Context, userID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthMetrics はログイン結果の記録に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type AuthMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordSessionRevoked()
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics AuthMetrics // nilの場合は記録しない
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics AuthMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	Provider  string    `json:"provider"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`
}

// toUserResponse はドメインのUserをAPIレスポンス型に変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Picture:   user.Picture,
		Provider:  user.Provider,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}

// Login はGoogle OAuthフローを開始する。
// GET /auth/google/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.service.GetLoginURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback はOAuthコールバックを処理する。
// GET /auth/google/callback?code=xxx&state=yyy
// 成功時はセッションCookieを設定してアプリへリダイレクトする。
// 失敗時はエラー種別を内部ログにのみ記録し、
// ログイン失敗ページ（/login?error=auth_failed）へリダイレクトする。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("query_state", state),
		)
		h.redirectLoginFailure(w, r)
		return
	}

	// stateクッキーを削除
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 2. 認可コードの取得
	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing authorization code")
		h.redirectLoginFailure(w, r)
		return
	}

	// 3. 認証処理
	session, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			slog.Warn("oauth authentication failed")
		} else {
			slog.Error("oauth callback failed", slog.String("error", err.Error()))
		}
		if h.metrics != nil {
			h.metrics.RecordLoginFailure()
		}
		h.redirectLoginFailure(w, r)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}

	// 4. セッションCookieを設定（HTTP Only）
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 5. フロントエンドにリダイレクト
	http.Redirect(w, r, h.config.BaseURL+"/dashboard", http.StatusTemporaryRedirect)
}

// redirectLoginFailure はログイン失敗ページへリダイレクトする。
// 内部エラーの詳細はブラウザへ渡さない。
func (h *AuthHandler) redirectLoginFailure(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.config.BaseURL+"/login?error=auth_failed", http.StatusTemporaryRedirect)
}

// Logout はセッションを破棄し、Cookieをクリアする。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// セッションCookieの取得
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		// セッションをDBから削除
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		} else if h.metrics != nil {
			h.metrics.RecordSessionRevoked()
		}
	}

	// セッションCookieをクリア
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "ログアウトしました。",
	})
}

// LogoutAll は現在のユーザーの全セッションを破棄し、Cookieをクリアする。
// 他のデバイスのログイン状態もすべて無効になる。
// セッションミドルウェアの内側に配置すること。
// POST /api/auth/logout-all
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.LogoutAll(r.Context(), principal.ID); err != nil {
		slog.Error("failed to revoke all sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", principal.ID),
		)
		middleware.WriteInternalServerError(w)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSessionRevoked()
	}

	// 現在のデバイスのセッションCookieもクリアする
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "すべてのセッションからログアウトしました。",
	})
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		writeUnauthorized(w)
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), cookie.Value)
	if err != nil {
		// 未認証（user == nil）とは異なり、ストレージ障害は500で返す
		slog.Error("failed to get current user", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if user == nil {
		writeUnauthorized(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"user":    toUserResponse(user),
	})
}

// Status は認証状態を返す。未認証でも失敗しない。
// GET /auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	var user *model.User

	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		user, err = h.service.GetCurrentUser(r.Context(), cookie.Value)
		if err != nil {
			// ストレージ障害でもステータス確認自体は成功させ、未認証として返す
			slog.Error("failed to resolve session for status", slog.String("error", err.Error()))
			user = nil
		}
	}

	resp := map[string]interface{}{
		"success":       true,
		"authenticated": user != nil,
		"user":          nil,
	}
	if user != nil {
		resp["user"] = toUserResponse(user)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
