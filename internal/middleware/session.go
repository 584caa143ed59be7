// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/pitchboard/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに解決済みプリンシパルを格納するためのキー。
var principalContextKey = contextKey("principal")

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// UserFinder はプリンシパルの解決に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// 有効性を検証してプリンシパルを解決するミドルウェアを返す。
// 解決済みのUserをリクエストコンテキストに注入する。
// Cookieが無い・トークンが不明・期限切れ・ユーザー不在のいずれも
// 401 Unauthorizedとなり、後続のハンドラーは実行されない。
// ストレージ障害は未認証と区別し、500 Internal Server Errorを返す。
func NewSessionMiddleware(sessionFinder SessionFinder, userFinder UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. CookieからセッションIDを取得
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. セッションの有効性を検証
			session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
			if err != nil {
				// ストレージ障害は「セッションなし」ではなく一時的な失敗
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if session == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. プリンシパルを解決
			user, err := userFinder.FindByID(r.Context(), session.UserID)
			if err != nil {
				slog.Error("failed to resolve principal",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if user == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 4. 解決済みプリンシパルをコンテキストに注入
			ctx := context.WithValue(r.Context(), principalContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRoleMiddleware は許可ロールを持つプリンシパルのみ通過させるミドルウェアを返す。
// セッションミドルウェアの内側に配置すること。
// ロールが許可リストに含まれない場合は403 Forbiddenを返す。
func NewRoleMiddleware(allowedRoles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := PrincipalFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			for _, role := range allowedRoles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			slog.Warn("role check failed",
				slog.String("user_id", principal.ID),
				slog.String("role", principal.Role),
			)
			WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから解決済みプリンシパルを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (*model.User, error) {
	principal, ok := ctx.Value(principalContextKey).(*model.User)
	if !ok || principal == nil {
		return nil, fmt.Errorf("principal not found in context")
	}
	return principal, nil
}

// ContextWithPrincipal はコンテキストにプリンシパルを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal *model.User) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}
