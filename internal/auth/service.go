// Package auth はOAuth認証フロー、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/pitchboard/internal/model"
	"github.com/hitoshi/pitchboard/internal/repository"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
// email, pictureはオプショナルで、欠落時は空文字列。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Picture        string
	Provider       string // "google", "github" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// ErrAuthenticationFailed はprovider側の交換・プロフィール取得の失敗を表す。
// ハンドラーはこのエラーを検出してログイン失敗ページへリダイレクトする。
// 内部詳細はログのみに記録し、ブラウザへは流さない。
var ErrAuthenticationFailed = errors.New("authentication failed")

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録ユーザーの場合はusersレコードとidentitiesレコードを同時に自動作成する。
// 登録済みユーザーの場合はidentitiesテーブルで既存ユーザーを特定し、
// last_loginを更新してログインする。
// provider側の失敗はすべてErrAuthenticationFailedとして返す。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		slog.Error("oauth code exchange failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	// 2. identitiesテーブルで既存ユーザーを検索
	userID, err := s.resolveOrCreateUser(ctx, userInfo)
	if err != nil {
		return nil, err
	}

	// 3. セッションを発行
	session, err := s.createSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// resolveOrCreateUser はOAuthユーザー情報からローカルユーザーIDを解決する。
// identityが存在すればlast_loginを更新して既存ユーザーを返す。
// 存在しなければユーザーとidentityを作成する。並行した初回ログインで
// 一意制約に衝突した場合は「identityは既に存在する」として再検索する。
func (s *Service) resolveOrCreateUser(ctx context.Context, userInfo *OAuthUserInfo) (string, error) {
	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
	if err != nil {
		return "", fmt.Errorf("failed to find identity: %w", err)
	}

	if identity != nil {
		if err := s.userRepo.UpdateLastLogin(ctx, identity.UserID, time.Now()); err != nil {
			return "", fmt.Errorf("failed to update last login: %w", err)
		}
		slog.Info("existing user logged in",
			slog.String("user_id", identity.UserID),
			slog.String("provider", userInfo.Provider),
		)
		return identity.UserID, nil
	}

	// 新規ユーザー: usersレコードとidentitiesレコードを同時に作成
	newUserID := uuid.New().String()
	now := time.Now()

	newUser := &model.User{
		ID:        newUserID,
		Email:     userInfo.Email,
		Name:      userInfo.Name,
		Picture:   userInfo.Picture,
		Provider:  userInfo.Provider,
		Role:      model.RoleUser,
		CreatedAt: now,
		LastLogin: now,
	}

	newIdentity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         newUserID,
		Provider:       userInfo.Provider,
		ProviderUserID: userInfo.ProviderUserID,
		CreatedAt:      now,
	}

	err = s.userRepo.CreateWithIdentity(ctx, newUser, newIdentity)
	if errors.Is(err, repository.ErrDuplicateIdentity) {
		// 同一外部IDの初回ログインが並行した場合。identityは既に存在するので再検索する。
		identity, findErr := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
		if findErr != nil {
			return "", fmt.Errorf("failed to re-find identity after conflict: %w", findErr)
		}
		if identity == nil {
			return "", fmt.Errorf("identity conflict but identity not found")
		}
		slog.Info("concurrent first login resolved",
			slog.String("user_id", identity.UserID),
			slog.String("provider", userInfo.Provider),
		)
		return identity.UserID, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to create user and identity: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", newUserID),
		slog.String("email", userInfo.Email),
		slog.String("provider", userInfo.Provider),
	)
	return newUserID, nil
}

// Logout はセッションを破棄する。
// 存在しない・既に失効済みのセッションIDでもエラーにならない（冪等）。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// LogoutAll は指定ユーザーの全セッションを破棄する。
// 他のデバイスを含むすべてのログイン状態が無効になる。
// 対象セッションが存在しなくてもエラーにならない（冪等）。
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	slog.Info("all sessions revoked", slog.String("user_id", userID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// セッションが無い・期限切れ・失効済みの場合はnilを返す（エラーにはしない）。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。
// トークン衝突時は新しいトークンで1回だけ再試行する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	for attempt := 0; attempt < 2; attempt++ {
		sessionID, err := generateSessionID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session ID: %w", err)
		}

		session := &model.Session{
			ID:        sessionID,
			UserID:    userID,
			ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
			CreatedAt: time.Now(),
		}

		err = s.sessionRepo.Create(ctx, session)
		if errors.Is(err, repository.ErrDuplicateSession) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		return session, nil
	}
	return nil, fmt.Errorf("failed to generate unique session ID")
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
// 256ビットのエントロピーを持ち、推測攻撃に耐える。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
