package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/pitchboard/internal/model"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresIdentityRepoはIdentityRepositoryインターフェースを満たすことを検証
func TestPostgresIdentityRepo_ImplementsInterface(t *testing.T) {
	var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
}

// PostgresSessionRepoはSessionRepositoryインターフェースを満たすことを検証
func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

// PostgresPitchRepoはPitchRepositoryインターフェースを満たすことを検証
func TestPostgresPitchRepo_ImplementsInterface(t *testing.T) {
	var _ PitchRepository = (*PostgresPitchRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresIdentityRepoが正しく初期化されることを検証
func TestNewPostgresIdentityRepo_Initializes(t *testing.T) {
	repo := NewPostgresIdentityRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresSessionRepoが正しく初期化されることを検証
func TestNewPostgresSessionRepo_Initializes(t *testing.T) {
	repo := NewPostgresSessionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresPitchRepoが正しく初期化されることを検証
func TestNewPostgresPitchRepo_Initializes(t *testing.T) {
	repo := NewPostgresPitchRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// ユニットテスト: CreateWithIdentityに渡すuserとidentityの対応関係
// （DB接続なしでロジックのみ検証）
func TestPostgresUserRepo_CreateWithIdentity_UserIdentityLink(t *testing.T) {
	user := &model.User{
		ID:       "user-id-1",
		Email:    "test@example.com",
		Name:     "Test User",
		Provider: "google",
		Role:     model.RoleUser,
	}
	identity := &model.Identity{
		ID:             "identity-id-1",
		UserID:         "user-id-1",
		Provider:       "google",
		ProviderUserID: "google-123",
	}

	// identityのUserIDがuserのIDと一致することを確認
	if identity.UserID != user.ID {
		t.Errorf("identity.UserID = %q, want %q", identity.UserID, user.ID)
	}
	if identity.Provider != user.Provider {
		t.Errorf("identity.Provider = %q, want %q", identity.Provider, user.Provider)
	}
}

// SessionRepoのFindByIDが期限切れセッションを返さないことの期待動作
func TestPostgresSessionRepo_FindByID_ExpiredSession_Concept(t *testing.T) {
	// このテストはDB接続なしでコンセプトを検証する
	session := &model.Session{
		ID:        "expired-session",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	}

	if session.ExpiresAt.After(time.Now()) {
		t.Error("expected session to be expired")
	}
}

// SessionRepoのDeleteByIDが正しいセッションIDで呼ばれることの検証
func TestPostgresSessionRepo_DeleteByID_Concept(t *testing.T) {
	sessionID := "session-to-delete"
	ctx := context.Background()

	if sessionID == "" {
		t.Fatal("session ID should not be empty")
	}
	if ctx == nil {
		t.Fatal("context should not be nil")
	}
}

// PitchRepoのListByUserIDがオーナーでスコープされることの期待動作
func TestPostgresPitchRepo_ListByUserID_OwnerScoped_Concept(t *testing.T) {
	pitches := []*model.Pitch{
		{ID: "pitch-1", UserID: "user-a"},
		{ID: "pitch-2", UserID: "user-a"},
	}

	for _, p := range pitches {
		if p.UserID != "user-a" {
			t.Errorf("pitch %s belongs to %q, want %q", p.ID, p.UserID, "user-a")
		}
	}
}
