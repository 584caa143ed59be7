// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/pitchboard/internal/model"
)

// ErrDuplicateIdentity は(provider, provider_user_id)の一意制約違反を表す。
// 同一外部IDに対する初回ログインが並行した場合に発生する。
// 呼び出し側は「identityは既に存在する」として再検索すること。
var ErrDuplicateIdentity = errors.New("identity already exists")

// ErrDuplicateSession はセッショントークンの衝突を表す。
// 上書きせずエラーとして扱う。
var ErrDuplicateSession = errors.New("session token already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	// identityの一意制約に違反した場合はErrDuplicateIdentityを返す。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// UpdateLastLogin は指定ユーザーの最終ログイン日時を更新する。
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。トークンが衝突した場合はErrDuplicateSessionを返す。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れまたは不明なIDの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。存在しないIDでもエラーにならない（冪等）。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// PitchUpdate はピッチの部分更新を表す。
// nilのフィールドは変更せず、既存の値を維持する。
type PitchUpdate struct {
	Title       *string
	Description *string
	Content     *string
	Status      *model.PitchStatus
}

// PitchRepository はピッチデータの永続化インターフェース。
// 全ての読み書きは所有者のUserIDを等価条件として必ず含む。
type PitchRepository interface {
	// Create はピッチを作成する。
	Create(ctx context.Context, pitch *model.Pitch) error

	// ListByUserID は指定ユーザーのピッチ一覧を作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Pitch, error)

	// FindByIDAndUserID はIDと所有者の両方が一致するピッチを取得する。
	// 一致しない場合はnilを返す（存在と非所有を区別しない）。
	FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Pitch, error)

	// Update はIDと所有者の両方が一致するピッチを部分更新し、更新後の行を返す。
	// 一致しない場合はnilを返す。updated_atは常に更新される。
	Update(ctx context.Context, id, userID string, update PitchUpdate) (*model.Pitch, error)

	// DeleteByIDAndUserID はIDと所有者の両方が一致するピッチを削除する。
	// 削除した場合はtrue、該当行が無い場合はfalseを返す。
	DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error)
}
