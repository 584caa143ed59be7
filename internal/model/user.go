// Package model はドメインモデルを定義する。
package model

import "time"

// ユーザーのロール。ロール制限付き操作のための最小限の区分。
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User は認証済みユーザー（プリンシパル）を表す。
// OAuthログイン成功時に作成され、以降のリクエストでセッションから解決される。
type User struct {
	ID        string
	Email     string
	Name      string
	Picture   string
	Provider  string
	Role      string
	CreatedAt time.Time
	LastLogin time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
// (provider, provider_user_id) の組が高々1つのUserを一意に決定する。
// 将来的に複数のIdP（Google, GitHub等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// IDは推測不能なランダムトークンで、Cookie経由でクライアントが保持する。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
