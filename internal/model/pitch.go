// Package model はドメインモデルを定義する。
package model

import "time"

// PitchStatus はピッチのステータスを表す。
type PitchStatus string

const (
	// PitchStatusDraft は下書き状態を示す。
	PitchStatusDraft PitchStatus = "draft"
	// PitchStatusPublished は公開済み状態を示す。
	PitchStatusPublished PitchStatus = "published"
	// PitchStatusArchived はアーカイブ済み状態を示す。
	PitchStatusArchived PitchStatus = "archived"
)

// Pitch はユーザーが所有するピッチ文書を表す。
// すべての読み書きは所有者のUserIDでスコープされる。
type Pitch struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Content     string
	Status      PitchStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
