// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, pitch, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthFailed       = "AUTH_FAILED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodePitchNotFound    = "PITCH_NOT_FOUND"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewUnauthorizedError は未認証エラーを生成する。
// セッションが無い・期限切れ・失効済みのいずれも同じエラーになる。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError はロール不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を実行する権限がありません。",
		Category: "auth",
		Action:   "管理者に連絡してください。",
	}
}

// NewPitchNotFoundError はピッチ未検出エラーを生成する。
// 存在しない場合と他ユーザー所有の場合を意図的に区別しない。
func NewPitchNotFoundError(pitchID string) *APIError {
	return &APIError{
		Code:     ErrCodePitchNotFound,
		Message:  fmt.Sprintf("指定されたピッチが見つかりません: %s", pitchID),
		Category: "pitch",
		Action:   "ピッチIDを確認してください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("%s: %s", field, reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
