// Package pitch はピッチ文書に関するビジネスロジックを提供する。
// すべての操作は解決済みプリンシパルのユーザーIDを明示的な引数として受け取り、
// リポジトリ層の所有者フィルタによって他ユーザーの行には到達できない。
package pitch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/pitchboard/internal/model"
	"github.com/hitoshi/pitchboard/internal/repository"
	"github.com/hitoshi/pitchboard/internal/security"
)

// CreateInput はピッチ作成の入力を表す。
type CreateInput struct {
	Title       string
	Description string
	Content     string
}

// UpdateInput はピッチの部分更新の入力を表す。
// nilのフィールドは変更しない。
type UpdateInput struct {
	Title       *string
	Description *string
	Content     *string
	Status      *string
}

// Service はピッチに関するビジネスロジックを提供する。
type Service struct {
	repo      repository.PitchRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
// 本文のサニタイズポリシーは決定的なため、サービス内部で構築する。
func NewService(repo repository.PitchRepository) *Service {
	return &Service{
		repo:      repo,
		sanitizer: security.NewContentSanitizer(),
	}
}

// Create はピッチを新規作成する。タイトルは必須。
// descriptionとcontentは省略時に空文字列となる。
// 本文はHTMLとして描画されるため、保存前にサニタイズする。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Pitch, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewValidationError("title", "タイトルは必須です")
	}

	now := time.Now()
	pitch := &model.Pitch{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Content:     s.sanitizer.Sanitize(input.Content),
		Status:      model.PitchStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, pitch); err != nil {
		return nil, fmt.Errorf("failed to create pitch: %w", err)
	}

	return pitch, nil
}

// List はユーザーのピッチ一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Pitch, error) {
	pitches, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pitches: %w", err)
	}
	return pitches, nil
}

// Get は指定IDのピッチを取得する。
// 存在しない場合と他ユーザー所有の場合はどちらもPITCH_NOT_FOUNDになる。
func (s *Service) Get(ctx context.Context, userID, pitchID string) (*model.Pitch, error) {
	pitch, err := s.repo.FindByIDAndUserID(ctx, pitchID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pitch: %w", err)
	}
	if pitch == nil {
		return nil, model.NewPitchNotFoundError(pitchID)
	}
	return pitch, nil
}

// Update は指定IDのピッチを部分更新する。
// 省略されたフィールドは既存値を維持し、updated_atは常に更新される。
func (s *Service) Update(ctx context.Context, userID, pitchID string, input UpdateInput) (*model.Pitch, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, model.NewValidationError("title", "タイトルを空にすることはできません")
	}
	if input.Status != nil && !isValidStatus(*input.Status) {
		return nil, model.NewValidationError("status", fmt.Sprintf("無効なステータスです: %s", *input.Status))
	}

	update := repository.PitchUpdate{
		Title:       input.Title,
		Description: input.Description,
	}
	if input.Content != nil {
		sanitized := s.sanitizer.Sanitize(*input.Content)
		update.Content = &sanitized
	}
	if input.Status != nil {
		status := model.PitchStatus(*input.Status)
		update.Status = &status
	}

	pitch, err := s.repo.Update(ctx, pitchID, userID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update pitch: %w", err)
	}
	if pitch == nil {
		return nil, model.NewPitchNotFoundError(pitchID)
	}
	return pitch, nil
}

// Delete は指定IDのピッチを削除する。
// 存在しない場合と他ユーザー所有の場合はどちらもPITCH_NOT_FOUNDになる。
func (s *Service) Delete(ctx context.Context, userID, pitchID string) error {
	deleted, err := s.repo.DeleteByIDAndUserID(ctx, pitchID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete pitch: %w", err)
	}
	if !deleted {
		return model.NewPitchNotFoundError(pitchID)
	}
	return nil
}

// isValidStatus はピッチステータスのバリデーションを行う。
func isValidStatus(status string) bool {
	switch model.PitchStatus(status) {
	case model.PitchStatusDraft, model.PitchStatusPublished, model.PitchStatusArchived:
		return true
	}
	return false
}
