package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/pitchboard/internal/model"
)

// PostgresPitchRepo はPostgreSQLを使用したピッチリポジトリ。
// 全クエリがuser_idの等価条件を含み、他ユーザーの行には構造的に到達できない。
type PostgresPitchRepo struct {
	db *sql.DB
}

// NewPostgresPitchRepo はPostgresPitchRepoを生成する。
func NewPostgresPitchRepo(db *sql.DB) *PostgresPitchRepo {
	return &PostgresPitchRepo{db: db}
}

// Create はピッチを作成する。
func (r *PostgresPitchRepo) Create(ctx context.Context, pitch *model.Pitch) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pitches (id, user_id, title, description, content, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		pitch.ID, pitch.UserID, pitch.Title, pitch.Description, pitch.Content, pitch.Status, pitch.CreatedAt, pitch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pitch: %w", err)
	}
	return nil
}

// ListByUserID は指定ユーザーのピッチ一覧を作成日時の降順で返す。
func (r *PostgresPitchRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Pitch, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, content, status, created_at, updated_at
		 FROM pitches
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pitches: %w", err)
	}
	defer rows.Close()

	pitches := []*model.Pitch{}
	for rows.Next() {
		pitch := &model.Pitch{}
		if err := rows.Scan(&pitch.ID, &pitch.UserID, &pitch.Title, &pitch.Description, &pitch.Content, &pitch.Status, &pitch.CreatedAt, &pitch.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pitch: %w", err)
		}
		pitches = append(pitches, pitch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pitches: %w", err)
	}

	return pitches, nil
}

// FindByIDAndUserID はIDと所有者の両方が一致するピッチを取得する。
// 一致しない場合はnilを返す。
func (r *PostgresPitchRepo) FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Pitch, error) {
	pitch := &model.Pitch{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, content, status, created_at, updated_at
		 FROM pitches
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&pitch.ID, &pitch.UserID, &pitch.Title, &pitch.Description, &pitch.Content, &pitch.Status, &pitch.CreatedAt, &pitch.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pitch: %w", err)
	}

	return pitch, nil
}

// Update はIDと所有者の両方が一致するピッチを部分更新し、更新後の行を返す。
// nilのフィールドはCOALESCEで既存値を維持する。updated_atは常に更新される。
// 条件付きUPDATEは行単位でアトミックに直列化されるため追加のロックは不要。
func (r *PostgresPitchRepo) Update(ctx context.Context, id, userID string, update PitchUpdate) (*model.Pitch, error) {
	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}

	pitch := &model.Pitch{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE pitches
		 SET title       = COALESCE($3, title),
		     description = COALESCE($4, description),
		     content     = COALESCE($5, content),
		     status      = COALESCE($6, status),
		     updated_at  = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, title, description, content, status, created_at, updated_at`,
		id, userID, update.Title, update.Description, update.Content, status,
	).Scan(&pitch.ID, &pitch.UserID, &pitch.Title, &pitch.Description, &pitch.Content, &pitch.Status, &pitch.CreatedAt, &pitch.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update pitch: %w", err)
	}

	return pitch, nil
}

// DeleteByIDAndUserID はIDと所有者の両方が一致するピッチを削除する。
func (r *PostgresPitchRepo) DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM pitches WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete pitch: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ PitchRepository = (*PostgresPitchRepo)(nil)
