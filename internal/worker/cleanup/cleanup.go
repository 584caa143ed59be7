// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// resolveは期限切れセッションを読み取り時にフィルタするため、残った行は
// 参照されないゴミになる。日次バッチで遅延削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPurger は期限切れセッションの削除に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Metrics は削除件数の記録に必要なインターフェース。
type Metrics interface {
	RecordSessionsPurged(count int64)
}

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions SessionPurger
	logger   *slog.Logger
	metrics  Metrics // nilの場合は記録しない
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(sessions SessionPurger, logger *slog.Logger, metrics Metrics) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run は期限切れセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordSessionsPurged(deleted)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
