// Package cleanup は日次インサイトの自動削除ジョブを提供する。
// 保持期間（デフォルト90日）を超過したdaily_insightsを日次バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultRetentionDays はインサイトの保持日数のデフォルト値。
const DefaultRetentionDays = 90

// InsightPurger は指定日より前のインサイトを削除する。
// repository.InsightRepositoryが満たす。
type InsightPurger interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// CleanupJob は保持期間を超過したインサイトの自動削除ジョブ。
// 冪等: 削除対象がない場合でもエラーにならない。
type CleanupJob struct {
	purger        InsightPurger
	logger        *slog.Logger
	now           func() time.Time
	RetentionDays int // インサイトの保持日数（デフォルト: 90）
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(purger InsightPurger, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		purger:        purger,
		logger:        logger,
		now:           time.Now,
		RetentionDays: DefaultRetentionDays,
	}
}

// Cutoff は削除境界となるUTC日付を返す。この日付より前のインサイトが削除対象となる。
func (j *CleanupJob) Cutoff() time.Time {
	today := j.now().UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -j.RetentionDays)
}

// Run は保持期間を超過したインサイトを削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()
	cutoff := j.Cutoff()

	deletedCount, err := j.purger.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("インサイトクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("インサイトクリーンアップの実行に失敗: %w", err)
	}

	j.logger.Info("インサイトクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.String("cutoff", cutoff.Format(time.DateOnly)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// RunEvery はintervalごとにRunを実行する。ctxがキャンセルされるまでブロックする。
// 起動直後に1回実行する。個々の実行失敗はログに記録して次回に持ち越す。
func (j *CleanupJob) RunEvery(ctx context.Context, interval time.Duration) {
	_ = j.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("インサイトクリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
