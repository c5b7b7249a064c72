package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/cryptodash/internal/model"
)

// PostgresInsightRepo はPostgreSQLを使用した日次インサイトリポジトリ。
type PostgresInsightRepo struct {
	db *sql.DB
}

// NewPostgresInsightRepo はPostgresInsightRepoを生成する。
func NewPostgresInsightRepo(db *sql.DB) *PostgresInsightRepo {
	return &PostgresInsightRepo{db: db}
}

// FindByUserAndDate は指定日のインサイトを取得する。見つからない場合はnilを返す。
func (r *PostgresInsightRepo) FindByUserAndDate(ctx context.Context, userID, date string) (*model.DailyInsight, error) {
	insight := &model.DailyInsight{}
	var insightDate time.Time

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, insight_date, text, created_at
		 FROM daily_insights WHERE user_id = $1 AND insight_date = $2::date`,
		userID, date,
	).Scan(&insight.ID, &insight.UserID, &insightDate, &insight.Text, &insight.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("インサイトの取得に失敗しました: %w", err)
	}

	insight.Date = insightDate.Format(model.InsightDateLayout)
	return insight, nil
}

// InsertIfAbsent は (user_id, insight_date) が未登録の場合のみ保存する。
// 競合した場合は先に保存された行を読み直して返すため、同日の同時リクエストは同じテキストを得る。
func (r *PostgresInsightRepo) InsertIfAbsent(ctx context.Context, insight *model.DailyInsight) (*model.DailyInsight, error) {
	if insight.ID == "" {
		insight.ID = uuid.New().String()
	}
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO daily_insights (id, user_id, insight_date, text, created_at)
		 VALUES ($1, $2, $3::date, $4, $5)
		 ON CONFLICT (user_id, insight_date) DO NOTHING`,
		insight.ID, insight.UserID, insight.Date, insight.Text, insight.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("インサイトの保存に失敗しました: %w", err)
	}

	stored, err := r.FindByUserAndDate(ctx, insight.UserID, insight.Date)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("保存したインサイトが見つかりません: user=%s date=%s", insight.UserID, insight.Date)
	}
	return stored, nil
}

// DeleteOlderThan はbeforeより前の日付のインサイトを削除する。
func (r *PostgresInsightRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM daily_insights WHERE insight_date < $1::date`,
		before.UTC().Format(model.InsightDateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("古いインサイトの削除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// DeleteByUserID はユーザーの全インサイトを削除する。
func (r *PostgresInsightRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM daily_insights WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("インサイトの一括削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ InsightRepository = (*PostgresInsightRepo)(nil)
