package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/lib/pq"
)

// PostgresPreferenceRepo はPostgreSQLを使用したダッシュボード設定リポジトリ。
// assetsとcontent_typesはtext[]カラムに格納する。
type PostgresPreferenceRepo struct {
	db *sql.DB
}

// NewPostgresPreferenceRepo はPostgresPreferenceRepoを生成する。
func NewPostgresPreferenceRepo(db *sql.DB) *PostgresPreferenceRepo {
	return &PostgresPreferenceRepo{db: db}
}

// FindByUserID はユーザーの設定を取得する。見つからない場合はnilを返す。
// NULLの配列カラムは空スライスとして返す。
func (r *PostgresPreferenceRepo) FindByUserID(ctx context.Context, userID string) (*model.Preference, error) {
	pref := &model.Preference{}
	var assets, contentTypes pq.StringArray

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, assets, investor_type, content_types, created_at, updated_at
		 FROM preferences WHERE user_id = $1`,
		userID,
	).Scan(&pref.UserID, &assets, &pref.InvestorType, &contentTypes, &pref.CreatedAt, &pref.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗しました: %w", err)
	}

	pref.Assets = nonNil(assets)
	pref.ContentTypes = nonNil(contentTypes)
	return pref, nil
}

// Upsert はuser_idをキーに設定を作成または上書きする。
// created_atは初回保存時の値を維持する。
func (r *PostgresPreferenceRepo) Upsert(ctx context.Context, pref *model.Preference) (*model.Preference, error) {
	now := time.Now().UTC()
	saved := &model.Preference{}
	var assets, contentTypes pq.StringArray

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO preferences (user_id, assets, investor_type, content_types, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		   assets = EXCLUDED.assets,
		   investor_type = EXCLUDED.investor_type,
		   content_types = EXCLUDED.content_types,
		   updated_at = EXCLUDED.updated_at
		 RETURNING user_id, assets, investor_type, content_types, created_at, updated_at`,
		pref.UserID, pq.Array(pref.Assets), pref.InvestorType, pq.Array(pref.ContentTypes), now,
	).Scan(&saved.UserID, &assets, &saved.InvestorType, &contentTypes, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("設定の保存に失敗しました: %w", err)
	}

	saved.Assets = nonNil(assets)
	saved.ContentTypes = nonNil(contentTypes)
	return saved, nil
}

func nonNil(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

// compile-time interface check
var _ PreferenceRepository = (*PostgresPreferenceRepo)(nil)
