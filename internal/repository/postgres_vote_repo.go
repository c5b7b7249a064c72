package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/lib/pq"
)

// PostgresVoteRepo はPostgreSQLを使用した投票リポジトリ。
type PostgresVoteRepo struct {
	db *sql.DB
}

// NewPostgresVoteRepo はPostgresVoteRepoを生成する。
func NewPostgresVoteRepo(db *sql.DB) *PostgresVoteRepo {
	return &PostgresVoteRepo{db: db}
}

// FindByUserAndKey は (user_id, section, item_id) で投票を取得する。見つからない場合はnilを返す。
func (r *PostgresVoteRepo) FindByUserAndKey(ctx context.Context, userID string, key model.VoteKey) (*model.Vote, error) {
	vote := &model.Vote{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, section, item_id, value, created_at, updated_at
		 FROM votes WHERE user_id = $1 AND section = $2 AND item_id = $3`,
		userID, string(key.Section), key.ItemID,
	).Scan(&vote.ID, &vote.UserID, &vote.Section, &vote.ItemID, &vote.Value, &vote.CreatedAt, &vote.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("投票の取得に失敗しました: %w", err)
	}
	return vote, nil
}

// ListByKeys は指定キー群と完全一致する投票のみを取得する。
// セクションとアイテムIDの組を並列配列でunnestし、その組に対してJOINする。
func (r *PostgresVoteRepo) ListByKeys(ctx context.Context, userID string, keys []model.VoteKey) ([]*model.Vote, error) {
	if len(keys) == 0 {
		return []*model.Vote{}, nil
	}

	sections := make([]string, len(keys))
	itemIDs := make([]string, len(keys))
	for i, k := range keys {
		sections[i] = string(k.Section)
		itemIDs[i] = k.ItemID
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT v.id, v.user_id, v.section, v.item_id, v.value, v.created_at, v.updated_at
		 FROM votes v
		 JOIN unnest($2::text[], $3::text[]) AS k(section, item_id)
		   ON v.section = k.section AND v.item_id = k.item_id
		 WHERE v.user_id = $1`,
		userID, pq.Array(sections), pq.Array(itemIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("投票の一括取得に失敗しました: %w", err)
	}
	defer rows.Close()

	votes := []*model.Vote{}
	for rows.Next() {
		v := &model.Vote{}
		if err := rows.Scan(&v.ID, &v.UserID, &v.Section, &v.ItemID, &v.Value, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("投票のスキャンに失敗しました: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投票の走査中にエラーが発生しました: %w", err)
	}

	return votes, nil
}

// Upsert は投票を冪等にUPSERTする。
// UNIQUE(user_id, section, item_id)制約を利用したINSERT ON CONFLICTで値を上書きする。
func (r *PostgresVoteRepo) Upsert(ctx context.Context, userID string, key model.VoteKey, value model.VoteValue) (*model.Vote, error) {
	now := time.Now().UTC()
	vote := &model.Vote{}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO votes (id, user_id, section, item_id, value, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (user_id, section, item_id) DO UPDATE SET
		   value = EXCLUDED.value,
		   updated_at = EXCLUDED.updated_at
		 RETURNING id, user_id, section, item_id, value, created_at, updated_at`,
		uuid.New().String(), userID, string(key.Section), key.ItemID, int(value), now,
	).Scan(&vote.ID, &vote.UserID, &vote.Section, &vote.ItemID, &vote.Value, &vote.CreatedAt, &vote.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("投票の保存に失敗しました: %w", err)
	}

	return vote, nil
}

// Delete は指定キーの投票を削除する。該当行がなくても成功とする。
func (r *PostgresVoteRepo) Delete(ctx context.Context, userID string, key model.VoteKey) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM votes WHERE user_id = $1 AND section = $2 AND item_id = $3`,
		userID, string(key.Section), key.ItemID,
	)
	if err != nil {
		return fmt.Errorf("投票の削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの全投票を削除する。
func (r *PostgresVoteRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("投票の一括削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ VoteRepository = (*PostgresVoteRepo)(nil)
