package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/stretchr/testify/require"
)

var voteColumns = []string{"id", "user_id", "section", "item_id", "value", "created_at", "updated_at"}

func TestPostgresVoteRepo_ListByKeys_EmptyKeysSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresVoteRepo(db)

	votes, err := repo.ListByKeys(context.Background(), "u-1", nil)
	require.NoError(t, err)
	require.NotNil(t, votes)
	require.Empty(t, votes)
	// クエリが発行されていないこと
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVoteRepo_ListByKeys_RestrictsToExactPairs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresVoteRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`JOIN unnest\(\$2::text\[\], \$3::text\[\]\) AS k\(section, item_id\)`).
		WithArgs("u-1", "{\"PRICES\",\"NEWS\"}", "{\"price:bitcoin\",\"news:42\"}").
		WillReturnRows(sqlmock.NewRows(voteColumns).
			AddRow("v-1", "u-1", "PRICES", "price:bitcoin", int64(1), now, now))

	votes, err := repo.ListByKeys(context.Background(), "u-1", []model.VoteKey{
		{Section: model.SectionPrices, ItemID: "price:bitcoin"},
		{Section: model.SectionNews, ItemID: "news:42"},
	})
	require.NoError(t, err)
	require.Len(t, votes, 1)
	require.Equal(t, model.SectionPrices, votes[0].Section)
	require.Equal(t, model.VoteUp, votes[0].Value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVoteRepo_Upsert_ReturnsStoredRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresVoteRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO votes .* ON CONFLICT \(user_id, section, item_id\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "u-1", "NEWS", "news:1", -1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(voteColumns).
			AddRow("v-1", "u-1", "NEWS", "news:1", int64(-1), now, now))

	vote, err := repo.Upsert(context.Background(), "u-1",
		model.VoteKey{Section: model.SectionNews, ItemID: "news:1"}, model.VoteDown)
	require.NoError(t, err)
	require.Equal(t, model.VoteDown, vote.Value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVoteRepo_FindByUserAndKey_NotFoundReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresVoteRepo(db)

	mock.ExpectQuery(`FROM votes WHERE user_id = \$1 AND section = \$2 AND item_id = \$3`).
		WithArgs("u-1", "MEME", "meme:meme1").
		WillReturnError(sql.ErrNoRows)

	vote, err := repo.FindByUserAndKey(context.Background(), "u-1",
		model.VoteKey{Section: model.SectionMeme, ItemID: "meme:meme1"})
	require.NoError(t, err)
	require.Nil(t, vote)
}

func TestPostgresVoteRepo_Delete_NoRowsIsSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresVoteRepo(db)

	mock.ExpectExec(`DELETE FROM votes WHERE user_id = \$1 AND section = \$2 AND item_id = \$3`).
		WithArgs("u-1", "INSIGHT", "insight:2026-01-01").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u-1",
		model.VoteKey{Section: model.SectionInsight, ItemID: "insight:2026-01-01"})
	require.NoError(t, err)
}
