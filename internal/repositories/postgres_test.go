package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestFollowRepository_Counts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresFollowRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE following_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	followers, err := repo.GetFollowersCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), followers)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
		WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	following, err := repo.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_GetFollowingIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresFollowRepository(db)

	mock.ExpectQuery(`SELECT .*following_id.* FROM "follows" WHERE follower_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"following_id"}).AddRow("u2").AddRow("u3"))

	ids, err := repo.GetFollowingIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_DeleteMissingEdge(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresFollowRepository(db)

	mock.ExpectExec(`DELETE FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
		WithArgs("u1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteFollow(context.Background(), "u1", "u2")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_GetVoteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresVoteRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "recipe_votes" WHERE recipe_id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipe_id", "user_id", "vote_type", "created_at"}))

	vote, err := repo.GetVote(context.Background(), "r1", "u1")
	assert.Nil(t, vote)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_UpdateVoteTypeMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresVoteRepository(db)

	mock.ExpectExec(`UPDATE "recipe_votes" SET "vote_type"=\$1 WHERE id = \$2`).
		WithArgs("down", "v1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateVoteType(context.Background(), "v1", "down")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_TalliesEmptyInput(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresVoteRepository(db)

	tallies, err := repo.Tallies(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tallies)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_UpVotedRecipeIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresVoteRepository(db)

	mock.ExpectQuery(`SELECT .*recipe_id.* FROM "recipe_votes" WHERE user_id = \$1 AND vote_type = \$2`).
		WithArgs("u1", "up").
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id"}).AddRow("r1"))

	ids, err := repo.UpVotedRecipeIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func malformedUUID(id string) error {
	return &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "` + id + `"`}
}

func TestRecipeRepository_MalformedIDIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRecipeRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "recipes" WHERE id = \$1`).
		WillReturnError(malformedUUID("abc"))
	recipe, err := repo.GetRecipeByID(ctx, "abc")
	assert.Nil(t, recipe)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(`DELETE FROM "recipes" WHERE id = \$1`).
		WithArgs("abc").
		WillReturnError(malformedUUID("abc"))
	assert.ErrorIs(t, repo.DeleteRecipe(ctx, "abc"), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedRecipeRepository_MalformedIDIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSavedRecipeRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "saved_recipes" WHERE user_id = \$1 AND recipe_id = \$2`).
		WithArgs("u1", "abc").
		WillReturnError(malformedUUID("abc"))
	saved, err := repo.IsRecipeSaved(ctx, "u1", "abc")
	assert.False(t, saved)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(`DELETE FROM "saved_recipes" WHERE user_id = \$1 AND recipe_id = \$2`).
		WithArgs("u1", "abc").
		WillReturnError(malformedUUID("abc"))
	assert.ErrorIs(t, repo.UnsaveRecipe(ctx, "u1", "abc"), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_WritesTranslateErrors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresVoteRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM "recipe_votes" WHERE id = \$1`).
		WithArgs("abc").
		WillReturnError(malformedUUID("abc"))
	assert.ErrorIs(t, repo.DeleteVote(ctx, "abc"), ErrNotFound)

	mock.ExpectExec(`UPDATE "recipe_votes" SET "vote_type"=\$1 WHERE id = \$2`).
		WithArgs("up", "abc").
		WillReturnError(malformedUUID("abc"))
	assert.ErrorIs(t, repo.UpdateVoteType(ctx, "abc", "up"), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrConflict)
	assert.ErrorIs(t, translate(gorm.ErrForeignKeyViolated), ErrNotFound)
	assert.ErrorIs(t, translate(malformedUUID("x")), ErrNotFound)

	syntax := &pgconn.PgError{Code: "42601"}
	assert.Equal(t, error(syntax), translate(syntax))

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}
