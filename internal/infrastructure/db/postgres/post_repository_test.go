package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groompost/groompost-api/internal/core/domain"
)

var postCols = []string{
	"id", "dog_name", "grooming_service", "notes", "tags", "before_image_url", "after_image_url", "caption",
	"user_id", "created_at", "status", "instagram_post_id", "instagram_permalink",
}

func strp(s string) *string { return &s }

func rexRow(rows *sqlmock.Rows, id int64, status string, igID any) *sqlmock.Rows {
	return rows.AddRow(id, "Rex", "full-groom", nil, nil, "/u/1.jpg", "/u/2.jpg", "Rex looks great!",
		int64(1), time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), status, igID, nil)
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)
	owner := int64(1)

	mock.ExpectQuery(`INSERT INTO groom_posts`).
		WithArgs("Rex", "full-groom", nil, nil, "/u/1.jpg", "/u/2.jpg", "Rex looks great!", owner).
		WillReturnRows(rexRow(sqlmock.NewRows(postCols), 1, "draft", nil))

	post, err := repo.Create(context.Background(), &owner, domain.PostFields{
		DogName:         strp("Rex"),
		GroomingService: strp("full-groom"),
		BeforeImageURL:  strp("/u/1.jpg"),
		AfterImageURL:   strp("/u/2.jpg"),
		Caption:         strp("Rex looks great!"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, post.Status)
	require.NotNil(t, post.UserID)
	assert.Equal(t, owner, *post.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows(postCols)
	rexRow(rows, 1, "draft", nil)
	rexRow(rows, 2, "published", "ig-9")
	mock.ExpectQuery(`SELECT .+ FROM groom_posts WHERE user_id = \$1 ORDER BY created_at ASC, id ASC`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	posts, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(1), posts[0].ID)
	assert.True(t, posts[1].Published())
}

func TestPostRepository_List_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM groom_posts ORDER BY created_at ASC`).
		WillReturnRows(sqlmock.NewRows(postCols))

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM groom_posts WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`UPDATE groom_posts SET`).
		WithArgs(int64(1), nil, nil, nil, nil, nil, nil, "New caption").
		WillReturnRows(rexRow(sqlmock.NewRows(postCols), 1, "draft", nil))
	mock.ExpectQuery(`UPDATE groom_posts SET`).
		WithArgs(int64(7), nil, nil, nil, nil, nil, nil, "New caption").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), 1, domain.PostFields{Caption: strp("New caption")})
	require.NoError(t, err)

	_, err = repo.Update(context.Background(), 7, domain.PostFields{Caption: strp("New caption")})
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Delete_Twice(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectExec(`DELETE FROM groom_posts WHERE id = \$1`).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM groom_posts WHERE id = \$1`).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPostRepository_MarkPublished(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`UPDATE groom_posts SET\s+status\s+= 'published'.+WHERE id = \$1 AND status = 'draft'`).
		WithArgs(int64(1), "ig-1", "https://instagram.com/p/x").
		WillReturnRows(rexRow(sqlmock.NewRows(postCols), 1, "published", "ig-1"))

	post, err := repo.MarkPublished(context.Background(), 1, "ig-1", "https://instagram.com/p/x")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, post.Status)
}

func TestPostRepository_MarkPublished_AlreadyPublished(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`UPDATE groom_posts SET`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM groom_posts WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(rexRow(sqlmock.NewRows(postCols), 1, "published", "ig-1"))

	_, err := repo.MarkPublished(context.Background(), 1, "ig-2", "p")
	assert.ErrorIs(t, err, domain.ErrAlreadyPosted)
}

func TestPostRepository_MarkPublished_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`UPDATE groom_posts SET`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM groom_posts WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	_, err := repo.MarkPublished(context.Background(), 1, "ig-2", "p")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestMigrate_UsesEmbeddedDir(t *testing.T) {
	db, _ := newMockDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, "migrations", gotDir)

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.ErrorContains(t, Migrate(context.Background(), db), "boom")
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
