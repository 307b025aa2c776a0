package sqlstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/model"
	"github.com/sakif/boardsvc/internal/repository"
)

// newSeededDB returns a database holding the standard seed: one user, 200 boards.
func newSeededDB(t *testing.T) *DB {
	t.Helper()
	db := newTestDB(t)
	if _, err := db.Seed(context.Background(), plainHasher{}); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return db
}

func TestBoardSave_InsertTakesOwnerFromUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db.Users(), "owner", "owner@example.com")

	board := &model.Board{Title: "hello", Content: "world", User: owner}
	require.NoError(t, db.Boards().Save(ctx, board))

	assert.NotZero(t, board.ID)
	assert.Equal(t, owner.ID, board.UserID)
	assert.Equal(t, model.BoardFree, board.BoardType)
	assert.False(t, board.CreatedDate.IsZero())

	users, err := db.Users().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users, "saving a board must not write its user")
}

func TestBoardSave_UnknownOwnerFails(t *testing.T) {
	db := newTestDB(t)

	err := db.Boards().Save(context.Background(), &model.Board{Title: "orphan", UserID: 4242})
	require.Error(t, err, "foreign key should reject a board without an owner row")
}

func TestBoardSave_Update(t *testing.T) {
	db := newSeededDB(t)
	ctx := context.Background()

	board, err := db.Boards().FindByID(ctx, 3)
	require.NoError(t, err)

	board.Title = "changed"
	board.BoardType = model.BoardNotice
	require.NoError(t, db.Boards().Save(ctx, board))

	found, err := db.Boards().FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "changed", found.Title)
	assert.Equal(t, model.BoardNotice, found.BoardType)
}

func TestBoardFindByID_DoesNotLoadOwner(t *testing.T) {
	db := newSeededDB(t)

	board, err := db.Boards().FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "제목1", board.Title)
	assert.NotZero(t, board.UserID)
	assert.Nil(t, board.User)
}

func TestBoardFindByID_NotFound(t *testing.T) {
	db := newSeededDB(t)

	_, err := db.Boards().FindByID(context.Background(), 201)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestBoardFindByTitle(t *testing.T) {
	db := newSeededDB(t)
	ctx := context.Background()

	board, err := db.Boards().FindByTitle(ctx, "제목150")
	require.NoError(t, err)
	assert.Equal(t, int64(150), board.ID)
	assert.Equal(t, "내용150", board.Content)

	_, err = db.Boards().FindByTitle(ctx, "없는 제목")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestBoardFindAll_Pagination(t *testing.T) {
	db := newSeededDB(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		req        repository.PageRequest
		wantLen    int
		wantFirst  string
		wantLast   string
		wantNumber int
		wantSize   int
	}{
		{
			name:      "first page of fifty",
			req:       repository.PageRequest{Page: 0, Size: 50},
			wantLen:   50,
			wantFirst: "제목1", wantLast: "제목50",
			wantNumber: 0, wantSize: 50,
		},
		{
			name:      "second page of ten is rows 11-20",
			req:       repository.PageRequest{Page: 1, Size: 10},
			wantLen:   10,
			wantFirst: "제목11", wantLast: "제목20",
			wantNumber: 1, wantSize: 10,
		},
		{
			name:      "page index two of ten is rows 21-30",
			req:       repository.PageRequest{Page: 2, Size: 10},
			wantLen:   10,
			wantFirst: "제목21", wantLast: "제목30",
			wantNumber: 2, wantSize: 10,
		},
		{
			name:      "partial last page",
			req:       repository.PageRequest{Page: 2, Size: 90},
			wantLen:   20,
			wantFirst: "제목181", wantLast: "제목200",
			wantNumber: 2, wantSize: 90,
		},
		{
			name:      "negative index and zero size are normalized",
			req:       repository.PageRequest{Page: -3, Size: 0},
			wantLen:   repository.DefaultPageSize,
			wantFirst: "제목1", wantLast: "제목10",
			wantNumber: 0, wantSize: repository.DefaultPageSize,
		},
		{
			name:      "size is capped",
			req:       repository.PageRequest{Page: 0, Size: 1000},
			wantLen:   repository.MaxPageSize,
			wantFirst: "제목1", wantLast: fmt.Sprintf("제목%d", repository.MaxPageSize),
			wantNumber: 0, wantSize: repository.MaxPageSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := db.Boards().FindAll(ctx, tt.req)
			require.NoError(t, err)

			require.Len(t, page.Content, tt.wantLen)
			assert.Equal(t, tt.wantFirst, page.Content[0].Title)
			assert.Equal(t, tt.wantLast, page.Content[len(page.Content)-1].Title)
			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Equal(t, tt.wantSize, page.Size)
			assert.Equal(t, int64(SeedBoardCount), page.TotalElements)
		})
	}
}

func TestBoardFindAll_BeyondLastPage(t *testing.T) {
	db := newSeededDB(t)

	page, err := db.Boards().FindAll(context.Background(), repository.PageRequest{Page: 40, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.NotNil(t, page.Content)
	assert.Equal(t, 20, page.TotalPages)
	assert.False(t, page.HasNext())
}

func TestBoardFindAll_HugePageIsEmpty(t *testing.T) {
	db := newSeededDB(t)

	page, err := db.Boards().FindAll(context.Background(), repository.PageRequest{Page: 922337203685477581, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Content, "an out-of-range page must not fall back to the first rows")
	assert.Equal(t, repository.MaxPage, page.Number)
}

func TestBoardFindAll_Empty(t *testing.T) {
	db := newTestDB(t)

	page, err := db.Boards().FindAll(context.Background(), repository.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, int64(0), page.TotalElements)
	assert.Equal(t, 0, page.TotalPages)
}
