package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/model"
	"github.com/sakif/boardsvc/internal/repository"
)

func TestListBoards_PassesRequestThrough(t *testing.T) {
	boards := new(mockBoardRepo)
	svc := NewBoardService(boards, newFakeUserRepo(), discardLogger())

	req := repository.PageRequest{Page: 1, Size: 10}
	want := model.NewPage([]model.Board{{ID: 11, Title: "제목11"}}, 1, 10, 200)
	boards.On("FindAll", mock.Anything, req).Return(want, nil).Once()

	got, err := svc.ListBoards(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, want, got)
	boards.AssertExpectations(t)
}

func TestListBoards_Error(t *testing.T) {
	boards := new(mockBoardRepo)
	svc := NewBoardService(boards, newFakeUserRepo(), discardLogger())

	dbDown := errors.New("connection refused")
	boards.On("FindAll", mock.Anything, mock.Anything).Return(nil, dbDown)

	_, err := svc.ListBoards(context.Background(), repository.PageRequest{})
	assert.ErrorIs(t, err, dbDown)
}

func TestGetBoard_Found(t *testing.T) {
	boards := new(mockBoardRepo)
	svc := NewBoardService(boards, newFakeUserRepo(), discardLogger())

	board := &model.Board{ID: 7, Title: "제목7"}
	boards.On("FindByID", mock.Anything, int64(7)).Return(board, nil)

	got, err := svc.GetBoard(context.Background(), 7)
	require.NoError(t, err)
	assert.Same(t, board, got)
}

func TestGetBoard_MissingReturnsEmptyBoard(t *testing.T) {
	boards := new(mockBoardRepo)
	svc := NewBoardService(boards, newFakeUserRepo(), discardLogger())

	boards.On("FindByID", mock.Anything, int64(999)).Return(nil, apperror.NotFound("board", 999))

	got, err := svc.GetBoard(context.Background(), 999)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.Board{}, *got)
	assert.True(t, got.IsZero())
}

func TestGetBoard_StorageErrorPropagates(t *testing.T) {
	boards := new(mockBoardRepo)
	svc := NewBoardService(boards, newFakeUserRepo(), discardLogger())

	dbDown := errors.New("connection refused")
	boards.On("FindByID", mock.Anything, int64(1)).Return(nil, dbDown)

	got, err := svc.GetBoard(context.Background(), 1)
	assert.ErrorIs(t, err, dbDown)
	assert.Nil(t, got)
}

func TestOwner(t *testing.T) {
	owner := &model.User{Name: "user1", Email: "test@naver.com"}
	users := newFakeUserRepo(owner)
	svc := NewBoardService(new(mockBoardRepo), users, discardLogger())

	t.Run("loads and caches", func(t *testing.T) {
		board := &model.Board{ID: 1, UserID: owner.ID}

		got, err := svc.Owner(context.Background(), board)
		require.NoError(t, err)
		assert.Equal(t, "user1", got.Name)
		assert.Same(t, got, board.User)
	})

	t.Run("already loaded", func(t *testing.T) {
		preloaded := &model.User{ID: owner.ID, Name: "preloaded"}
		got, err := svc.Owner(context.Background(), &model.Board{ID: 1, UserID: owner.ID, User: preloaded})
		require.NoError(t, err)
		assert.Same(t, preloaded, got)
	})

	t.Run("empty board", func(t *testing.T) {
		got, err := svc.Owner(context.Background(), &model.Board{})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("dangling owner", func(t *testing.T) {
		_, err := svc.Owner(context.Background(), &model.Board{ID: 2, UserID: 404})
		assert.True(t, apperror.IsNotFound(err), "got %v", err)
	})
}
