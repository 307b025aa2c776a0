package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/model"
	"github.com/sakif/boardsvc/internal/repository"
)

// BoardService is the read side of the bulletin board.
type BoardService struct {
	boards repository.BoardRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewBoardService(boards repository.BoardRepository, users repository.UserRepository, logger *slog.Logger) *BoardService {
	return &BoardService{boards: boards, users: users, logger: logger}
}

// ListBoards returns one page of boards in id order. Out-of-range paging
// values are clamped by PageRequest.Normalize.
func (s *BoardService) ListBoards(ctx context.Context, req repository.PageRequest) (*model.Page[model.Board], error) {
	page, err := s.boards.FindAll(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("service/board: listing boards: %w", err)
	}
	return page, nil
}

// GetBoard returns the board with id, or an empty Board when there is none.
// The empty value lets the form view render blank fields for a new post.
func (s *BoardService) GetBoard(ctx context.Context, id int64) (*model.Board, error) {
	board, err := s.boards.FindByID(ctx, id)
	if apperror.IsNotFound(err) {
		s.logger.DebugContext(ctx, "board not found, returning empty board", "id", id)
		return &model.Board{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service/board: getting board %d: %w", id, err)
	}
	return board, nil
}

// Owner loads the board's user on demand and caches it on the board.
// An empty board has no owner and yields nil.
func (s *BoardService) Owner(ctx context.Context, board *model.Board) (*model.User, error) {
	if board.IsZero() || board.UserID == 0 {
		return nil, nil
	}
	if board.User != nil {
		return board.User, nil
	}
	user, err := s.users.FindByID(ctx, board.UserID)
	if err != nil {
		return nil, fmt.Errorf("service/board: loading owner of board %d: %w", board.ID, err)
	}
	board.User = user
	return user, nil
}
