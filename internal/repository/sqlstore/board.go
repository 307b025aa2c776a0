package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/model"
	"github.com/sakif/boardsvc/internal/repository"
)

var _ repository.BoardRepository = (*BoardDB)(nil)

// BoardDB is the gorm-backed board repository. It never preloads Board.User.
type BoardDB struct {
	db *gorm.DB
}

func (b *BoardDB) FindByID(ctx context.Context, id int64) (*model.Board, error) {
	return b.first(ctx, "id = ?", id)
}

func (b *BoardDB) FindByTitle(ctx context.Context, title string) (*model.Board, error) {
	return b.first(ctx, "title = ?", title)
}

func (b *BoardDB) first(ctx context.Context, query string, arg any) (*model.Board, error) {
	var board model.Board
	err := b.db.WithContext(ctx).Where(query, arg).First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("board", arg)
		}
		return nil, fmt.Errorf("sqlstore: finding board by %q: %w", query, err)
	}
	return &board, nil
}

// FindAll returns one page of boards in insertion (id) order.
// The page request is normalized here, so callers may pass raw user input.
func (b *BoardDB) FindAll(ctx context.Context, req repository.PageRequest) (*model.Page[model.Board], error) {
	req = req.Normalize()

	var total int64
	if err := b.db.WithContext(ctx).Model(&model.Board{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: counting boards: %w", err)
	}

	boards := make([]model.Board, 0, req.Size)
	err := b.db.WithContext(ctx).
		Order("id ASC").
		Limit(req.Size).
		Offset(req.Offset()).
		Find(&boards).Error
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing boards (page=%d size=%d): %w", req.Page, req.Size, err)
	}

	return model.NewPage(boards, req.Page, req.Size, total), nil
}

// Save inserts (ID == 0) or updates a board. A non-nil board.User only
// contributes its ID; the user row itself is never written from here.
func (b *BoardDB) Save(ctx context.Context, board *model.Board) error {
	if board.User != nil && board.User.ID != 0 {
		board.UserID = board.User.ID
	}
	now := time.Now()
	if board.CreatedDate.IsZero() {
		board.CreatedDate = now
	}
	if board.UpdatedDate.IsZero() {
		board.UpdatedDate = now
	}
	if board.BoardType == "" {
		board.BoardType = model.BoardFree
	}

	tx := b.db.WithContext(ctx).Omit(clause.Associations)
	if board.ID == 0 {
		if err := tx.Create(board).Error; err != nil {
			return fmt.Errorf("sqlstore: inserting board %q: %w", board.Title, err)
		}
		return nil
	}

	result := tx.Model(board).Select("*").Updates(board)
	if result.Error != nil {
		return fmt.Errorf("sqlstore: updating board %d: %w", board.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("board", board.ID)
	}
	return nil
}

func (b *BoardDB) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := b.db.WithContext(ctx).Model(&model.Board{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("sqlstore: counting boards: %w", err)
	}
	return n, nil
}
