// Package repository declares the storage contracts the services depend on.
// Implementations live in sub-packages (see repository/sqlstore).
//
// Lookups that find nothing return an error wrapping apperror.ErrNotFound.
package repository

import (
	"context"
	"math"

	"github.com/sakif/boardsvc/internal/model"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MaxPage keeps Page*Size inside an int for every accepted size.
const MaxPage = math.MaxInt / MaxPageSize

// PageRequest asks for one page of an ordered result. Page is zero-based.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request into a range every store accepts.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of rows to skip; call it on a normalized request.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByName(ctx context.Context, name string) (*model.User, error)
	// Save inserts the user when ID is zero and updates it otherwise.
	// On insert the generated ID is written back into user.
	Save(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int64, error)
}

type BoardRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Board, error)
	FindByTitle(ctx context.Context, title string) (*model.Board, error)
	FindAll(ctx context.Context, page PageRequest) (*model.Page[model.Board], error)
	Save(ctx context.Context, board *model.Board) error
	Count(ctx context.Context) (int64, error)
}
