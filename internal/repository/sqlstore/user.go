package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/model"
	"github.com/sakif/boardsvc/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the gorm-backed user repository.
type UserDB struct {
	db *gorm.DB
}

func (u *UserDB) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return u.first(ctx, "id = ?", id)
}

// FindByEmail returns the first user with this email. Email carries no unique
// constraint, so with duplicates the lowest id wins.
func (u *UserDB) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.first(ctx, "email = ?", email)
}

func (u *UserDB) FindByName(ctx context.Context, name string) (*model.User, error) {
	return u.first(ctx, "name = ?", name)
}

func (u *UserDB) first(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User
	err := u.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlstore: finding user by %q: %w", query, err)
	}
	return &user, nil
}

// Save inserts a new user (ID == 0) or overwrites every column of an existing one.
func (u *UserDB) Save(ctx context.Context, user *model.User) error {
	if user.CreatedDate.IsZero() {
		user.CreatedDate = time.Now()
	}

	if user.ID == 0 {
		if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
			return fmt.Errorf("sqlstore: inserting user (email=%s): %w", user.Email, err)
		}
		return nil
	}

	result := u.db.WithContext(ctx).Model(user).Select("*").Updates(user)
	if result.Error != nil {
		return fmt.Errorf("sqlstore: updating user %d: %w", user.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}

func (u *UserDB) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := u.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("sqlstore: counting users: %w", err)
	}
	return n, nil
}
