package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakif/boardsvc/internal/model"
)

// Seed defaults: one local account owning SeedBoardCount free boards.
const (
	SeedUserName     = "user1"
	SeedUserEmail    = "test@naver.com"
	SeedUserPassword = "1234"
	SeedBoardCount   = 200
)

// PasswordHasher hashes the seed user's password.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// Seed fills an empty database with the demo user and boards.
// It is a no-op when any user already exists, so it is safe to run on every start.
// It reports whether anything was written.
func (db *DB) Seed(ctx context.Context, hasher PasswordHasher) (bool, error) {
	n, err := db.Users().Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hash, err := hasher.Hash(SeedUserPassword)
	if err != nil {
		return false, fmt.Errorf("sqlstore: hashing seed password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Name:        SeedUserName,
		Email:       SeedUserEmail,
		Password:    hash,
		CreatedDate: now,
	}

	err = db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("creating seed user: %w", err)
		}

		boards := make([]model.Board, 0, SeedBoardCount)
		for i := 1; i <= SeedBoardCount; i++ {
			boards = append(boards, model.Board{
				Title:       fmt.Sprintf("제목%d", i),
				SubTitle:    fmt.Sprintf("idx : %d", i),
				Content:     fmt.Sprintf("내용%d", i),
				BoardType:   model.BoardFree,
				CreatedDate: now,
				UpdatedDate: now,
				UserID:      user.ID,
			})
		}
		// Batches keep each INSERT under sqlite's bound-parameter limit.
		if err := tx.Omit(clause.Associations).CreateInBatches(boards, 50).Error; err != nil {
			return fmt.Errorf("creating seed boards: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("sqlstore: seeding: %w", err)
	}

	db.logger.Info("seeded database",
		slog.Int64("userID", user.ID),
		slog.String("user", user.Name),
		slog.Int("boards", SeedBoardCount),
	)
	return true, nil
}
