package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/model"
)

// createTestUser is a test helper that saves a user and fails the test if it errors.
func createTestUser(t *testing.T, u *UserDB, name, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:       name,
		Email:      email,
		Principal:  "principal-" + name,
		SocialType: model.SocialGoogle,
	}
	if err := u.Save(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserSave_Insert(t *testing.T) {
	u := newTestDB(t).Users()

	user := &model.User{Name: "tester", Email: "tester@example.com"}
	if err := u.Save(context.Background(), user); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if user.ID == 0 {
		t.Error("Save() did not set user.ID")
	}
	if user.CreatedDate.IsZero() {
		t.Error("Save() did not set user.CreatedDate")
	}
}

func TestUserSave_KeepsGivenCreatedDate(t *testing.T) {
	u := newTestDB(t).Users()

	created := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	user := &model.User{Name: "old", Email: "old@example.com", CreatedDate: created}
	if err := u.Save(context.Background(), user); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := u.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !found.CreatedDate.Equal(created) {
		t.Errorf("CreatedDate = %v, want %v", found.CreatedDate, created)
	}
}

func TestUserSave_Update(t *testing.T) {
	u := newTestDB(t).Users()
	user := createTestUser(t, u, "before", "same@example.com")

	user.Name = "after"
	user.SocialType = model.SocialKakao
	if err := u.Save(context.Background(), user); err != nil {
		t.Fatalf("Save() update error = %v", err)
	}

	found, err := u.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Name != "after" {
		t.Errorf("Name = %q, want %q", found.Name, "after")
	}
	if found.SocialType != model.SocialKakao {
		t.Errorf("SocialType = %q, want %q", found.SocialType, model.SocialKakao)
	}

	n, _ := u.Count(context.Background())
	if n != 1 {
		t.Errorf("Count() = %d after update, want 1", n)
	}
}

func TestUserSave_UpdateMissing(t *testing.T) {
	u := newTestDB(t).Users()

	err := u.Save(context.Background(), &model.User{ID: 999, Name: "ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Save() error = %v, want ErrNotFound", err)
	}
}

func TestUserFindByEmail(t *testing.T) {
	u := newTestDB(t).Users()
	created := createTestUser(t, u, "mail_lookup", "lookup@example.com")

	found, err := u.FindByEmail(context.Background(), "lookup@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}
	if found.Principal != "principal-mail_lookup" {
		t.Errorf("Principal = %q", found.Principal)
	}
}

func TestUserFindByEmail_DuplicatesReturnOldest(t *testing.T) {
	u := newTestDB(t).Users()
	first := createTestUser(t, u, "first", "dup@example.com")
	createTestUser(t, u, "second", "dup@example.com")

	found, err := u.FindByEmail(context.Background(), "dup@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if found.ID != first.ID {
		t.Errorf("ID = %d, want oldest %d", found.ID, first.ID)
	}
}

func TestUserFindByEmail_NotFound(t *testing.T) {
	u := newTestDB(t).Users()

	_, err := u.FindByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FindByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestUserFindByName(t *testing.T) {
	u := newTestDB(t).Users()
	created := createTestUser(t, u, "by_name", "by_name@example.com")

	found, err := u.FindByName(context.Background(), "by_name")
	if err != nil {
		t.Fatalf("FindByName() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}

	if _, err := u.FindByName(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FindByName(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserFindByID_NotFound(t *testing.T) {
	u := newTestDB(t).Users()

	_, err := u.FindByID(context.Background(), 12345)
	if err == nil {
		t.Fatal("FindByID() should have returned an error for a missing id")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FindByID() error = %v, want ErrNotFound", err)
	}
}
