package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/model"
	"github.com/sakif/boardsvc/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository that counts calls,
// so tests can assert that the cached path never touches storage.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  []*model.User
	nextID int64

	findByEmailCalls int
	saveCalls        int

	// set to a non-nil error to simulate a database failure
	findErr error
	saveErr error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo(seed ...*model.User) *fakeUserRepo {
	f := &fakeUserRepo{nextID: 1}
	for _, u := range seed {
		_ = f.Save(context.Background(), u)
	}
	f.saveCalls = 0
	return f
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findByEmailCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) FindByName(ctx context.Context, name string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", name)
}

func (f *fakeUserRepo) Save(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	if user.ID == 0 {
		user.ID = f.nextID
		f.nextID++
		copied := *user
		f.users = append(f.users, &copied)
		return nil
	}
	for i, u := range f.users {
		if u.ID == user.ID {
			copied := *user
			f.users[i] = &copied
			return nil
		}
	}
	return apperror.NotFound("user", user.ID)
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) rows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// mockBoardRepo is a testify mock of repository.BoardRepository.
type mockBoardRepo struct {
	mock.Mock
}

var _ repository.BoardRepository = (*mockBoardRepo)(nil)

func (m *mockBoardRepo) FindByID(ctx context.Context, id int64) (*model.Board, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Board)
	return b, args.Error(1)
}

func (m *mockBoardRepo) FindByTitle(ctx context.Context, title string) (*model.Board, error) {
	args := m.Called(ctx, title)
	b, _ := args.Get(0).(*model.Board)
	return b, args.Error(1)
}

func (m *mockBoardRepo) FindAll(ctx context.Context, page repository.PageRequest) (*model.Page[model.Board], error) {
	args := m.Called(ctx, page)
	p, _ := args.Get(0).(*model.Page[model.Board])
	return p, args.Error(1)
}

func (m *mockBoardRepo) Save(ctx context.Context, board *model.Board) error {
	return m.Called(ctx, board).Error(0)
}

func (m *mockBoardRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
