package user

import (
	"context"
	"errors"
	"testing"

	"homeserve/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, name, email, passwordHash, phone, role string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, phone, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, id int, name, phone string) (*User, error) {
	args := m.Called(ctx, id, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) UpdateRole(ctx context.Context, id int, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func TestRegister_Success(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewService(repo, "test-secret")

	repo.On("EmailExists", mock.Anything, "alice@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, "Alice", "alice@example.com", mock.AnythingOfType("string"), "677001122", auth.RoleSeeker).
		Return(&User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: auth.RoleSeeker}, nil)

	user, access, refresh, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
		Phone:    "677001122",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	repo.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewService(repo, "test-secret")

	repo.On("EmailExists", mock.Anything, "taken@example.com").Return(true, nil)

	_, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Alice",
		Email:    "taken@example.com",
		Password: "password123",
		Phone:    "677001122",
	})

	assert.ErrorIs(t, err, ErrEmailExists)
	repo.AssertNotCalled(t, "Create")
}

func TestLogin_Success(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewService(repo, "test-secret")

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(&User{ID: 1, Email: "alice@example.com", PasswordHash: hash, Role: auth.RoleSeeker}, nil)

	user, access, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.NotEmpty(t, access)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewService(repo, "test-secret")

	hash, _ := auth.HashPassword("password123")
	repo.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(&User{ID: 1, Email: "alice@example.com", PasswordHash: hash}, nil)

	_, _, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewService(repo, "test-secret")

	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, errors.New("no rows"))

	_, _, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "password123",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken_Success(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewService(repo, "test-secret")

	_, refresh, err := auth.GenerateTokens(3, "bob@example.com", auth.RoleProvider, "test-secret")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, 3).
		Return(&User{ID: 3, Email: "bob@example.com", Role: auth.RoleProvider}, nil)

	access, user, err := svc.RefreshToken(context.Background(), refresh)

	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.Equal(t, 3, user.ID)
}
