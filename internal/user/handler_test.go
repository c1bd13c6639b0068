package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserService struct{ mock.Mock }

func (m *MockUserService) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockUserService) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockUserService) GetByID(ctx context.Context, userID int) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserService) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*User), args.Error(2)
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func setupUserRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(svc)
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)
	router.GET("/me", func(c *gin.Context) {
		c.Set("user_id", 1)
		h.GetMe(c)
	})
	return router
}

func TestRegisterHandler_Success(t *testing.T) {
	svc := new(MockUserService)
	router := setupUserRouter(svc)

	svc.On("Register", mock.Anything, mock.AnythingOfType("RegisterRequest")).
		Return(&User{ID: 1, Email: "alice@example.com"}, "access", "refresh", nil)

	w := performJSON(t, router, "POST", "/auth/register", RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
		Phone:    "677001122",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access", resp.AccessToken)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	svc := new(MockUserService)
	router := setupUserRouter(svc)

	svc.On("Register", mock.Anything, mock.AnythingOfType("RegisterRequest")).
		Return(nil, "", "", ErrEmailExists)

	w := performJSON(t, router, "POST", "/auth/register", RegisterRequest{
		Name:     "Alice",
		Email:    "taken@example.com",
		Password: "password123",
		Phone:    "677001122",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	svc := new(MockUserService)
	router := setupUserRouter(svc)

	w := performJSON(t, router, "POST", "/auth/register", gin.H{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Register")
}

func TestLoginHandler_BadCredentials(t *testing.T) {
	svc := new(MockUserService)
	router := setupUserRouter(svc)

	svc.On("Login", mock.Anything, mock.AnythingOfType("LoginRequest")).
		Return(nil, "", "", ErrInvalidCredentials)

	w := performJSON(t, router, "POST", "/auth/login", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMe(t *testing.T) {
	svc := new(MockUserService)
	router := setupUserRouter(svc)

	svc.On("GetByID", mock.Anything, 1).Return(&User{ID: 1, Name: "Alice"}, nil)

	w := performJSON(t, router, "GET", "/me", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice")
}
