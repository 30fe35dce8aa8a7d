package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealflow/auth"
	"dealflow/internal/user"
	apiError "dealflow/internal/errors"
	"dealflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(u *user.User) error {
	args := m.Called(u)
	return args.Error(0)
}

func (m *MockService) Login(email, password string) (*user.User, error) {
	args := m.Called(email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockService) GetUserByID(ctx context.Context, id uint64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockService) DeactivateUser(id uint64) error {
	args := m.Called(id)
	return args.Error(0)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	return router
}

func TestRegister_Success(t *testing.T) {
	mockService := new(MockService)
	handler := user.NewHandler(mockService)
	router := setupRouter()

	mockService.On("Register", mock.MatchedBy(func(u *user.User) bool {
		return u.Email == "creator@example.com"
	})).Return(nil).Run(func(args mock.Arguments) {
		u := args.Get(0).(*user.User)
		u.ID = 1
	})

	router.POST("/register", handler.Register)

	body, _ := json.Marshal(gin.H{
		"name":     "Test Creator",
		"email":    "creator@example.com",
		"password": "password123",
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	mockService.AssertExpectations(t)
}

func TestRegister_InvalidEmail(t *testing.T) {
	mockService := new(MockService)
	handler := user.NewHandler(mockService)
	router := setupRouter()

	router.POST("/register", handler.Register)

	body, _ := json.Marshal(gin.H{
		"name":     "Test Creator",
		"email":    "not-an-email",
		"password": "password123",
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockService.AssertNotCalled(t, "Register", mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	auth.Setup("test-secret")

	mockService := new(MockService)
	handler := user.NewHandler(mockService)
	router := setupRouter()

	mockService.On("Login", "creator@example.com", "password123").Return(&user.User{
		ID:       1,
		Name:     "Test Creator",
		Email:    "creator@example.com",
		IsActive: true,
	}, nil)

	router.POST("/login", handler.Login)

	body, _ := json.Marshal(gin.H{
		"email":    "creator@example.com",
		"password": "password123",
	})
	req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestLogin_WrongPassword(t *testing.T) {
	mockService := new(MockService)
	handler := user.NewHandler(mockService)
	router := setupRouter()

	mockService.On("Login", "creator@example.com", "wrong").
		Return(nil, apiError.Unauthorized("Wrong password", nil))

	router.POST("/login", handler.Login)

	body, _ := json.Marshal(gin.H{
		"email":    "creator@example.com",
		"password": "wrong",
	})
	req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
