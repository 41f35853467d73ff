package users

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"
	"stockroom/pkg/roles"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) PersistUser(req models.CreateUserRequest, hashedPassword []byte) error {
	args := m.Called(req, hashedPassword)
	return args.Error(0)
}

func (m *MockUserRepository) GetUser(id int) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUsers() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(id int, changes *models.UserChanges) error {
	args := m.Called(id, changes)
	return args.Error(0)
}

func setupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("userID", "1")
	c.Set("role", "admin")
	return c, w
}

func TestRegisterUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepository)
	handler := NewHandler(mockRepo)

	tests := []struct {
		name           string
		payload        models.CreateUserRequest
		setupMock      func()
		expectedStatus int
	}{
		{
			name: "successful registration",
			payload: models.CreateUserRequest{
				Username: "jsmith",
				Password: "password123",
				Fullname: "Jan Smith",
				Role:     "employee",
			},
			setupMock: func() {
				mockRepo.On("PersistUser", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid role rejected",
			payload: models.CreateUserRequest{
				Username: "jsmith",
				Password: "password123",
				Role:     "superuser",
			},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			payload: models.CreateUserRequest{
				Username: "jsmith",
				Password: "password123",
				Role:     "employee",
			},
			setupMock: func() {
				mockRepo.On("PersistUser", mock.Anything, mock.Anything).
					Return(custom_error.WrapDBError("duplicate", "23505"))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "repository error",
			payload: models.CreateUserRequest{
				Username: "jsmith",
				Password: "password123",
				Role:     "employee",
			},
			setupMock: func() {
				mockRepo.On("PersistUser", mock.Anything, mock.Anything).Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			tt.setupMock()
			c, w := setupTestContext()

			body, _ := json.Marshal(tt.payload)
			c.Request = httptest.NewRequest("POST", "/users", bytes.NewBuffer(body))

			handler.RegisterUser(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepository)
	handler := NewHandler(mockRepo)

	managerRole := roles.Manager

	tests := []struct {
		name           string
		userID         string
		payload        models.UpdateUserRequest
		setupMock      func()
		expectedStatus int
	}{
		{
			name:   "successful role change",
			userID: "2",
			payload: models.UpdateUserRequest{
				Role: &managerRole,
			},
			setupMock: func() {
				mockRepo.On("GetUser", 2).Return(&models.User{ID: 2, Username: "jsmith", Role: "employee"}, nil).Once()
				mockRepo.On("UpdateUser", 2, mock.MatchedBy(func(changes *models.UserChanges) bool {
					return changes.Role != nil && *changes.Role == "manager"
				})).Return(nil)
				mockRepo.On("GetUser", 2).Return(&models.User{ID: 2, Username: "jsmith", Role: "manager"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "short password rejected",
			userID: "2",
			payload: models.UpdateUserRequest{
				Password: stringPtr("abc"),
			},
			setupMock: func() {
				mockRepo.On("GetUser", 2).Return(&models.User{ID: 2, Role: "employee"}, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "no changes returns current user",
			userID:  "2",
			payload: models.UpdateUserRequest{},
			setupMock: func() {
				mockRepo.On("GetUser", 2).Return(&models.User{ID: 2, Role: "employee"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "user not found",
			userID: "7",
			payload: models.UpdateUserRequest{
				Fullname: stringPtr("New Name"),
			},
			setupMock: func() {
				mockRepo.On("GetUser", 7).Return(nil, custom_error.NewNotFound("user", 7))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			tt.setupMock()
			c, w := setupTestContext()

			body, _ := json.Marshal(tt.payload)
			c.Request = httptest.NewRequest("PATCH", "/users/"+tt.userID, bytes.NewBuffer(body))
			c.Params = gin.Params{{Key: "id", Value: tt.userID}}

			handler.UpdateUser(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGetUserScopedToSelf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepository)
	handler := NewHandler(mockRepo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("userID", "5")
	c.Set("role", "employee")
	c.Request = httptest.NewRequest("GET", "/users/2", nil)
	c.Params = gin.Params{{Key: "id", Value: "2"}}

	handler.GetUser(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockRepo.AssertNotCalled(t, "GetUser", mock.Anything)
}

func TestDeactivateOwnAccountRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepository)
	handler := NewHandler(mockRepo)

	c, w := setupTestContext()
	c.Request = httptest.NewRequest("POST", "/users/1/deactivate", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.DeactivateUser(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func stringPtr(s string) *string {
	return &s
}
