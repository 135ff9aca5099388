package review

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace/internal/auth"
	"marketplace/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Submit(ctx context.Context, reviewerID, taskID string, in SubmitReviewInput) (*models.Review, error) {
	args := m.Called(ctx, reviewerID, taskID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) ListForUser(ctx context.Context, userID string) ([]models.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func setupTestRouter(service ReviewServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		c.Set(auth.UserIDKey, "c1")
		c.Set(auth.RoleKey, models.RoleCustomer)
	})
	NewReviewController(service).SetupRoutes(api)
	return router
}

func TestSubmitHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{name: "created", body: `{"rating":5,"comment":"great"}`, wantCode: http.StatusCreated},
		{name: "rating too high", body: `{"rating":6}`, wantCode: http.StatusBadRequest},
		{name: "rating missing", body: `{"comment":"ok"}`, wantCode: http.StatusBadRequest},
		{name: "comment too long", body: `{"rating":3,"comment":"` + strings.Repeat("a", 501) + `"}`, wantCode: http.StatusBadRequest},
		{name: "duplicate", body: `{"rating":4}`, err: ErrAlreadyReviewed, wantCode: http.StatusConflict},
		{name: "not completed", body: `{"rating":4}`, err: ErrTaskNotCompleted, wantCode: http.StatusConflict},
		{name: "outsider", body: `{"rating":4}`, err: ErrForbidden, wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockReviewService)
			router := setupTestRouter(mockService)
			if tt.err != nil {
				mockService.On("Submit", mock.Anything, "c1", "t1", mock.Anything).Return(nil, tt.err)
			} else {
				mockService.On("Submit", mock.Anything, "c1", "t1", mock.Anything).Return(&models.Review{ID: "r1", Rating: 5}, nil)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/t1/reviews", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestListForUserHandler(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(mockService)
	mockService.On("ListForUser", mock.Anything, "w1").Return([]models.Review{{ID: "r1"}, {ID: "r2"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/w1/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}
