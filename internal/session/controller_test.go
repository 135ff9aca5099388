package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace/internal/auth"
	"marketplace/internal/models"
	"marketplace/internal/navigation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Current(ctx context.Context, userID string, role models.Role) (View, error) {
	args := m.Called(ctx, userID, role)
	return args.Get(0).(View), args.Error(1)
}

func (m *MockSessionService) Apply(ctx context.Context, userID string, role models.Role, action navigation.Action) (View, error) {
	args := m.Called(ctx, userID, role, action)
	return args.Get(0).(View), args.Error(1)
}

func setupTestRouter(service SessionServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		c.Set(auth.UserIDKey, "c1")
		c.Set(auth.RoleKey, models.RoleCustomer)
	})
	NewSessionController(service).SetupRoutes(api)
	return router
}

func TestCurrentHandler(t *testing.T) {
	mockService := new(MockSessionService)
	router := setupTestRouter(mockService)
	mockService.On("Current", mock.Anything, "c1", models.RoleCustomer).Return(View{
		State:   navigation.State{Screen: navigation.CustomerDashboard, Role: models.RoleCustomer, UserID: "c1"},
		Allowed: []navigation.Screen{navigation.PostTask},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"screen":"customer-dashboard"`)
	assert.Contains(t, w.Body.String(), `"allowed":["post-task"]`)
}

func TestApplyHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{name: "ok", body: `{"type":"navigate","screen":"post-task"}`, wantCode: http.StatusOK},
		{name: "missing type", body: `{"screen":"post-task"}`, wantCode: http.StatusBadRequest},
		{name: "illegal transition", body: `{"type":"navigate","screen":"payment"}`, err: fmt.Errorf("%w: x", navigation.ErrTransitionNotAllowed), wantCode: http.StatusConflict},
		{name: "needs task", body: `{"type":"navigate","screen":"bidding"}`, err: navigation.ErrTaskRequired, wantCode: http.StatusConflict},
		{name: "wrong role", body: `{"type":"navigate","screen":"admin-dashboard"}`, err: navigation.ErrScreenForbidden, wantCode: http.StatusForbidden},
		{name: "store down", body: `{"type":"logout"}`, err: assert.AnError, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockSessionService)
			router := setupTestRouter(mockService)
			mockService.On("Apply", mock.Anything, "c1", models.RoleCustomer, mock.Anything).Return(View{}, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/session/actions", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
