package task

import (
	"errors"
	"net/http"

	"marketplace/internal/auth"
	"marketplace/internal/models"
	"marketplace/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TaskController struct {
	service TaskServiceInterface
}

func NewTaskController(service TaskServiceInterface) *TaskController {
	return &TaskController{
		service: service,
	}
}

// Routes groups the role-scoped routers a controller registers on.
type Routes struct {
	Any      gin.IRouter
	Customer gin.IRouter
	Worker   gin.IRouter
	Admin    gin.IRouter
}

// SetupRoutes setup task routes. Static paths are registered before :id so
// gin resolves /tasks/mine ahead of the parameter.
func (tc *TaskController) SetupRoutes(r Routes) {
	r.Customer.POST("/tasks", tc.PostTask)
	r.Customer.GET("/tasks/mine", tc.ListMine)
	r.Customer.POST("/tasks/:id/complete", tc.CompleteTask)

	r.Worker.GET("/tasks/available", tc.AvailableJobs)
	r.Worker.GET("/tasks/assigned", tc.ListAssigned)

	r.Any.GET("/tasks/:id", tc.GetTask)

	r.Admin.GET("/tasks", tc.ListByStatus)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logrus.WithError(err).Error("Task request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// PostTask handles task creation by a customer
func (tc *TaskController) PostTask(c *gin.Context) {
	var req PostTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, err := tc.service.PostTask(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTask returns a task with its bids
func (tc *TaskController) GetTask(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	role, _ := auth.GetRoleFromContext(c)

	task, err := tc.service.GetTask(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) ListMine(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tasks, err := tc.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

func (tc *TaskController) ListAssigned(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tasks, err := tc.service.ListAssigned(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// AvailableJobs lists open tasks matching the worker's skills
func (tc *TaskController) AvailableJobs(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tasks, err := tc.service.AvailableJobs(c.Request.Context(), userID, c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

func (tc *TaskController) CompleteTask(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, err := tc.service.CompleteTask(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) ListByStatus(c *gin.Context) {
	status := models.TaskStatus(c.DefaultQuery("status", string(models.StatusPending)))

	tasks, err := tc.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}
