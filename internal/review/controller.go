package review

import (
	"errors"
	"net/http"

	"marketplace/internal/auth"
	"marketplace/internal/task"
	"marketplace/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReviewController struct {
	service ReviewServiceInterface
}

func NewReviewController(service ReviewServiceInterface) *ReviewController {
	return &ReviewController{
		service: service,
	}
}

func (rc *ReviewController) SetupRoutes(api gin.IRouter) {
	api.POST("/tasks/:id/reviews", rc.Submit)
	api.GET("/users/:id/reviews", rc.ListForUser)
}

func (rc *ReviewController) Submit(c *gin.Context) {
	var req SubmitReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	review, err := rc.service.Submit(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, user.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrTaskNotCompleted), errors.Is(err, ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logrus.WithError(err).Error("Failed to submit review")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (rc *ReviewController) ListForUser(c *gin.Context) {
	reviews, err := rc.service.ListForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		logrus.WithError(err).Error("Failed to list reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
	})
}
