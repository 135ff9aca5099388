package payment

import (
	"errors"
	"net/http"

	"marketplace/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PaymentController struct {
	service PaymentServiceInterface
}

func NewPaymentController(service PaymentServiceInterface) *PaymentController {
	return &PaymentController{service: service}
}

func (pc *PaymentController) SetupRoutes(api gin.IRouter, workers gin.IRouter) {
	api.GET("/tasks/:id/payment", pc.GetTaskPayment)
	workers.GET("/workers/me/earnings", pc.GetEarnings)
}

func (pc *PaymentController) GetTaskPayment(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	summary, err := pc.service.TaskSummary(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		case errors.Is(err, ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		case errors.Is(err, ErrNoAcceptedBid):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logrus.WithError(err).Error("Failed to build payment summary")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (pc *PaymentController) GetEarnings(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	earnings, err := pc.service.WorkerEarnings(c.Request.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to load earnings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, earnings)
}
