package tracking

import (
	"errors"
	"net/http"

	"marketplace/internal/auth"
	"marketplace/internal/task"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TrackingController struct {
	service TrackingServiceInterface
}

func NewTrackingController(service TrackingServiceInterface) *TrackingController {
	return &TrackingController{
		service: service,
	}
}

func (tc *TrackingController) SetupRoutes(api gin.IRouter, workers gin.IRouter) {
	workers.PUT("/location", tc.UpdateLocation)
	api.GET("/workers/:id/location", tc.GetLocation)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCoordinates):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, ErrLocationNotFound), errors.Is(err, task.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logrus.WithError(err).Error("Tracking request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (tc *TrackingController) UpdateLocation(c *gin.Context) {
	var req UpdateLocationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	loc, err := tc.service.UpdateLocation(c.Request.Context(), userID, *req.Latitude, *req.Longitude, req.TaskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loc)
}

func (tc *TrackingController) GetLocation(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	role, _ := auth.GetRoleFromContext(c)

	loc, err := tc.service.GetLocation(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loc)
}
