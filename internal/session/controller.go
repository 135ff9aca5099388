package session

import (
	"errors"
	"net/http"

	"marketplace/internal/auth"
	"marketplace/internal/navigation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SessionController struct {
	service SessionServiceInterface
}

func NewSessionController(service SessionServiceInterface) *SessionController {
	return &SessionController{
		service: service,
	}
}

func (sc *SessionController) SetupRoutes(api gin.IRouter) {
	api.GET("/session", sc.Current)
	api.POST("/session/actions", sc.Apply)
}

func (sc *SessionController) Current(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	role, _ := auth.GetRoleFromContext(c)

	view, err := sc.service.Current(c.Request.Context(), userID, role)
	if err != nil {
		logrus.WithError(err).Error("Failed to load session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (sc *SessionController) Apply(c *gin.Context) {
	var action navigation.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	role, _ := auth.GetRoleFromContext(c)

	view, err := sc.service.Apply(c.Request.Context(), userID, role, action)
	if err != nil {
		switch {
		case errors.Is(err, navigation.ErrScreenForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case isNavigationError(err):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logrus.WithError(err).Error("Failed to apply navigation action")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

func isNavigationError(err error) bool {
	for _, target := range []error{
		navigation.ErrUnknownScreen,
		navigation.ErrUnknownAction,
		navigation.ErrNotAuthenticated,
		navigation.ErrAlreadyAuthenticated,
		navigation.ErrInvalidRole,
		navigation.ErrTransitionNotAllowed,
		navigation.ErrTaskRequired,
		navigation.ErrBidRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
