package bid

import (
	"errors"
	"net/http"

	"marketplace/internal/auth"
	"marketplace/internal/matching"
	"marketplace/internal/task"
	"marketplace/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type BidController struct {
	service BidServiceInterface
}

func NewBidController(service BidServiceInterface) *BidController {
	return &BidController{
		service: service,
	}
}

func (bc *BidController) SetupRoutes(r task.Routes) {
	r.Worker.POST("/tasks/:id/bids", bc.SubmitBid)
	r.Worker.GET("/bids/mine", bc.ListMine)

	r.Customer.GET("/tasks/:id/bids", bc.ListBids)
	r.Customer.POST("/tasks/:id/bids/:bid_id/accept", bc.AcceptBid)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, ErrBidNotFound), errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, ErrSkillMismatch), errors.Is(err, ErrInvalidSortOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logrus.WithError(err).Error("Bid request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (bc *BidController) SubmitBid(c *gin.Context) {
	var req SubmitBidInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bid, err := bc.service.SubmitBid(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

// ListBids returns the bids on a task, optionally sorted with ?sort=
func (bc *BidController) ListBids(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	role, _ := auth.GetRoleFromContext(c)

	bids, err := bc.service.ListBids(c.Request.Context(), userID, role, c.Param("id"), matching.SortKey(c.Query("sort")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bids":  bids,
		"count": len(bids),
	})
}

func (bc *BidController) AcceptBid(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := bc.service.AcceptBid(c.Request.Context(), userID, c.Param("id"), c.Param("bid_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (bc *BidController) ListMine(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bids, err := bc.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bids":  bids,
		"count": len(bids),
	})
}
