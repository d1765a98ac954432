package handler

import (
	"net/http"
	"strconv"

	"natours/internal/middleware"
	"natours/internal/model"
	"natours/internal/service"

	"github.com/gin-gonic/gin"
)

// ReviewHandler handles review requests. Every route requires
// authentication; creation is limited to the plain user role.
type ReviewHandler struct {
	service    service.ReviewService
	production bool
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(s service.ReviewService, production bool) *ReviewHandler {
	return &ReviewHandler{service: s, production: production}
}

func (h *ReviewHandler) GetAllReviews(c *gin.Context) {
	var tourID *int
	if raw := c.Query("tour_id"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			tourID = &v
		}
	}

	reviews, err := h.service.GetAll(c.Request.Context(), tourID)
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"reviews": reviews})
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid review ID"})
		return
	}

	review, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"review": review})
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	currentUser, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You are not logged in"})
		return
	}

	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid request: " + err.Error()})
		return
	}

	review, err := h.service.Create(c.Request.Context(), currentUser.ID, req)
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusCreated, gin.H{"review": review})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	currentUser, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You are not logged in"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid review ID"})
		return
	}

	var req model.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid request: " + err.Error()})
		return
	}

	review, err := h.service.Update(c.Request.Context(), id, currentUser.ID, currentUser.Role, req)
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"review": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	currentUser, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You are not logged in"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid review ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, currentUser.ID, currentUser.Role); err != nil {
		writeError(c, err, h.production)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// RegisterReviewRoutes registers review routes behind the auth guard
func (h *ReviewHandler) RegisterReviewRoutes(rg *gin.RouterGroup, protectMW, userOnlyMW, userOrAdminMW gin.HandlerFunc) {
	reviews := rg.Group("/reviews")
	reviews.Use(protectMW)
	{
		reviews.GET("", h.GetAllReviews)
		reviews.POST("", userOnlyMW, h.CreateReview)
		reviews.GET("/:id", userOrAdminMW, h.GetReview)
		reviews.PATCH("/:id", userOrAdminMW, h.UpdateReview)
		reviews.DELETE("/:id", userOrAdminMW, h.DeleteReview)
	}
}
