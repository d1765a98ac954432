package handler

import (
	"net/http"
	"strconv"

	"natours/internal/middleware"
	"natours/internal/model"
	"natours/internal/service"

	"github.com/gin-gonic/gin"
)

// TourHandler handles tour CRUD and aggregation requests
type TourHandler struct {
	service    service.TourService
	production bool
}

// NewTourHandler creates a new TourHandler
func NewTourHandler(s service.TourService, production bool) *TourHandler {
	return &TourHandler{service: s, production: production}
}

// parseTourFilters reads listing filters from the query string. Secret
// tours are only listable by admins and lead guides.
func parseTourFilters(c *gin.Context) model.TourFilters {
	filters := model.TourFilters{SortBy: c.Query("sort")}

	if difficulty := c.Query("difficulty"); difficulty != "" {
		filters.Difficulty = &difficulty
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if v, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			filters.MaxPrice = &v
		}
	}
	if minRating := c.Query("min_rating"); minRating != "" {
		if v, err := strconv.ParseFloat(minRating, 64); err == nil {
			filters.MinRating = &v
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			filters.Limit = v
		}
	}

	if user, ok := middleware.GetCurrentUser(c); ok {
		filters.IncludeSecret = user.Role == model.RoleAdmin || user.Role == model.RoleLeadGuide
	}
	return filters
}

func (h *TourHandler) GetAllTours(c *gin.Context) {
	tours, err := h.service.GetAll(c.Request.Context(), parseTourFilters(c))
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"tours": tours})
}

func (h *TourHandler) GetTour(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid tour ID"})
		return
	}

	tour, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"tour": tour})
}

func (h *TourHandler) CreateTour(c *gin.Context) {
	var req model.CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid request: " + err.Error()})
		return
	}

	tour, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusCreated, gin.H{"tour": tour})
}

func (h *TourHandler) UpdateTour(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid tour ID"})
		return
	}

	var req model.UpdateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid request: " + err.Error()})
		return
	}

	tour, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"tour": tour})
}

func (h *TourHandler) DeleteTour(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid tour ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, h.production)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// TopCheap serves the pre-filled "5 best cheap tours" listing
func (h *TourHandler) TopCheap(c *gin.Context) {
	tours, err := h.service.TopCheap(c.Request.Context())
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"tours": tours})
}

// TourStats serves per-difficulty aggregates
func (h *TourHandler) TourStats(c *gin.Context) {
	stats, err := h.service.DifficultyStats(c.Request.Context())
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"stats": stats})
}

// RegisterTourRoutes registers tour routes. Reads are public; writes are
// limited to admins and lead guides.
func (h *TourHandler) RegisterTourRoutes(rg *gin.RouterGroup, isLoggedInMW, protectMW, adminOrLeadMW gin.HandlerFunc) {
	tours := rg.Group("/tours")
	{
		tours.GET("", isLoggedInMW, h.GetAllTours)
		tours.GET("/top-5-cheap", h.TopCheap)
		tours.GET("/stats", h.TourStats)
		tours.GET("/:id", h.GetTour)

		tours.POST("", protectMW, adminOrLeadMW, h.CreateTour)
		tours.PATCH("/:id", protectMW, adminOrLeadMW, h.UpdateTour)
		tours.DELETE("/:id", protectMW, adminOrLeadMW, h.DeleteTour)
	}
}
