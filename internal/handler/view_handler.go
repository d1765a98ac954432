package handler

import (
	"errors"
	"net/http"

	"natours/internal/middleware"
	"natours/internal/model"
	"natours/internal/service"

	"github.com/gin-gonic/gin"
)

// ViewHandler renders the HTML pages. Pages never fail with JSON; errors
// land on the error template.
type ViewHandler struct {
	tours   service.TourService
	reviews service.ReviewService
}

// NewViewHandler creates a new ViewHandler
func NewViewHandler(tours service.TourService, reviews service.ReviewService) *ViewHandler {
	return &ViewHandler{tours: tours, reviews: reviews}
}

func templateData(c *gin.Context, extra gin.H) gin.H {
	data := gin.H{}
	if user, ok := middleware.GetCurrentUser(c); ok {
		data["User"] = user
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func (h *ViewHandler) renderError(c *gin.Context, status int, msg string) {
	c.HTML(status, "error.html", templateData(c, gin.H{"Title": "Something went wrong!", "Message": msg}))
}

// Overview renders the tour listing landing page
func (h *ViewHandler) Overview(c *gin.Context) {
	tours, err := h.tours.GetAll(c.Request.Context(), model.TourFilters{})
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, "Could not load tours, please try again later")
		return
	}
	c.HTML(http.StatusOK, "overview.html", templateData(c, gin.H{"Title": "All Tours", "Tours": tours}))
}

// Tour renders a single tour's detail page with its reviews
func (h *ViewHandler) Tour(c *gin.Context) {
	tour, err := h.tours.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrTourNotFound) {
			h.renderError(c, http.StatusNotFound, "There is no tour with that name")
			return
		}
		h.renderError(c, http.StatusInternalServerError, "Could not load the tour, please try again later")
		return
	}

	reviews, err := h.reviews.GetAll(c.Request.Context(), &tour.ID)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, "Could not load reviews, please try again later")
		return
	}

	c.HTML(http.StatusOK, "tour.html", templateData(c, gin.H{
		"Title":   tour.Name,
		"Tour":    tour,
		"Reviews": reviews,
	}))
}

// LoginForm renders the login page
func (h *ViewHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", templateData(c, gin.H{"Title": "Log into your account"}))
}

// Account renders the logged-in user's account page
func (h *ViewHandler) Account(c *gin.Context) {
	c.HTML(http.StatusOK, "account.html", templateData(c, gin.H{"Title": "Your account"}))
}

// RegisterViewRoutes registers the HTML routes at the router root
func (h *ViewHandler) RegisterViewRoutes(router *gin.Engine, isLoggedInMW, protectMW gin.HandlerFunc) {
	router.GET("/", isLoggedInMW, h.Overview)
	router.GET("/tour/:slug", isLoggedInMW, h.Tour)
	router.GET("/login", isLoggedInMW, h.LoginForm)
	router.GET("/me", protectMW, h.Account)
}
