package handler

import (
	"net/http"
	"strconv"

	"natours/internal/middleware"
	"natours/internal/model"
	"natours/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles profile and admin user management requests
type UserHandler struct {
	service    service.UserService
	production bool
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService, production bool) *UserHandler {
	return &UserHandler{service: s, production: production}
}

// GetMe returns the authenticated user's own profile
func (h *UserHandler) GetMe(c *gin.Context) {
	currentUser, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You are not logged in"})
		return
	}
	writeData(c, http.StatusOK, gin.H{"user": currentUser})
}

// UpdateMe patches the caller's name, email and optionally their photo.
// The body may be JSON or multipart form data; password fields are
// rejected outright.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	currentUser, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You are not logged in"})
		return
	}

	var req model.UpdateMeRequest
	photo, _ := c.FormFile("photo")
	if photo != nil || c.ContentType() == "multipart/form-data" {
		if name := c.PostForm("name"); name != "" {
			req.Name = &name
		}
		if email := c.PostForm("email"); email != "" {
			req.Email = &email
		}
		if c.PostForm("password") != "" || c.PostForm("passwordConfirm") != "" {
			writeError(c, service.ErrPasswordInUpdate, h.production)
			return
		}
	} else {
		var body struct {
			Name            *string `json:"name"`
			Email           *string `json:"email"`
			Password        *string `json:"password"`
			PasswordConfirm *string `json:"passwordConfirm"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid request: " + err.Error()})
			return
		}
		if body.Password != nil || body.PasswordConfirm != nil {
			writeError(c, service.ErrPasswordInUpdate, h.production)
			return
		}
		req.Name = body.Name
		req.Email = body.Email
	}

	user, err := h.service.UpdateMe(c.Request.Context(), currentUser.ID, req, photo)
	if err != nil {
		writeError(c, err, h.production)
		return
	}

	writeData(c, http.StatusOK, gin.H{"user": user})
}

// DeleteMe soft-deletes the caller's account
func (h *UserHandler) DeleteMe(c *gin.Context) {
	currentUser, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You are not logged in"})
		return
	}

	if err := h.service.DeleteMe(c.Request.Context(), currentUser.ID); err != nil {
		writeError(c, err, h.production)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// --- Admin handlers ---

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid user ID"})
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid user ID"})
		return
	}

	var req model.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.service.AdminUpdate(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err, h.production)
		return
	}
	writeData(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid user ID"})
		return
	}

	if err := h.service.AdminDelete(c.Request.Context(), id); err != nil {
		writeError(c, err, h.production)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// RegisterUserRoutes registers the authenticated profile routes and the
// admin-only user management routes
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, protectMW, adminMW gin.HandlerFunc) {
	users := rg.Group("/users")
	users.Use(protectMW)
	{
		users.GET("/me", h.GetMe)
		users.PATCH("/updateMe", h.UpdateMe)
		users.DELETE("/deleteMe", h.DeleteMe)

		admin := users.Group("")
		admin.Use(adminMW)
		{
			admin.GET("", h.GetAllUsers)
			admin.GET("/:id", h.GetUser)
			admin.PATCH("/:id", h.UpdateUser)
			admin.DELETE("/:id", h.DeleteUser)
		}
	}
}
