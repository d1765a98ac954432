package handler

import (
	"net/http"

	"natours/internal/middleware"
	"natours/internal/model"
	"natours/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles signup, login and the password lifecycle
type AuthHandler struct {
	service      service.AuthService
	cookieMaxAge int // seconds
	production   bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, cookieExpiresDays int, production bool) *AuthHandler {
	return &AuthHandler{
		service:      s,
		cookieMaxAge: cookieExpiresDays * 24 * 60 * 60,
		production:   production,
	}
}

// sendToken sets the auth cookie and writes the token plus user to the
// response body. The cookie is HTTP-only and marked secure in production.
func (h *AuthHandler) sendToken(c *gin.Context, status int, user *model.User, token string) {
	c.SetCookie(middleware.JWTCookieName, token, h.cookieMaxAge, "/", "", h.production, true)
	c.JSON(status, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Invalid request: " + err.Error()})
		return
	}

	user, token, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, h.production)
		return
	}

	h.sendToken(c, http.StatusCreated, user, token)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Please provide email and password"})
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err, h.production)
		return
	}

	h.sendToken(c, http.StatusOK, user, token)
}

// Logout overwrites the auth cookie with a dummy value that expires
// almost immediately
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.JWTCookieName, "loggedout", 10, "/", "", h.production, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Please provide your email"})
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, err, h.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Token sent to email!"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Please provide password and passwordConfirm"})
		return
	}

	user, token, err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		writeError(c, err, h.production)
		return
	}

	h.sendToken(c, http.StatusOK, user, token)
}

func (h *AuthHandler) UpdateMyPassword(c *gin.Context) {
	currentUser, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You are not logged in"})
		return
	}

	var req model.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Please provide password and newPassword"})
		return
	}

	user, token, err := h.service.UpdatePassword(c.Request.Context(), currentUser.ID, req.Password, req.NewPassword)
	if err != nil {
		writeError(c, err, h.production)
		return
	}

	h.sendToken(c, http.StatusOK, user, token)
}

// RegisterAuthRoutes registers the public auth routes plus the
// authenticated password update
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, protectMW gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.POST("/signup", h.Signup)
		users.POST("/login", h.Login)
		users.GET("/logout", h.Logout)
		users.POST("/forgotPassword", h.ForgotPassword)
		users.PATCH("/resetPassword/:token", h.ResetPassword)
		users.PATCH("/updateMyPassword", protectMW, h.UpdateMyPassword)
	}
}
