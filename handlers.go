package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"custdesk/models"
	"custdesk/pkg/accounts"
	"custdesk/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRoutes(r *gin.Engine) {
	setupValidator()

	r.GET("/healthz", healthHandler)

	open := r.Group("", authorize(AllowAny))
	open.POST("/register", registerHandler)
	open.POST("/login", loginHandler)
	open.POST("/refresh", refreshHandler)
	open.POST("/revoke_refresh", revokeRefreshHandler)

	r.Group("", authorize(IsAuthenticated)).GET("/me", meHandler)

	registerCustomerRoutes(r.Group("/customers", authorize(IsAuthenticated)))
	registerResource(r.Group("/professions", authorize(IsAdminUser)), professionResource{})
	registerResource(r.Group("/data_sheets", authorize(AllowAny)), dataSheetResource{})
	registerResource(r.Group("/documents", authorize(IsAuthenticatedOrReadOnly)), documentResource{})
}

func healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := stores.Ping(ctx); err != nil {
		logger.FromGin(c).Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func meHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": user.Username, "role": user.Role.Name})
}

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func registerHandler(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req) {
		return
	}
	err := accounts.Register(db.WithContext(c.Request.Context()), req.Username, req.Password)
	switch {
	case errors.Is(err, accounts.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, accounts.ErrUsernameRequired):
		badRequest(c, fieldError{Field: "username", Message: err.Error()})
		return
	case errors.Is(err, accounts.ErrPasswordTooShort):
		badRequest(c, fieldError{Field: "password", Message: err.Error()})
		return
	case err != nil:
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req) {
		return
	}
	tx := db.WithContext(c.Request.Context())
	user, err := accounts.Authenticate(tx, req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := issueAccessToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	refreshToken, err := accounts.IssueRefreshToken(tx, user.ID, refreshTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token, "refresh_token": refreshToken})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	user, fresh, err := accounts.RotateRefreshToken(db.WithContext(c.Request.Context()), req.RefreshToken, refreshTTL)
	if errors.Is(err, accounts.ErrInvalidRefresh) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := issueAccessToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "refresh_token": fresh})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	err := accounts.RevokeRefreshToken(db.WithContext(c.Request.Context()), req.RefreshToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// currentUser loads the caller named by the token, if any.
func currentUser(c *gin.Context) (*models.User, bool) {
	name := c.GetString("username")
	if name == "" {
		return nil, false
	}
	var user models.User
	if err := db.WithContext(c.Request.Context()).Preload("Role").Where("username = ?", name).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}
