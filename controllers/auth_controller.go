package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openmechanic/garage-manager/config"
	"github.com/openmechanic/garage-manager/models"
	"github.com/openmechanic/garage-manager/services"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request body for exchanging a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// sessionResponse is the body returned by register and login: the token pair
// plus the authenticated user
type sessionResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    models.User `json:"user"`
}

// Register handles POST /register/ - creates a user account and logs it in
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	db := config.GetDB()
	var count int64
	if err := db.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)", req.Username, req.Email).
		Count(&count).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check existing users")
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "DUPLICATE_USER", "Username or email is already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         "mechanic",
	}
	if err := db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user")
		return
	}

	issueSession(c, http.StatusCreated, &user)
}

// Login handles POST /login/ - exchanges credentials for a token pair
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	var user models.User
	err := config.GetDB().Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Unknown username or wrong password")
			return
		}
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to look up user")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Unknown username or wrong password")
		return
	}

	issueSession(c, http.StatusOK, &user)
}

// RefreshToken handles POST /token/refresh/ - rotates the token pair. An
// invalid or expired refresh token yields 401 and the client logs out.
func RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	cfg := config.GetConfig()
	userID, err := services.ParseToken(cfg, req.Refresh, services.TokenTypeRefresh)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired")
		return
	}

	var user models.User
	if err := config.GetDB().First(&user, userID).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "User no longer exists")
		return
	}

	pair, err := services.IssueTokenPair(cfg, &user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens")
		return
	}
	c.JSON(http.StatusOK, pair)
}

func issueSession(c *gin.Context, status int, user *models.User) {
	pair, err := services.IssueTokenPair(config.GetConfig(), user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens")
		return
	}

	c.JSON(status, sessionResponse{
		Access:  pair.Access,
		Refresh: pair.Refresh,
		User:    *user,
	})
}
