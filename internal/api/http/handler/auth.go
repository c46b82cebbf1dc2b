package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akorchak/urlstash-server/internal/logger"
	"github.com/akorchak/urlstash-server/internal/service"
)

const birthdateLayout = "2006-01-02"

// Auth exposes registration, login and token refresh.
type Auth struct {
	service *service.Auth
	logger  *logger.Logger
}

func NewAuth(service *service.Auth, logger *logger.Logger) *Auth {
	return &Auth{
		service: service,
		logger:  logger,
	}
}

type registerRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	PhoneNumber     string `json:"phone_number" binding:"required"`
	Birthdate       string `json:"birthdate" binding:"required"`
}

type userResponse struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	Birthdate   string `json:"birthdate"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// Register creates an account. 409 when email, username or phone number is
// already taken.
func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Password != req.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	birthdate, err := time.Parse(birthdateLayout, req.Birthdate)
	if err != nil || !birthdate.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "birthdate must be a past date in YYYY-MM-DD format"})
		return
	}

	user, err := h.service.Register(c.Request.Context(), service.RegisterParams{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Birthdate:   birthdate,
	})
	if err != nil {
		h.logger.Info("registration rejected", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponse{
		Email:       user.Email,
		Username:    user.Username,
		PhoneNumber: user.PhoneNumber,
		Birthdate:   user.Birthdate.Format(birthdateLayout),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a bearer token pair.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token into a new pair.
func (h *Auth) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}
