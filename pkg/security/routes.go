package security

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"stockroom/internal/rate_limiter"
	"stockroom/internal/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type LoginHandler struct {
	Repository  *repository.Repository
	rateLimiter *rate_limiter.RateLimiter
}

func NewLoginHandler(r *repository.Repository) *LoginHandler {
	return &LoginHandler{
		Repository:  r,
		rateLimiter: rate_limiter.NewRateLimiter(10, time.Minute),
	}
}

func (h *LoginHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/auth", h.Login)
}

func (h *LoginHandler) Login(c *gin.Context) {
	clientIP := c.ClientIP()
	if !h.rateLimiter.IsAllowed(clientIP) {
		remaining := h.rateLimiter.GetRemainingRequests(clientIP)
		c.Header("X-RateLimit-Limit", strconv.Itoa(h.rateLimiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", time.Now().Add(time.Minute).Format(time.RFC3339))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "Too many login attempts, try again later",
			"remaining": remaining,
		})
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	user, err := AuthenticateUser(req.Username, req.Password, h.Repository)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		log.Printf("Error during authentication: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := GenerateJWT(strconv.Itoa(user.ID), user.Role, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}
