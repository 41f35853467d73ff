package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stockroom/internal/rate_limiter"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoginRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &LoginHandler{
		rateLimiter: rate_limiter.NewRateLimiter(1, time.Minute),
	}

	router := gin.New()
	router.POST("/auth", handler.Login)

	// First request consumes the only slot; the invalid payload still counts.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/auth", strings.NewReader("{}")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/auth", strings.NewReader("{}")))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}
