package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(allowlist []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(allowlist))
	r.GET("/words", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORS_AllowlistedOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/words", nil)
	req.Header.Set("Origin", "https://vocab.example.com")
	w := httptest.NewRecorder()
	corsRouter([]string{" https://vocab.example.com "}).ServeHTTP(w, req)

	assert.Equal(t, "https://vocab.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/words", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	corsRouter([]string{"https://vocab.example.com"}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_EmptyAllowlistAllowsAny(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/words", nil)
	req.Header.Set("Origin", "https://any.example.com")
	w := httptest.NewRecorder()
	corsRouter(nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
