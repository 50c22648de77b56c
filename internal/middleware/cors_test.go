package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestCORS_AllowAllByDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/assistant", nil)
	c.Request.Header.Set("Origin", "https://example.com")

	CORS(nil)(c)

	require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	require.False(t, c.IsAborted())
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodOptions, "/api/v1/assistant", nil)
	c.Request.Header.Set("Origin", "https://example.com")

	CORS(nil)(c)

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestCORS_Allowlist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mw := CORS([]string{"https://voyagent.example"})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/destinations", nil)
	c.Request.Header.Set("Origin", "https://voyagent.example")
	mw(c)
	require.Equal(t, "https://voyagent.example", recorder.Header().Get("Access-Control-Allow-Origin"))

	recorder = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/destinations", nil)
	c.Request.Header.Set("Origin", "https://evil.example")
	mw(c)
	require.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestOptionalAuth_NeverRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := []byte("test-secret")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/assistant", nil)
	OptionalAuth(secret)(c)
	require.False(t, c.IsAborted())
	_, exists := c.Get(ContextUserIDKey)
	require.False(t, exists)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/assistant", nil)
	c.Request.Header.Set("Authorization", "Bearer not-a-token")
	OptionalAuth(secret)(c)
	require.False(t, c.IsAborted())
}

func TestJWTAuth_RejectsWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)
	JWTAuth([]byte("test-secret"))(c)
	require.True(t, c.IsAborted())
}
