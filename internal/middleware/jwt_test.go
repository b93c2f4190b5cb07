package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

// protectedRouter builds a router with one guarded route that echoes the
// userID the middleware attached to the context
func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.MustGet("userID")})
	})
	return r
}

func doRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddlewareValidToken(t *testing.T) {
	r := protectedRouter()
	token, err := utils.GenerateJWT(7, testSecret)
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID": 7}`, w.Body.String())
}

func TestJWTAuthMiddlewareMissingHeader(t *testing.T) {
	w := doRequest(protectedRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddlewareWrongScheme(t *testing.T) {
	token, err := utils.GenerateJWT(7, testSecret)
	require.NoError(t, err)

	w := doRequest(protectedRouter(), "Basic "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddlewareGarbageToken(t *testing.T) {
	w := doRequest(protectedRouter(), "Bearer definitely-not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddlewareWrongSecret(t *testing.T) {
	token, err := utils.GenerateJWT(7, "some-other-secret")
	require.NoError(t, err)

	w := doRequest(protectedRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddlewareExpiredToken(t *testing.T) {
	claims := utils.Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	w := doRequest(protectedRouter(), "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
