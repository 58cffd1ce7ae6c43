package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Baaaki/exercise-catalog/internal/models"
	"github.com/Baaaki/exercise-catalog/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// stubAuthenticator accepts exactly one token
type stubAuthenticator struct {
	token string
	user  *models.User
	err   error
}

func (a *stubAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	if token != a.token {
		return nil, service.ErrInvalidToken
	}
	return a.user, nil
}

func newAuthRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(auth), func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":  userID.String(),
			"username": c.GetString(ContextUsernameKey),
		})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "alice"}
	auth := &stubAuthenticator{token: "good-token", user: user}

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{name: "Valid bearer token", header: "Bearer good-token", status: http.StatusOK},
		{name: "Scheme is case-insensitive", header: "bearer good-token", status: http.StatusOK},
		{name: "Missing header", header: "", status: http.StatusUnauthorized},
		{name: "Wrong scheme", header: "Basic good-token", status: http.StatusUnauthorized},
		{name: "No token", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "Bare token", header: "good-token", status: http.StatusUnauthorized},
		{name: "Unknown token", header: "Bearer bad-token", status: http.StatusUnauthorized},
	}

	router := newAuthRouter(auth)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), user.ID.String())
				assert.Contains(t, w.Body.String(), "alice")
			} else {
				assert.Contains(t, w.Body.String(), "error")
			}
		})
	}
}

func TestAuthMiddleware_StorageFailureIsServerError(t *testing.T) {
	router := newAuthRouter(&stubAuthenticator{err: errors.New("database is locked")})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database is locked")
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, production := range []bool{false, true} {
		router := gin.New()
		router.Use(SecurityHeadersMiddleware(), HSTSMiddleware(production))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		if production {
			assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
		} else {
			assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
		}
	}
}
