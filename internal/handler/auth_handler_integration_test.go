package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/Baaaki/exercise-catalog/internal/models"
	"github.com/Baaaki/exercise-catalog/internal/testutil"
	"github.com/Baaaki/exercise-catalog/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// AuthHandlerIntegrationTestSuite defines test suite
type AuthHandlerIntegrationTestSuite struct {
	apiSuite
}

// TestRegisterSuccess tests successful user registration
func (s *AuthHandlerIntegrationTestSuite) TestRegisterSuccess() {
	w := s.request(http.MethodPost, "/users/register", map[string]string{
		"username": "newuser",
		"password": "SecurePass123",
	}, "")

	assert.Equal(s.T(), http.StatusCreated, w.Code)

	response := s.decode(w)
	assert.Equal(s.T(), "User created", response["message"])
	userID, err := uuid.Parse(response["userId"].(string))
	require.NoError(s.T(), err)

	// Password is stored hashed
	var stored models.User
	require.NoError(s.T(), s.testDB.DB.First(&stored, "id = ?", userID).Error)
	assert.Equal(s.T(), "newuser", stored.Username)
	assert.NotEqual(s.T(), "SecurePass123", stored.PasswordHash)
}

// TestRegisterDuplicateUsername tests registration with an existing username
func (s *AuthHandlerIntegrationTestSuite) TestRegisterDuplicateUsername() {
	testutil.CreateTestUser(s.T(), s.testDB.DB, "existing")

	w := s.request(http.MethodPost, "/users/register", map[string]string{
		"username": "existing",
		"password": "SecurePass123",
	}, "")

	assert.Equal(s.T(), http.StatusConflict, w.Code)
	assert.Contains(s.T(), s.decode(w)["error"], "username already exists")
	assert.Equal(s.T(), int64(1), testutil.CountRows(s.T(), s.testDB.DB, "users", "username = ?", "existing"))
}

// TestRegisterUsernameIsCaseSensitive tests that usernames differing in case are distinct
func (s *AuthHandlerIntegrationTestSuite) TestRegisterUsernameIsCaseSensitive() {
	testutil.CreateTestUser(s.T(), s.testDB.DB, "alice")

	w := s.request(http.MethodPost, "/users/register", map[string]string{
		"username": "Alice",
		"password": "SecurePass123",
	}, "")

	assert.Equal(s.T(), http.StatusCreated, w.Code)
}

// TestRegisterInvalidInput tests registration with invalid input
func (s *AuthHandlerIntegrationTestSuite) TestRegisterInvalidInput() {
	testCases := []struct {
		name     string
		reqBody  map[string]string
		field    string
		expected string
	}{
		{
			name:     "Short username",
			reqBody:  map[string]string{"username": "ab", "password": "Pass123456"},
			field:    "username",
			expected: "username must be at least 3 characters",
		},
		{
			name:     "Padded username",
			reqBody:  map[string]string{"username": " testuser ", "password": "Pass123456"},
			field:    "username",
			expected: "whitespace",
		},
		{
			name:     "Short password",
			reqBody:  map[string]string{"username": "testuser", "password": "short"},
			field:    "password",
			expected: "password must be at least 8 characters",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := s.request(http.MethodPost, "/users/register", tc.reqBody, "")

			assert.Equal(s.T(), http.StatusBadRequest, w.Code)

			response := s.decode(w)
			assert.Contains(s.T(), response["error"], tc.expected)
			assert.Equal(s.T(), tc.field, response["field"])
		})
	}
}

// TestRegisterMalformedBody tests a body that is not JSON
func (s *AuthHandlerIntegrationTestSuite) TestRegisterMalformedBody() {
	w := s.request(http.MethodPost, "/users/register", "not an object", "")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Equal(s.T(), "Invalid request body", s.decode(w)["error"])
}

// TestLoginSuccess tests successful login
func (s *AuthHandlerIntegrationTestSuite) TestLoginSuccess() {
	testUser := testutil.CreateTestUser(s.T(), s.testDB.DB, "loginuser")

	w := s.request(http.MethodPost, "/users/login", map[string]string{
		"username": "loginuser",
		"password": testutil.DefaultPassword,
	}, "")

	require.Equal(s.T(), http.StatusOK, w.Code)

	response := s.decode(w)
	accessToken, _ := response["accessToken"].(string)
	refreshToken, _ := response["refreshToken"].(string)
	require.NotEmpty(s.T(), accessToken)
	require.NotEmpty(s.T(), refreshToken)

	claims, err := s.tokens.ValidateAccessToken(accessToken)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), testUser.ID, claims.UserID)

	// The access token opens protected routes
	me := s.request(http.MethodGet, "/users/me", nil, accessToken)
	require.Equal(s.T(), http.StatusOK, me.Code)
	assert.Equal(s.T(), "loginuser", s.decode(me)["username"])
}

// TestLoginInvalidCredentials tests login with wrong password
func (s *AuthHandlerIntegrationTestSuite) TestLoginInvalidCredentials() {
	testutil.CreateTestUser(s.T(), s.testDB.DB, "loginuser")

	w := s.request(http.MethodPost, "/users/login", map[string]string{
		"username": "loginuser",
		"password": "WrongPass123",
	}, "")

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.Contains(s.T(), s.decode(w)["error"], "invalid credentials")
}

// TestLoginNonExistentUser tests login with an unknown username
func (s *AuthHandlerIntegrationTestSuite) TestLoginNonExistentUser() {
	w := s.request(http.MethodPost, "/users/login", map[string]string{
		"username": "nobody",
		"password": "SomePass123",
	}, "")

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.Contains(s.T(), s.decode(w)["error"], "invalid credentials")
}

// TestRefreshToken tests exchanging a refresh token for a new access token
func (s *AuthHandlerIntegrationTestSuite) TestRefreshToken() {
	testUser := testutil.CreateTestUser(s.T(), s.testDB.DB, "refresher")
	refreshToken, err := s.tokens.GenerateRefreshToken(testUser)
	require.NoError(s.T(), err)

	w := s.request(http.MethodPost, "/users/refresh-token", map[string]string{
		"refreshToken": refreshToken,
	}, "")

	require.Equal(s.T(), http.StatusOK, w.Code)
	accessToken, _ := s.decode(w)["accessToken"].(string)
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), testUser.ID, claims.UserID)
}

// TestRefreshTokenRejected tests missing, garbage and wrong-kind refresh tokens
func (s *AuthHandlerIntegrationTestSuite) TestRefreshTokenRejected() {
	testUser := testutil.CreateTestUser(s.T(), s.testDB.DB, "refresher")

	w := s.request(http.MethodPost, "/users/refresh-token", map[string]string{}, "")
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Equal(s.T(), "refreshToken", s.decode(w)["field"])

	w = s.request(http.MethodPost, "/users/refresh-token", map[string]string{"refreshToken": "garbage"}, "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)

	// An access token is not a refresh token
	w = s.request(http.MethodPost, "/users/refresh-token", map[string]string{"refreshToken": s.tokenFor(testUser)}, "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

// TestProtectedRouteRejectsBadTokens tests the auth middleware through the router
func (s *AuthHandlerIntegrationTestSuite) TestProtectedRouteRejectsBadTokens() {
	testUser := testutil.CreateTestUser(s.T(), s.testDB.DB, "tokenuser")

	expired, err := utils.GenerateToken(testUser, utils.AccessToken, testSecret, -time.Minute)
	require.NoError(s.T(), err)
	refresh, err := s.tokens.GenerateRefreshToken(testUser)
	require.NoError(s.T(), err)
	ghost := s.tokenFor(&models.User{ID: uuid.New(), Username: "ghost"})

	testCases := []struct {
		name  string
		token string
	}{
		{name: "Missing", token: ""},
		{name: "Garbage", token: "not.a.jwt"},
		{name: "Expired", token: expired},
		{name: "Refresh token", token: refresh},
		{name: "Deleted user", token: ghost},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			for _, path := range []string{"/exercises", "/users/collections", "/users/me"} {
				w := s.request(http.MethodGet, path, nil, tc.token)
				assert.Equal(s.T(), http.StatusUnauthorized, w.Code, path)
			}
		})
	}
}

// TestHealth tests the health endpoint
func (s *AuthHandlerIntegrationTestSuite) TestHealth() {
	w := s.request(http.MethodGet, "/health", nil, "")

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "ok", s.decode(w)["status"])
	assert.Equal(s.T(), "nosniff", w.Header().Get("X-Content-Type-Options"))
}

// TestSuite runs all tests in the suite
func TestAuthHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerIntegrationTestSuite))
}
