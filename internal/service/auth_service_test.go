package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Baaaki/exercise-catalog/internal/repository"
	"github.com/Baaaki/exercise-catalog/internal/testutil"
	"github.com/Baaaki/exercise-catalog/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	testDB  *testutil.TestDatabase
	tokens  *utils.TokenManager
	service *AuthService
	ctx     context.Context
}

func (s *AuthServiceTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.tokens = utils.NewTokenManager("test-secret-key", 15*time.Minute, 168*time.Hour)
	s.service = NewAuthService(repository.NewUserRepository(s.testDB.DB), testutil.Hasher, s.tokens)
	s.ctx = context.Background()
}

func (s *AuthServiceTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *AuthServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *AuthServiceTestSuite) TestRegister() {
	user, err := s.service.Register(s.ctx, "newuser", "SecurePass123")

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "newuser", user.Username)
	assert.NotEqual(s.T(), "SecurePass123", user.PasswordHash)

	ok, err := testutil.Hasher.Verify("SecurePass123", user.PasswordHash)
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)
}

func (s *AuthServiceTestSuite) TestRegisterDuplicate() {
	_, err := s.service.Register(s.ctx, "taken", "SecurePass123")
	require.NoError(s.T(), err)

	_, err = s.service.Register(s.ctx, "taken", "OtherPass123")
	assert.ErrorIs(s.T(), err, ErrUsernameAlreadyExists)
}

func (s *AuthServiceTestSuite) TestRegisterValidation() {
	testCases := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{name: "Short username", username: "ab", password: "SecurePass123", field: "username"},
		{name: "Long username", username: strings.Repeat("u", 51), password: "SecurePass123", field: "username"},
		{name: "Padded username", username: "user ", password: "SecurePass123", field: "username"},
		{name: "Short password", username: "gooduser", password: "short", field: "password"},
		{name: "Long password", username: "gooduser", password: strings.Repeat("p", 73), field: "password"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.service.Register(s.ctx, tc.username, tc.password)

			var validationErr *ValidationError
			require.ErrorAs(s.T(), err, &validationErr)
			assert.Equal(s.T(), tc.field, validationErr.Field)
			assert.ErrorIs(s.T(), err, ErrValidation)
		})
	}
}

func (s *AuthServiceTestSuite) TestLogin() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "loginuser")

	loggedIn, pair, err := s.service.Login(s.ctx, "loginuser", testutil.DefaultPassword)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, loggedIn.ID)

	access, err := s.tokens.ValidateAccessToken(pair.AccessToken)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, access.UserID)

	refresh, err := s.tokens.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, refresh.UserID)
}

func (s *AuthServiceTestSuite) TestLoginFailures() {
	testutil.CreateTestUser(s.T(), s.testDB.DB, "loginuser")

	_, _, err := s.service.Login(s.ctx, "loginuser", "WrongPass123")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)

	_, _, err = s.service.Login(s.ctx, "nobody", testutil.DefaultPassword)
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)

	// Usernames are case-sensitive
	_, _, err = s.service.Login(s.ctx, "LOGINUSER", testutil.DefaultPassword)
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestRefresh() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "refresher")
	refreshToken, err := s.tokens.GenerateRefreshToken(user)
	require.NoError(s.T(), err)

	accessToken, err := s.service.Refresh(s.ctx, refreshToken)
	require.NoError(s.T(), err)

	claims, err := s.tokens.ValidateAccessToken(accessToken)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, claims.UserID)

	// Access tokens cannot be used to refresh
	_, err = s.service.Refresh(s.ctx, accessToken)
	assert.ErrorIs(s.T(), err, ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestRefreshForDeletedUser() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "gone")
	refreshToken, err := s.tokens.GenerateRefreshToken(user)
	require.NoError(s.T(), err)

	testutil.CleanDatabase(s.T(), s.testDB.DB)

	_, err = s.service.Refresh(s.ctx, refreshToken)
	assert.ErrorIs(s.T(), err, ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestAuthenticate() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "authuser")
	accessToken, err := s.tokens.GenerateAccessToken(user)
	require.NoError(s.T(), err)

	authenticated, err := s.service.Authenticate(s.ctx, accessToken)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, authenticated.ID)

	_, err = s.service.Authenticate(s.ctx, "garbage")
	assert.ErrorIs(s.T(), err, ErrInvalidToken)

	expired, err := utils.GenerateToken(user, utils.AccessToken, "test-secret-key", -time.Minute)
	require.NoError(s.T(), err)
	_, err = s.service.Authenticate(s.ctx, expired)
	assert.ErrorIs(s.T(), err, ErrInvalidToken)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
