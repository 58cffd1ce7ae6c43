package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/Baaaki/exercise-catalog/internal/handler"
	"github.com/Baaaki/exercise-catalog/internal/middleware"
	"github.com/Baaaki/exercise-catalog/internal/models"
	"github.com/Baaaki/exercise-catalog/internal/repository"
	"github.com/Baaaki/exercise-catalog/internal/service"
	"github.com/Baaaki/exercise-catalog/internal/testutil"
	"github.com/Baaaki/exercise-catalog/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-secret-key"

// apiSuite wires the full router against an in-memory database.
// Concrete suites embed it.
type apiSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	tokens *utils.TokenManager
	router *gin.Engine
}

// SetupSuite runs before all tests
func (s *apiSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	// Start in-memory SQLite test database (migrations run automatically)
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.buildRouter(nil)
}

// buildRouter wires repositories, services and the router; limiter may be nil
func (s *apiSuite) buildRouter(limiter *middleware.RateLimiter) {
	// Setup repositories and services
	userRepo := repository.NewUserRepository(s.testDB.DB)
	exerciseRepo := repository.NewExerciseRepository(s.testDB.DB)
	interactionRepo := repository.NewInteractionRepository(s.testDB.DB)

	s.tokens = utils.NewTokenManager(testSecret, 15*time.Minute, 168*time.Hour)

	s.router = handler.NewRouter(handler.RouterConfig{
		DB:                 s.testDB.DB,
		AuthService:        service.NewAuthService(userRepo, testutil.Hasher, s.tokens),
		ExerciseService:    service.NewExerciseService(exerciseRepo),
		InteractionService: service.NewInteractionService(exerciseRepo, interactionRepo),
		AllowedOrigins:     []string{"http://localhost:3001"},
		RateLimiter:        limiter,
	})
}

// TearDownSuite runs after all tests
func (s *apiSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test (clean database)
func (s *apiSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *apiSuite) tokenFor(user *models.User) string {
	token, err := s.tokens.GenerateAccessToken(user)
	require.NoError(s.T(), err)
	return token
}

// request sends body as JSON (nil for none) with an optional bearer token
func (s *apiSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	return s.requestFrom("", method, path, body, token)
}

// requestFrom is request with the client address set to remoteAddr
func (s *apiSuite) requestFrom(remoteAddr, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(s.T(), err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

// exerciseNames extracts names from an {"exercises": [...]} response, in order
func (s *apiSuite) exerciseNames(w *httptest.ResponseRecorder) []string {
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	list, ok := s.decode(w)["exercises"].([]interface{})
	require.True(s.T(), ok, "exercises must be a list")

	names := make([]string, 0, len(list))
	for _, item := range list {
		names = append(names, item.(map[string]interface{})["name"].(string))
	}
	return names
}
