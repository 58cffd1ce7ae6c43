package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Baaaki/exercise-catalog/internal/models"
	"github.com/Baaaki/exercise-catalog/internal/repository"
	"github.com/Baaaki/exercise-catalog/internal/utils"
	"github.com/Baaaki/exercise-catalog/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes
	maxPasswordLength = 72
)

// TokenPair is issued on login
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthService struct {
	userRepo *repository.UserRepository
	hasher   *utils.PasswordHasher
	tokens   *utils.TokenManager
}

func NewAuthService(userRepo *repository.UserRepository, hasher *utils.PasswordHasher, tokens *utils.TokenManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	start := time.Now()

	logger.Log.Debug("Processing user registration",
		zap.String("username", username),
	)

	// 1. Validate input
	if err := validateCredentials(username, password); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	// 2. Check if username already exists
	existingUser, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}
	if existingUser != nil {
		logger.Log.Warn("Username already exists",
			zap.String("username", username),
		)
		return nil, ErrUsernameAlreadyExists
	}

	// 3. Hash password
	hashStart := time.Now()
	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		logger.Log.Error("Failed to hash password",
			zap.Error(err),
		)
		return nil, err
	}
	hashDuration := time.Since(hashStart)

	// 4. Create user; the unique index settles races between concurrent registrations
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Log.Warn("Username taken concurrently",
				zap.String("username", username),
			)
			return nil, ErrUsernameAlreadyExists
		}
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	start := time.Now()

	logger.Log.Debug("Processing user login",
		zap.String("username", username),
	)

	// 1. Get user by username
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Log.Error("Failed to get user by username",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, nil, err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("username", username),
		)
		return nil, nil, ErrInvalidCredentials
	}

	// 2. Verify password
	verifyStart := time.Now()
	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, nil, err
	}
	verifyDuration := time.Since(verifyStart)

	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("user_id", user.ID.String()),
		)
		return nil, nil, ErrInvalidCredentials
	}

	// 3. Issue tokens
	pair, err := s.issueTokens(user)
	if err != nil {
		logger.Log.Error("Failed to generate tokens",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, nil, err
	}

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Duration("password_verify_duration", verifyDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		logger.Log.Warn("Refresh token rejected",
			zap.Error(err),
		)
		return "", ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		logger.Log.Warn("Refresh token for unknown user",
			zap.String("user_id", claims.UserID.String()),
		)
		return "", ErrInvalidToken
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", err
	}

	logger.Log.Debug("Access token refreshed",
		zap.String("user_id", user.ID.String()),
	)
	return accessToken, nil
}

// Authenticate resolves an access token to its user. Any token problem, or a user that no
// longer exists, is ErrInvalidToken.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func validateCredentials(username, password string) error {
	if len(username) < minUsernameLength {
		return invalid("username", "username must be at least %d characters", minUsernameLength)
	}
	if len(username) > maxUsernameLength {
		return invalid("username", "username must be at most %d characters", maxUsernameLength)
	}
	if strings.TrimSpace(username) != username {
		return invalid("username", "username must not start or end with whitespace")
	}

	if len(password) < minPasswordLength {
		return invalid("password", "password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return invalid("password", "password must be at most %d bytes", maxPasswordLength)
	}

	return nil
}
