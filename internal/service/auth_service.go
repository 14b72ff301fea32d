package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	appErrors "github.com/noah-isme/campus-registrar-api/pkg/errors"
)

// AuthConfig defines configuration for the admin login flow.
type AuthConfig struct {
	AdminEmail        string
	AdminPasswordHash string
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService authenticates the single registrar administrator.
type AuthService struct {
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "campus-registrar-api"
	}
	return &AuthService{validator: validate, logger: logger, config: config, now: time.Now}
}

// Login checks the admin credentials and issues an access token.
func (s *AuthService) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "login")
	}
	if s.config.AdminPasswordHash == "" {
		s.logger.Warn("login attempted without a configured admin password hash")
		return nil, appErrors.ErrInvalidLogin
	}

	emailMatch := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(req.Email))),
		[]byte(strings.ToLower(s.config.AdminEmail)),
	) == 1
	passwordErr := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(req.Password))
	if !emailMatch || passwordErr != nil {
		s.logger.Info("admin login rejected", zap.String("email", req.Email))
		return nil, appErrors.ErrInvalidLogin
	}

	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(s.config.AdminEmail, issuedAt)
	if err != nil {
		return nil, internal(err, "failed to create access token")
	}
	s.logger.Info("admin logged in", zap.String("email", s.config.AdminEmail))
	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(email string, issuedAt time.Time) (string, error) {
	claims := models.JWTClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
