package auth

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	UserIDKey = "userID"
	RoleKey   = "role"

	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	Type   TokenType   `json:"type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

// GenerateTokenPair creates both access and refresh tokens
func GenerateTokenPair(userID string, role models.Role, secret string) (*TokenPair, error) {
	accessToken, err := generateToken(userID, role, AccessToken, accessTokenTTL, secret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateToken(userID, role, RefreshToken, refreshTokenTTL, secret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func generateToken(userID string, role models.Role, tokenType TokenType, duration time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken validates and parses JWT token
func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RefreshTokenPair issues a new pair from a refresh token. Both tokens rotate.
func RefreshTokenPair(refreshTokenString string, secret string) (*TokenPair, error) {
	claims, err := ValidateToken(refreshTokenString, secret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	if claims.Type != RefreshToken {
		return nil, errors.New("not a refresh token")
	}

	return GenerateTokenPair(claims.UserID, claims.Role, secret)
}

// GetUserIDFromContext extracts userID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid user ID type")
	}

	return id, nil
}

// GetRoleFromContext extracts the caller's role from Gin context
func GetRoleFromContext(c *gin.Context) (models.Role, error) {
	role, exists := c.Get(RoleKey)
	if !exists {
		return "", fmt.Errorf("role not found in context")
	}

	r, ok := role.(models.Role)
	if !ok {
		return "", fmt.Errorf("invalid role type")
	}

	return r, nil
}
