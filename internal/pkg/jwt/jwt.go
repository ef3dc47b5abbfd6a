// internal/pkg/jwt/jwt.go
package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	DefaultAccessExpiration  = "24h"
	DefaultRefreshExpiration = "7d"

	// FallbackExpirationSeconds is returned by ParseExpiration for values it cannot read.
	FallbackExpirationSeconds int64 = 86400
)

// Claims carried by both access and refresh tokens
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Type   string    `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is returned on login, register and refresh. It is never stored server-side.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Config holds secrets and lifetimes for the two token kinds
type Config struct {
	AccessSecret      string
	RefreshSecret     string
	AccessExpiration  string
	RefreshExpiration string
}

// Service handles JWT operations
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	accessExpires int64
	now           func() time.Time
}

// NewService creates JWT service
func NewService(cfg Config) *Service {
	if cfg.AccessExpiration == "" {
		cfg.AccessExpiration = DefaultAccessExpiration
	}
	if cfg.RefreshExpiration == "" {
		cfg.RefreshExpiration = DefaultRefreshExpiration
	}

	accessSeconds := ParseExpiration(cfg.AccessExpiration)
	refreshSeconds := ParseExpiration(cfg.RefreshExpiration)

	return &Service{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     time.Duration(accessSeconds) * time.Second,
		refreshTTL:    time.Duration(refreshSeconds) * time.Second,
		accessExpires: accessSeconds,
		now:           time.Now,
	}
}

// ParseExpiration converts "<integer><unit>" (unit one of s, m, h, d) into seconds.
// Anything else, including a zero lifetime, yields FallbackExpirationSeconds.
func ParseExpiration(s string) int64 {
	seconds, ok := parseExpiration(s)
	if !ok {
		return FallbackExpirationSeconds
	}
	return seconds
}

// IsValidExpiration reports whether ParseExpiration would read s without falling back.
func IsValidExpiration(s string) bool {
	_, ok := parseExpiration(s)
	return ok
}

func parseExpiration(s string) (int64, bool) {
	if len(s) < 2 {
		return 0, false
	}

	var unit int64
	switch s[len(s)-1] {
	case 's':
		unit = 1
	case 'm':
		unit = 60
	case 'h':
		unit = 60 * 60
	case 'd':
		unit = 24 * 60 * 60
	default:
		return 0, false
	}

	digits := s[:len(s)-1]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}

	// 32-bit cap keeps value*unit well inside int64
	value, err := strconv.ParseInt(digits, 10, 32)
	if err != nil || value == 0 {
		return 0, false
	}
	return value * unit, true
}

// IssueTokens signs an access and a refresh token for the subject
func (s *Service) IssueTokens(subjectID uuid.UUID, email, role string) (*TokenPair, error) {
	accessToken, err := s.GenerateAccessToken(subjectID, email, role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.GenerateRefreshToken(subjectID, email, role)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.accessExpires,
	}, nil
}

// GenerateAccessToken generates access token
func (s *Service) GenerateAccessToken(userID uuid.UUID, email, role string) (string, error) {
	return s.sign(userID, email, role, TokenTypeAccess, s.accessTTL, s.accessSecret)
}

// GenerateRefreshToken generates refresh token
func (s *Service) GenerateRefreshToken(userID uuid.UUID, email, role string) (string, error) {
	return s.sign(userID, email, role, TokenTypeRefresh, s.refreshTTL, s.refreshSecret)
}

func (s *Service) sign(userID uuid.UUID, email, role, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateAccessToken validates and parses access token
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken validates and parses refresh token
func (s *Service) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret, TokenTypeRefresh)
}

func (s *Service) validate(tokenString string, secret []byte, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Type != tokenType {
		return nil, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil || claims.Subject != claims.UserID.String() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) GetAccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) GetRefreshTTL() time.Duration { return s.refreshTTL }
