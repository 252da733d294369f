// Package auth issues and verifies admin session tokens.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chaski/registry/internal/config"
	"github.com/chaski/registry/internal/session"
)

const tokenTTL = 30 * 24 * time.Hour

// ErrInvalidPassword is returned when the admin password does not match.
var ErrInvalidPassword = errors.New("invalid admin password")

// ErrInvalidToken is returned for malformed, expired or forged tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Service checks the admin password and resolves bearer tokens into sessions.
// With no password configured every caller is an admin.
type Service struct {
	password []byte
	secret   []byte
	now      func() time.Time
}

// NewService creates a new auth Service. When a password is set but the
// signing secret is the placeholder, tokens are signed with a random
// per-process secret instead, so they do not survive a restart.
func NewService(cfg *config.Config) *Service {
	secret := []byte(cfg.JWTSecret)
	if cfg.AdminAuthEnabled() && cfg.JWTSecretIsDefault() {
		secret = []byte(rand.Text())
	}
	return &Service{
		password: []byte(cfg.AdminPassword),
		secret:   secret,
		now:      time.Now,
	}
}

// Open reports whether admin checks are disabled.
func (s *Service) Open() bool {
	return len(s.password) == 0
}

// Login verifies password and issues a signed admin token.
func (s *Service) Login(password string) (string, error) {
	if !s.Open() && subtle.ConstantTimeCompare([]byte(password), s.password) != 1 {
		return "", ErrInvalidPassword
	}
	token, err := s.issueToken()
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Resolve turns an Authorization header value into a session. An empty
// header yields Anonymous, or an admin session when the service is open.
func (s *Service) Resolve(authHeader string) (session.Session, error) {
	if s.Open() {
		return session.Session{Admin: true}, nil
	}
	if authHeader == "" {
		return session.Anonymous, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return session.Anonymous, ErrInvalidToken
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return session.Anonymous, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return session.Anonymous, ErrInvalidToken
	}
	admin, _ := claims["adm"].(bool)
	return session.Session{Admin: admin}, nil
}

func (s *Service) issueToken() (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": "admin",
		"adm": true,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
