package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaski/registry/internal/config"
	"github.com/chaski/registry/internal/session"
)

func newService(password string) *Service {
	return NewService(&config.Config{AdminPassword: password, JWTSecret: "test-secret"})
}

func TestService_OpenModeGrantsAdmin(t *testing.T) {
	svc := newService("")

	s, err := svc.Resolve("")
	require.NoError(t, err)
	assert.True(t, s.Can(session.ManageRecords))

	token, err := svc.Login("anything")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_LoginAndResolve(t *testing.T) {
	svc := newService("adminpass")

	_, err := svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	token, err := svc.Login("adminpass")
	require.NoError(t, err)

	s, err := svc.Resolve("Bearer " + token)
	require.NoError(t, err)
	assert.True(t, s.Admin)

	anon, err := svc.Resolve("")
	require.NoError(t, err)
	assert.False(t, anon.Can(session.ManageRecords))
}

func TestService_RejectsBadTokens(t *testing.T) {
	svc := newService("adminpass")

	_, err := svc.Resolve("Token abc")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Resolve("Bearer not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"adm": true})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Resolve("Bearer " + signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ExpiredToken(t *testing.T) {
	svc := newService("adminpass")
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Login("adminpass")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(tokenTTL + time.Minute) }
	_, err = svc.Resolve("Bearer " + token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_DefaultSecretIsNotUsed(t *testing.T) {
	svc := NewService(&config.Config{AdminPassword: "s3cret", JWTSecret: config.DefaultJWTSecret})

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"adm": true})
	signed, err := forged.SignedString([]byte(config.DefaultJWTSecret))
	require.NoError(t, err)

	s, err := svc.Resolve("Bearer " + signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, s.Can(session.ManageRecords))

	token, err := svc.Login("s3cret")
	require.NoError(t, err)
	s, err = svc.Resolve("Bearer " + token)
	require.NoError(t, err)
	assert.True(t, s.Can(session.ManageRecords))
}

func TestHandler_CreateSession(t *testing.T) {
	h := NewHandler(newService("adminpass"), slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	h.CreateSession(rec, httptest.NewRequest(http.MethodPost, "/admin/session", strings.NewReader(`{"password":"adminpass"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)

	rec = httptest.NewRecorder()
	h.CreateSession(rec, httptest.NewRequest(http.MethodPost, "/admin/session", strings.NewReader(`{"password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.CreateSession(rec, httptest.NewRequest(http.MethodPost, "/admin/session", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
