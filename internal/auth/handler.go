package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chaski/registry/internal/response"
)

// Handler holds HTTP handlers for admin sessions.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With(slog.String("component", "auth_handler"))}
}

type sessionRequest struct {
	Password string `json:"password" example:"s3cret"`
}

type sessionData struct {
	Token string `json:"token" example:"eyJhbGci..."`
}

// CreateSession godoc
//
//	@Summary		Open an admin session
//	@Description	Exchange the admin password for a bearer token. With no password configured any password is accepted.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionRequest	true	"Admin password"
//	@Success		200		{object}	sessionData
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Router			/admin/session [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	token, err := h.svc.Login(req.Password)
	if errors.Is(err, ErrInvalidPassword) {
		h.logger.Warn("admin login rejected", slog.String("remote_addr", r.RemoteAddr))
		response.Unauthorized(w, "Contraseña incorrecta")
		return
	}
	if err != nil {
		h.logger.Error("admin login failed", slog.String("error", err.Error()))
		response.InternalError(w, "internal server error")
		return
	}

	response.OK(w, sessionData{Token: token})
}
