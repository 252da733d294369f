package ledger

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/chaski/registry/internal/response"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Lister reads recent ledger entries.
type Lister interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Handler serves the ledger to admins.
type Handler struct {
	entries Lister
	logger  *slog.Logger
}

// NewHandler creates a ledger Handler. A nil lister means the ledger is
// disabled and every request answers 404.
func NewHandler(entries Lister, logger *slog.Logger) *Handler {
	return &Handler{entries: entries, logger: logger.With(slog.String("component", "ledger_handler"))}
}

type recentData struct {
	Uploads []Entry `json:"uploads"`
}

// Recent godoc
//
//	@Summary		List recent uploads
//	@Description	Newest blobs created by the upload gateway. Requires an admin session.
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Maximum entries (default 50, max 500)"
//	@Success		200		{object}	recentData
//	@Failure		403		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/admin/uploads [get]
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.entries == nil {
		response.NotFound(w, "upload ledger disabled")
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	entries, err := h.entries.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("read ledger", slog.String("error", err.Error()))
		response.InternalError(w, "internal server error")
		return
	}
	response.OK(w, recentData{Uploads: entries})
}
