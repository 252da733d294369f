package records

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chaski/registry/internal/model"
	"github.com/chaski/registry/internal/recordstore"
	"github.com/chaski/registry/internal/response"
	"github.com/chaski/registry/internal/session"
)

// Messages shown to the caller; clients display them verbatim.
const (
	msgNotConfigured = "Airtable API key or Base ID not configured"
	msgMissingParams = "Faltan parámetros"
	msgMissingDelete = "Falta el id para eliminar"
	msgMissingUpdate = "Falta el id para actualizar"
	msgBadAction     = "Acción no soportada"
	msgListFailed    = "Error consultando Airtable"
	msgSaveFailed    = "Error al guardar en Airtable"
	msgRestricted    = "Acceso restringido a administradores"
)

// Handler serves POST /saveAirtable.
type Handler struct {
	svc *Service
}

// NewHandler creates a new records Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type saveRequest struct {
	Table  string         `json:"table"            example:"eventos"`
	Data   map[string]any `json:"data,omitempty"`
	Action string         `json:"action,omitempty" example:"list"`
	ID     string         `json:"id,omitempty"     example:"recA1b2C3d4"`
}

type listData struct {
	Records []model.Record `json:"records"`
}

type deleteData struct {
	Success bool `json:"success" example:"true"`
}

// Save godoc
//
//	@Summary		Create, list, update or delete records
//	@Description	{table,data} creates; {table,action:"list"} lists the first page; {table,action:"delete",id} deletes; {table,action:"update",id,data} patches. Record store errors are passed through in details and airtable_error.
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			request	body		saveRequest	true	"Record request"
//	@Success		200		{object}	model.Record
//	@Success		200		{object}	listData
//	@Success		200		{object}	deleteData
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		403		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/saveAirtable [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Configured() {
		response.InternalError(w, msgNotConfigured)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, msgMissingParams)
		return
	}
	if req.Table == "" {
		response.BadRequest(w, msgMissingParams)
		return
	}

	switch req.Action {
	case model.ActionList:
		h.list(w, r, req)
	case model.ActionDelete:
		h.delete(w, r, req)
	case model.ActionUpdate:
		h.update(w, r, req)
	case model.ActionCreate:
		h.create(w, r, req)
	default:
		response.BadRequest(w, msgBadAction)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, req saveRequest) {
	if req.Data == nil {
		response.BadRequest(w, msgMissingParams)
		return
	}
	rec, err := h.svc.Create(r.Context(), req.Table, req.Data)
	if err != nil {
		writeStoreError(w, msgSaveFailed, err)
		return
	}
	response.OK(w, rec)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, req saveRequest) {
	recs, err := h.svc.List(r.Context(), req.Table)
	if err != nil {
		writeStoreError(w, msgListFailed, err)
		return
	}
	response.OK(w, listData{Records: recs})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, req saveRequest) {
	if !session.FromContext(r.Context()).Can(session.ManageRecords) {
		response.Forbidden(w, msgRestricted)
		return
	}
	if req.ID == "" {
		response.BadRequest(w, msgMissingDelete)
		return
	}
	if err := h.svc.Delete(r.Context(), req.Table, req.ID); err != nil {
		writeStoreError(w, msgSaveFailed, err)
		return
	}
	response.OK(w, deleteData{Success: true})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, req saveRequest) {
	if !session.FromContext(r.Context()).Can(session.ManageRecords) {
		response.Forbidden(w, msgRestricted)
		return
	}
	if req.ID == "" {
		response.BadRequest(w, msgMissingUpdate)
		return
	}
	if req.Data == nil {
		response.BadRequest(w, msgMissingParams)
		return
	}
	rec, err := h.svc.Update(r.Context(), req.Table, req.ID, req.Data)
	if err != nil {
		writeStoreError(w, msgSaveFailed, err)
		return
	}
	response.OK(w, rec)
}

// writeStoreError maps a store failure to a 500 that carries the upstream
// body as details, or the error text when there was no upstream answer.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, recordstore.ErrNotConfigured) {
		response.InternalError(w, msgNotConfigured)
		return
	}

	body := response.ErrorBody{Error: message, Details: err.Error()}
	var apiErr *recordstore.APIError
	if errors.As(err, &apiErr) {
		if len(apiErr.Body) > 0 {
			body.Details = apiErr.Body
		}
		body.AirtableError = apiErr.Message
	}
	response.JSON(w, http.StatusInternalServerError, body)
}
