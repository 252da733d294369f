package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/chaski/registry/internal/response"
)

// FieldName is the multipart field carrying the image.
const FieldName = "imagen"

// multipartOverhead is the slack allowed on top of the file limit for
// boundaries, headers and small text fields.
const multipartOverhead = 1 << 20

// Handler serves POST /upload.
type Handler struct {
	svc      *Service
	tempDir  string
	maxBytes int64
	logger   *slog.Logger
}

// NewHandler creates an upload Handler that spools files into tempDir and
// rejects anything above maxBytes.
func NewHandler(svc *Service, tempDir string, maxBytes int64, logger *slog.Logger) (*Handler, error) {
	if err := os.MkdirAll(tempDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Handler{
		svc:      svc,
		tempDir:  tempDir,
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "upload_handler")),
	}, nil
}

// Upload godoc
//
//	@Summary		Upload an image
//	@Description	Stores one image in the blob store, shares it publicly and returns its URL. Identical bytes uploaded twice produce two URLs.
//	@Tags			upload
//	@Accept			mpfd
//	@Produce		json
//	@Param			imagen	formData	file	true	"Image, at most 10MB"
//	@Success		200		{object}	model.UploadResult
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	f, err := h.spool(r)
	switch {
	case errors.Is(err, ErrNoFile):
		Rejected()
		response.BadRequest(w, "No file uploaded")
		return
	case errors.Is(err, ErrTooLarge):
		Rejected()
		response.BadRequest(w, fmt.Sprintf("File too large (max %dMB)", h.maxBytes/(1024*1024)))
		return
	case err != nil:
		h.logger.Error("spool upload", slog.String("error", err.Error()))
		response.InternalError(w, err.Error())
		return
	}
	defer h.remove(f.Path)

	result, err := h.svc.Upload(r.Context(), *f)
	if err != nil {
		h.logger.Error("store upload", slog.String("error", err.Error()))
		response.InternalError(w, err.Error())
		return
	}
	response.OK(w, result)
}

// spool copies the imagen part to a uniquely named temp file. The temp file
// is removed before returning any error.
func (h *Handler) spool(r *http.Request) (*File, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, ErrNoFile
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoFile
		}
		if err != nil {
			if isBodyTooLarge(err) {
				return nil, ErrTooLarge
			}
			return nil, ErrNoFile
		}
		if part.FormName() != FieldName || part.FileName() == "" {
			continue
		}
		return h.writePart(part)
	}
}

func (h *Handler) writePart(part *multipart.Part) (*File, error) {
	path := filepath.Join(h.tempDir, uuid.NewString())
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(dst, io.LimitReader(part, h.maxBytes+1))
	closeErr := dst.Close()
	switch {
	case isBodyTooLarge(err) || (err == nil && n > h.maxBytes):
		h.remove(path)
		return nil, ErrTooLarge
	case err != nil:
		h.remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	case closeErr != nil:
		h.remove(path)
		return nil, fmt.Errorf("close temp file: %w", closeErr)
	}

	contentType := part.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &File{
		Path:        path,
		Name:        part.FileName(),
		ContentType: contentType,
		Size:        n,
	}, nil
}

func (h *Handler) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("remove temp file", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
