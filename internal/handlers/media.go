package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nagorik/grievance-server/internal/services"
	"go.uber.org/zap"
)

// maxUploadBytes caps a single photo upload at 10 MiB.
const maxUploadBytes = 10 << 20

// MediaHandler handles photo upload and serving.
type MediaHandler struct {
	mediaSvc *services.MediaService
	logger   *zap.SugaredLogger
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(ms *services.MediaService, logger *zap.SugaredLogger) *MediaHandler {
	return &MediaHandler{mediaSvc: ms, logger: logger}
}

// Upload handles POST /api/v1/media: a multipart form with one "image"
// file. The response mirrors the hosted-image contract the portal's
// clients already speak:
//
//	{ "success": true, "data": { "display_url": "..." } }
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	displayURL, err := h.mediaSvc.Upload(r.Context(), header.Filename, contentType, file, header.Size)
	if err != nil {
		h.logger.Errorw("Failed to upload media", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    map[string]string{"display_url": displayURL},
	})
}

// Serve handles GET /api/v1/media/{key}: streams a stored photo.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		respondError(w, http.StatusBadRequest, "Media key required")
		return
	}

	obj, err := h.mediaSvc.Open(r.Context(), key)
	if err != nil {
		respondError(w, http.StatusNotFound, "Media not found")
		return
	}
	defer obj.Close()

	if _, err := io.Copy(w, obj); err != nil {
		h.logger.Warnw("Failed to stream media", "key", key, "error", err)
	}
}
