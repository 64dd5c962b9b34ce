package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/auth"
	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/metrics"
	"github.com/gwan-project/landing-auth/internal/repository"
	"github.com/gwan-project/landing-auth/internal/service"
)

// UploadHandler handles character image uploads and analysis.
type UploadHandler struct {
	profile  *service.ProfileService
	analysis *service.AnalysisService
	logger   zerolog.Logger
}

// UploadHandlerConfig contains the dependencies for the upload handler.
type UploadHandlerConfig struct {
	Profile  *service.ProfileService
	Analysis *service.AnalysisService
	Logger   zerolog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(cfg UploadHandlerConfig) *UploadHandler {
	return &UploadHandler{
		profile:  cfg.Profile,
		analysis: cfg.Analysis,
		logger:   cfg.Logger.With().Str("handler", "upload").Logger(),
	}
}

// requestImage is an ImageUpload backed by a multipart file that must be
// closed after use.
type requestImage struct {
	*domain.ImageUpload
	file multipart.File
}

func (ri *requestImage) close() {
	if ri.file != nil {
		ri.file.Close()
	}
}

// imageFromRequest extracts the uploaded image from the multipart form
// field. A missing or unreadable file maps to ErrImageRequired.
func imageFromRequest(r *http.Request, field string) (*requestImage, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, domain.ErrImageTooLarge
		}
		return nil, domain.ErrImageRequired
	}

	return &requestImage{
		ImageUpload: &domain.ImageUpload{
			Reader:      file,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Filename:    header.Filename,
		},
		file: file,
	}, nil
}

// UploadCharacter handles POST /api/upload/character.
func (h *UploadHandler) UploadCharacter(w http.ResponseWriter, r *http.Request) {
	upload, err := imageFromRequest(r, "image")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		writeError(w, err)
		return
	}
	defer upload.close()

	character, err := h.profile.UploadCharacter(r.Context(), service.UploadCharacterInput{
		AccountID: auth.AccountIDFromContext(r.Context()),
		Image:     upload.ImageUpload,
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		writeError(w, err)
		return
	}
	metrics.UploadsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	writeSuccess(w, http.StatusCreated, "character image uploaded", character)
}

// GetCharacter handles GET /api/upload/character.
func (h *UploadHandler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	character, err := h.profile.GetCharacter(r.Context(), auth.AccountIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", character)
}

// ProcessCharacter handles POST /api/upload/character/process.
func (h *UploadHandler) ProcessCharacter(w http.ResponseWriter, r *http.Request) {
	out, err := h.analysis.ProcessCharacter(r.Context(), auth.AccountIDFromContext(r.Context()))
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		writeError(w, err)
		return
	}
	metrics.AnalysesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	writeSuccess(w, http.StatusOK, "character analyzed", out.Record)
}

// AnalysisHistory handles GET /api/upload/character/history.
func (h *UploadHandler) AnalysisHistory(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromQuery(r, 20, 100)

	result, err := h.analysis.History(r.Context(), auth.AccountIDFromContext(r.Context()), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", result)
}

// listOptionsFromQuery parses limit/offset query parameters with bounds.
func listOptionsFromQuery(r *http.Request, defaultLimit, maxLimit int) repository.ListOptions {
	opts := repository.ListOptions{Limit: defaultLimit}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			opts.Limit = min(limit, maxLimit)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			opts.Offset = offset
		}
	}
	return opts
}
