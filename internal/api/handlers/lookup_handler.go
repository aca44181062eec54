package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/entities"
	apperrors "github.com/sjwitcher/obd2-explorer/backend/pkg/errors"
	"github.com/sjwitcher/obd2-explorer/backend/web"
)

// LookupService defines the handler dependency for code lookups.
type LookupService interface {
	Lookup(ctx context.Context, code string) (*entities.LookupResult, error)
}

// LookupHandler handles code lookup HTTP requests
type LookupHandler struct {
	service LookupService
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(service LookupService) *LookupHandler {
	return &LookupHandler{
		service: service,
	}
}

type lookupRequest struct {
	Code string `json:"code"`
}

// Home handles GET / by serving the static lookup page.
func (h *LookupHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := web.Static.ReadFile("static/index.html")
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "lookup page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// Lookup handles POST /lookup
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "No code provided.")
		return
	}

	result, err := h.service.Lookup(r.Context(), req.Code)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			switch appErr.Type {
			case apperrors.ErrorTypeValidation:
				respondWithError(w, http.StatusBadRequest, appErr.Message)
				return
			case apperrors.ErrorTypeNotFound:
				respondWithError(w, http.StatusNotFound, appErr.Message)
				return
			}
		}
		// The raw error message is surfaced on 500s; known hardening gap.
		log.Error().Err(err).Msg("unhandled lookup failure")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if result.NotFound {
		respondWithJSON(w, http.StatusNotFound, result)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
