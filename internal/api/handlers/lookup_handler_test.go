package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjwitcher/obd2-explorer/backend/internal/api/handlers"
	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/entities"
	apperrors "github.com/sjwitcher/obd2-explorer/backend/pkg/errors"
)

type stubLookupService struct {
	result *entities.LookupResult
	err    error
	codes  []string
}

func (s *stubLookupService) Lookup(ctx context.Context, code string) (*entities.LookupResult, error) {
	s.codes = append(s.codes, code)
	return s.result, s.err
}

func doLookup(t *testing.T, service handlers.LookupService, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := handlers.NewLookupHandler(service)
	req := httptest.NewRequest(http.MethodPost, "/lookup", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.Lookup(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	return payload
}

func TestLookupHandler_Lookup_Success(t *testing.T) {
	service := &stubLookupService{
		result: &entities.LookupResult{
			Code:           "P0301",
			Summary:        "Cylinder 1 misfire detected.",
			Description:    "Cylinder 1 misfire detected.",
			Recommendation: "• Inspect ignition coils and wiring",
			Source:         "OBD-Codes.com",
			AILastUpdated:  "2026-08-01T00:00:00Z",
		},
	}

	rec := doLookup(t, service, `{"code": "P0301"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	payload := decodeBody(t, rec)
	assert.Equal(t, "P0301", payload["code"])
	assert.Equal(t, "Cylinder 1 misfire detected.", payload["summary"])
	assert.Equal(t, "• Inspect ignition coils and wiring", payload["recommendation"])
	assert.Equal(t, "OBD-Codes.com", payload["source"])
	assert.Equal(t, []string{"P0301"}, service.codes)
}

func TestLookupHandler_Lookup_MalformedBody(t *testing.T) {
	service := &stubLookupService{}

	rec := doLookup(t, service, `{"code": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No code provided.", decodeBody(t, rec)["error"])
	assert.Empty(t, service.codes)
}

func TestLookupHandler_Lookup_ValidationError(t *testing.T) {
	service := &stubLookupService{err: apperrors.NewValidationError("No code provided.")}

	rec := doLookup(t, service, `{"code": ""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No code provided.", decodeBody(t, rec)["error"])
}

func TestLookupHandler_Lookup_NotFoundError(t *testing.T) {
	service := &stubLookupService{err: apperrors.NewNotFoundError("code P9999 not found")}

	rec := doLookup(t, service, `{"code": "P9999"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "code P9999 not found", decodeBody(t, rec)["error"])
}

func TestLookupHandler_Lookup_NotFoundResult(t *testing.T) {
	service := &stubLookupService{result: entities.NewNotFoundResult("P9999")}

	rec := doLookup(t, service, `{"code": "P9999"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "P9999", payload["code"])
	assert.Equal(t, "Code not found.", payload["summary"])
	assert.Equal(t, "No data available.", payload["description"])
	assert.Equal(t, "• Try another OBD II code.", payload["recommendation"])
	assert.Equal(t, "N/A", payload["source"])
}

func TestLookupHandler_Lookup_UnexpectedError(t *testing.T) {
	service := &stubLookupService{err: errors.New("database is locked")}

	rec := doLookup(t, service, `{"code": "P0301"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "database is locked", decodeBody(t, rec)["error"])
}

func TestLookupHandler_Home(t *testing.T) {
	handler := handlers.NewLookupHandler(&stubLookupService{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.Home(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(rec.Body.String(), "<html"))
}
