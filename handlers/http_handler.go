// Package handlers provides HTTP request handlers for the terminology API
// endpoints. This file implements the HTTPHandler interface with dependency
// injection.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/importer"
	"github.com/ravenmed/terminology-api/interfaces"
	"github.com/ravenmed/terminology-api/logging"
	"github.com/ravenmed/terminology-api/metrics"
	"github.com/ravenmed/terminology-api/store"
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	store     interfaces.TermStore
	engine    interfaces.SearchEngine
	resolver  interfaces.CodingResolver
	importer  interfaces.Importer
	validator interfaces.DataValidator
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	termStore interfaces.TermStore,
	engine interfaces.SearchEngine,
	resolver interfaces.CodingResolver,
	imp interfaces.Importer,
	validator interfaces.DataValidator,
	health interfaces.HealthChecker,
) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		store:     termStore,
		engine:    engine,
		resolver:  resolver,
		importer:  imp,
		validator: validator,
		health:    health,
	}
}

// ServeHTTP implements the http.Handler interface
func (h *HTTPHandlerImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// This is a placeholder - the actual routing is handled by chi
	http.Error(w, "Not implemented", http.StatusNotImplemented)
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// respondStoreError maps storage sentinels onto HTTP statuses.
func (h *HTTPHandlerImpl) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.RespondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrNoActiveVersion):
		h.RespondWithError(w, http.StatusConflict, "No active dictionary version")
	case errors.Is(err, store.ErrInvalidState):
		h.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, importer.ErrImportInFlight):
		h.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		logging.Error("Request failed", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ListVersions returns all dictionary versions, optionally filtered by
// dictionary
func (h *HTTPHandlerImpl) ListVersions(w http.ResponseWriter, r *http.Request) {
	var dictionary entities.Dictionary
	if raw := r.URL.Query().Get("dictionary"); raw != "" {
		d, err := h.validator.ValidateDictionary(raw)
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		dictionary = d
	}

	versions, err := h.store.ListVersions(dictionary)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	if versions == nil {
		versions = []entities.DictionaryVersion{}
	}
	h.RespondWithJSON(w, http.StatusOK, versions)
}

// GetActiveVersion returns the active version of a dictionary
func (h *HTTPHandlerImpl) GetActiveVersion(w http.ResponseWriter, r *http.Request) {
	d, err := h.validator.ValidateDictionary(r.URL.Query().Get("dictionary"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := h.store.GetActiveVersion(d)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.RespondWithJSON(w, http.StatusOK, version)
}

// ActivateVersion makes a version the active one for its dictionary
func (h *HTTPHandlerImpl) ActivateVersion(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateVersionID(chi.URLParam(r, "versionId"))
	if err != nil || id == 0 {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid version id")
		return
	}

	if err := h.store.ActivateVersion(id); err != nil {
		h.respondStoreError(w, err)
		return
	}
	version, err := h.store.GetVersionByID(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	logging.Info("Dictionary version activated", "version_id", id, "dictionary", string(version.Dictionary))
	h.RespondWithJSON(w, http.StatusOK, version)
}

// DeleteVersion removes an inactive version and all its terms
func (h *HTTPHandlerImpl) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateVersionID(chi.URLParam(r, "versionId"))
	if err != nil || id == 0 {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid version id")
		return
	}

	if err := h.store.DeleteVersion(id); err != nil {
		h.respondStoreError(w, err)
		return
	}
	logging.Info("Dictionary version deleted", "version_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// StartImport launches an asynchronous dictionary import
func (h *HTTPHandlerImpl) StartImport(w http.ResponseWriter, r *http.Request) {
	var req entities.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := h.validator.ValidateDictionary(string(req.Dictionary)); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.ValidateLabel(req.Label); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := h.importer.Start(req)
	if err != nil {
		if errors.Is(err, importer.ErrImportInFlight) {
			h.respondStoreError(w, err)
			return
		}
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.RespondWithJSON(w, http.StatusAccepted, version)
}

// ImportProgress returns the latest import progress snapshot
func (h *HTTPHandlerImpl) ImportProgress(w http.ResponseWriter, r *http.Request) {
	progress := h.importer.Progress()
	if progress == nil {
		h.RespondWithError(w, http.StatusNotFound, "No import has run")
		return
	}
	h.RespondWithJSON(w, http.StatusOK, progress)
}

// Search returns ranked leaf-term matches for a query
func (h *HTTPHandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	d, err := h.validator.ValidateDictionary(chi.URLParam(r, "dictionary"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := r.URL.Query().Get("q")
	if err := h.validator.ValidateInput(query); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	versionID, err := h.validator.ValidateVersionID(r.URL.Query().Get("version"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	includeNonCurrent := r.URL.Query().Get("includeNonCurrent") == "true"

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			h.RespondWithError(w, http.StatusBadRequest, "Limit must be between 1 and 500")
			return
		}
	}

	start := time.Now()
	results, err := h.engine.Search(d, query, includeNonCurrent, limit, versionID)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	metrics.DictionarySearchDuration.WithLabelValues(string(d)).Observe(time.Since(start).Seconds())

	h.RespondWithJSON(w, http.StatusOK, results)
}

// Browse returns the immediate children of a hierarchy node. Without a
// parent it returns the dictionary's top level.
func (h *HTTPHandlerImpl) Browse(w http.ResponseWriter, r *http.Request) {
	d, err := h.validator.ValidateDictionary(chi.URLParam(r, "dictionary"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	versionID, err := h.validator.ValidateVersionID(r.URL.Query().Get("version"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	parentCode := strings.TrimSpace(r.URL.Query().Get("parent"))
	var parentLevel entities.Level
	if parentCode != "" {
		parentCode, err = h.validator.ValidateCode(parentCode)
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		parentLevel, err = h.validator.ValidateLevel(d, r.URL.Query().Get("level"))
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		// An unknown parent is a 404, not an empty child list.
		if _, err := h.store.ByCode(d, parentLevel, parentCode, versionID); err != nil {
			h.respondStoreError(w, err)
			return
		}
	}

	nodes, err := h.store.Browse(d, parentCode, parentLevel, versionID)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.RespondWithJSON(w, http.StatusOK, nodes)
}

// codingRequest is the CreateCoding request body
type codingRequest struct {
	Dictionary string `json:"dictionary"`
	Code       string `json:"code"`
	Verbatim   string `json:"verbatim"`
	CoderID    string `json:"coderId"`
	VersionID  int64  `json:"versionId"`
}

// CreateCoding resolves a term code to its hierarchy paths and records an
// immutable coding
func (h *HTTPHandlerImpl) CreateCoding(w http.ResponseWriter, r *http.Request) {
	var req codingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	d, err := h.validator.ValidateDictionary(req.Dictionary)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	code, err := h.validator.ValidateCode(req.Code)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.ValidateInput(req.Verbatim); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resolution, err := h.resolver.Code(d, code, req.Verbatim, req.CoderID, req.VersionID)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	logging.Info("Coding created",
		"coding_id", resolution.Coding.ID, "dictionary", string(d),
		"code", code, "paths", len(resolution.Paths))
	h.RespondWithJSON(w, http.StatusCreated, resolution)
}

// GetCoding returns one persisted coding record
func (h *HTTPHandlerImpl) GetCoding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "codingId")
	if id == "" || len(id) > 64 {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid coding id")
		return
	}

	record, err := h.store.GetCoding(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.RespondWithJSON(w, http.StatusOK, record)
}

// HealthCheck returns current system health status
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, err := h.health.HealthCheck()

	code := http.StatusOK
	if err != nil || status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":  status,
		"details": details,
	}
	if err != nil {
		response["error"] = err.Error()
	}
	h.RespondWithJSON(w, code, response)
}
