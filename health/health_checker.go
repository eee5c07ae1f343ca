// Package health provides health checking functionality for the terminology API.
package health

import (
	"errors"
	"time"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/interfaces"
	"github.com/ravenmed/terminology-api/store"
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store    interfaces.TermStore
	importer interfaces.Importer
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(termStore interfaces.TermStore, imp interfaces.Importer) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store:    termStore,
		importer: imp,
	}
}

// HealthCheck reports storage connectivity plus per-dictionary readiness.
// The service is healthy when the database answers and at least one
// dictionary has an active version; no active version anywhere leaves the
// service degraded rather than unhealthy, since the API still serves
// version management and imports.
func (h *HealthCheckerImpl) HealthCheck() (string, map[string]any, error) {
	details := map[string]any{
		"checked_at": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.store.Ping(); err != nil {
		details["database"] = "unreachable"
		return "unhealthy", details, err
	}
	details["database"] = "ok"

	activeCount := 0
	for _, d := range []entities.Dictionary{entities.DictionaryMedDRA, entities.DictionaryWhoDrug} {
		version, err := h.store.GetActiveVersion(d)
		switch {
		case errors.Is(err, store.ErrNotFound):
			details[string(d)] = map[string]any{"active_version": nil}
		case err != nil:
			details[string(d)] = map[string]any{"error": err.Error()}
		default:
			activeCount++
			details[string(d)] = map[string]any{
				"active_version": version.Label,
				"version_id":     version.ID,
				"term_count":     version.TermCount,
				"leaf_count":     version.LeafCount,
			}
		}
	}
	details["import_running"] = h.importer.Running()

	if activeCount == 0 {
		return "degraded", details, nil
	}
	return "healthy", details, nil
}
