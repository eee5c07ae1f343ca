// Package coding maps verbatim clinical terms onto dictionary hierarchy
// paths and records the result as immutable coding records.
package coding

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/interfaces"
)

// Compile-time check to ensure Resolver implements CodingResolver interface
var _ interfaces.CodingResolver = (*Resolver)(nil)

// PathSource is the slice of storage the resolver needs.
type PathSource interface {
	EnumeratePaths(d entities.Dictionary, code string, versionID int64) ([]entities.HierarchyPath, string, int64, error)
	InsertCoding(c *entities.Coding) error
}

// Resolver produces coding records from term codes.
type Resolver struct {
	source PathSource
}

// NewResolver creates a resolver over the given path source.
func NewResolver(source PathSource) *Resolver {
	return &Resolver{source: source}
}

// Code enumerates every hierarchy path for the coded term, selects the
// primary one and persists an immutable coding record built from it.
//
// For MedDRA the primary path is the one ending at the PT's designated
// primary SOC; when no enumerated path reaches that SOC the first path
// stands in. WHO Drug terms have a single derived path, which is therefore
// primary. Storage errors (ErrNotFound, ErrNoActiveVersion) pass through
// for the handler to map.
func (r *Resolver) Code(d entities.Dictionary, code, verbatim, coderID string, versionID int64) (*entities.CodingResolution, error) {
	paths, primaryTop, resolvedVersion, err := r.source.EnumeratePaths(d, code, versionID)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no hierarchy path for code %s", code)
	}

	primary := 0
	if primaryTop != "" {
		for i, p := range paths {
			if len(p.Levels) > 0 && p.Levels[0].Code == primaryTop {
				primary = i
				break
			}
		}
	}
	for i := range paths {
		paths[i].IsPrimaryPath = i == primary
	}

	record := entities.Coding{
		ID:         uuid.NewString(),
		Dictionary: d,
		VersionID:  resolvedVersion,
		Code:       code,
		Verbatim:   verbatim,
		CoderID:    coderID,
		CreatedAt:  time.Now().UTC(),
		Path:       paths[primary].Levels,
	}
	if err := r.source.InsertCoding(&record); err != nil {
		return nil, err
	}

	return &entities.CodingResolution{Coding: record, Paths: paths}, nil
}
