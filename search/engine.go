// Package search ranks leaf-term candidates fetched from storage. The store
// does the broad substring prefilter; the engine assigns match tiers and
// orders the final result.
package search

import (
	"sort"
	"strings"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/interfaces"
)

// Compile-time check to ensure Engine implements SearchEngine interface
var _ interfaces.SearchEngine = (*Engine)(nil)

// DefaultLimit caps a search response when the caller does not set one.
const DefaultLimit = 50

// MinQueryLength is the shortest query that reaches storage; anything
// shorter answers empty immediately.
const MinQueryLength = 2

// CandidateSource is the slice of storage the engine needs.
type CandidateSource interface {
	SearchCandidates(d entities.Dictionary, query string, includeNonCurrent bool, versionID int64) ([]entities.SearchResult, error)
}

// Engine computes ranked search results over a candidate source.
type Engine struct {
	source CandidateSource
	limit  int
}

// NewEngine creates an engine with the given default result limit;
// limit <= 0 selects DefaultLimit.
func NewEngine(source CandidateSource, limit int) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{source: source, limit: limit}
}

// Search returns candidates ranked by match tier: exact leaf name, leaf name
// prefix, leaf name substring, then parent-only substring. Ties within a
// tier keep the store's leaf-name ordering. Queries are matched
// case-insensitively against whole names after trimming; a trimmed query
// under two characters returns empty without touching storage.
func (e *Engine) Search(d entities.Dictionary, query string, includeNonCurrent bool, limit int, versionID int64) ([]entities.SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(needle)) < MinQueryLength {
		return []entities.SearchResult{}, nil
	}

	results, err := e.source.SearchCandidates(d, needle, includeNonCurrent, versionID)
	if err != nil {
		return nil, err
	}

	for i := range results {
		results[i].MatchTier = tierFor(needle, &results[i])
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchTier < results[j].MatchTier
	})

	if limit <= 0 {
		limit = e.limit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func tierFor(needle string, r *entities.SearchResult) int {
	leaf := strings.ToLower(r.LeafName)
	switch {
	case leaf == needle:
		return entities.MatchExact
	case strings.HasPrefix(leaf, needle):
		return entities.MatchPrefix
	case strings.Contains(leaf, needle):
		return entities.MatchContains
	default:
		// Prefilter guarantees the parent name matched instead.
		return entities.MatchParentContains
	}
}
