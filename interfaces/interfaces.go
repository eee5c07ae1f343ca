// Package interfaces defines core abstractions for the terminology API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"net/http"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

// TermStore defines the contract for dictionary storage operations. All
// reads are version-scoped: a versionID of 0 resolves to the dictionary's
// active version.
type TermStore interface {
	// Version lifecycle
	CreateVersion(d entities.Dictionary, label, releaseDate, importedBy string) (*entities.DictionaryVersion, error)
	GetVersionByID(id int64) (*entities.DictionaryVersion, error)
	GetActiveVersion(d entities.Dictionary) (*entities.DictionaryVersion, error)
	ListVersions(d entities.Dictionary) ([]entities.DictionaryVersion, error)
	ActivateVersion(id int64) error
	DeleteVersion(id int64) error
	MarkLoaded(id int64) error
	RecomputeCounts(id int64) error

	// Hierarchy reads
	ByCode(d entities.Dictionary, level entities.Level, code string, versionID int64) (*entities.TermNode, error)
	Browse(d entities.Dictionary, parentCode string, parentLevel entities.Level, versionID int64) ([]entities.TermNode, error)
	SearchCandidates(d entities.Dictionary, query string, includeNonCurrent bool, versionID int64) ([]entities.SearchResult, error)
	EnumeratePaths(d entities.Dictionary, code string, versionID int64) ([]entities.HierarchyPath, string, int64, error)

	// Coding records
	InsertCoding(c *entities.Coding) error
	GetCoding(id string) (*entities.Coding, error)

	// Ping reports storage connectivity
	Ping() error
}

// Parser defines the contract for streaming dictionary distribution files
// into typed records. Parsers are lenient: unparseable lines are counted in
// the returned stats, emit errors abort the file.
type Parser interface {
	ParseMeddraTerms(path string, level entities.Level, emit func(entities.MeddraTerm) error) (entities.ParseStats, error)
	ParseMeddraRelations(path string, emit func(entities.MeddraRelation) error) (entities.ParseStats, error)
	ParseAtcTerms(path string, emit func(entities.AtcTerm) error) (entities.ParseStats, error)
	ParseIngredients(path string, emit func(entities.Ingredient) error) (entities.ParseStats, error)
	ParseProducts(path string, emit func(entities.Product) error) (entities.ParseStats, error)
	ParseProductIngredients(path string, emit func(entities.ProductIngredient) error) (entities.ParseStats, error)
}

// SearchEngine defines the contract for ranked leaf-term search over the
// active (or an explicit) dictionary version.
type SearchEngine interface {
	// Search returns ranked matches for query. limit <= 0 selects the
	// engine's default; versionID 0 targets the active version.
	Search(d entities.Dictionary, query string, includeNonCurrent bool, limit int, versionID int64) ([]entities.SearchResult, error)
}

// CodingResolver defines the contract for mapping a coded term to its
// hierarchy paths and persisting the resulting coding record.
type CodingResolver interface {
	Code(d entities.Dictionary, code, verbatim, coderID string, versionID int64) (*entities.CodingResolution, error)
}

// Importer defines the contract for asynchronous dictionary imports. One
// import runs at a time.
type Importer interface {
	// Start validates the request, creates the version row and launches the
	// load in the background.
	Start(req entities.ImportRequest) (*entities.DictionaryVersion, error)

	// Progress returns the latest snapshot of the current or most recent
	// import, or nil when none has run.
	Progress() *entities.ImportProgress

	// Running reports whether an import is in flight.
	Running() bool
}

// Scheduler defines the contract for background maintenance jobs.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// ServeHTTP implements the http.Handler interface
	ServeHTTP(w http.ResponseWriter, r *http.Request)

	// Version management
	ListVersions(w http.ResponseWriter, r *http.Request)
	GetActiveVersion(w http.ResponseWriter, r *http.Request)
	ActivateVersion(w http.ResponseWriter, r *http.Request)
	DeleteVersion(w http.ResponseWriter, r *http.Request)

	// Import
	StartImport(w http.ResponseWriter, r *http.Request)
	ImportProgress(w http.ResponseWriter, r *http.Request)

	// Terminology reads
	Search(w http.ResponseWriter, r *http.Request)
	Browse(w http.ResponseWriter, r *http.Request)

	// Coding
	CreateCoding(w http.ResponseWriter, r *http.Request)
	GetCoding(w http.ResponseWriter, r *http.Request)

	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
// It provides system health monitoring and reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, err error)
}

// DataValidator defines the contract for validating user input before it
// reaches storage or search.
type DataValidator interface {
	// ValidateInput validates free-text user input strings
	ValidateInput(input string) error

	// ValidateDictionary parses a dictionary path segment
	ValidateDictionary(input string) (entities.Dictionary, error)

	// ValidateLevel parses a level parameter for a dictionary
	ValidateLevel(d entities.Dictionary, input string) (entities.Level, error)

	// ValidateCode validates a term or product code
	ValidateCode(input string) (string, error)

	// ValidateLabel validates a version label
	ValidateLabel(input string) error

	// ValidateVersionID parses an optional version id parameter; empty
	// input yields 0 (the active version)
	ValidateVersionID(input string) (int64, error)
}
