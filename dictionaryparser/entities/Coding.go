package entities

import "time"

// PathLevel is one (level, code, name) step of a hierarchy path, ordered top
// level first.
type PathLevel struct {
	Level Level  `json:"level"`
	Code  string `json:"code"`
	Name  string `json:"name"`
}

// HierarchyPath is one structurally valid path from a coded term up to the
// top level. A term can have several because intermediate levels may roll up
// through multiple parents; exactly one is flagged primary.
type HierarchyPath struct {
	Levels        []PathLevel `json:"levels"`
	IsPrimaryPath bool        `json:"isPrimaryPath"`
}

// Coding is the immutable record produced when a verbatim clinical term is
// mapped to a hierarchy path in a specific dictionary version. Re-coding
// produces a new record, never an edit.
type Coding struct {
	ID         string      `json:"id"`
	Dictionary Dictionary  `json:"dictionary"`
	VersionID  int64       `json:"versionId"`
	Code       string      `json:"code"`
	Verbatim   string      `json:"verbatim"`
	CoderID    string      `json:"coderId,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	Path       []PathLevel `json:"path"`
}

// CodingResolution is the full answer of the coding resolver: the persisted
// Coding built from the primary path plus every enumerated path with its
// primary flag, so callers can show the ambiguity that was resolved.
type CodingResolution struct {
	Coding Coding          `json:"coding"`
	Paths  []HierarchyPath `json:"paths"`
}
