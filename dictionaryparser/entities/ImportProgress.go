package entities

import "time"

// ImportRequest names the distribution files of one release. Files maps the
// dictionary's file keys (soc, hlgt_hlt, atc, product...) to paths on the
// server's filesystem.
type ImportRequest struct {
	Dictionary  Dictionary        `json:"dictionary"`
	Label       string            `json:"label"`
	ReleaseDate string            `json:"releaseDate,omitempty"`
	ImportedBy  string            `json:"importedBy,omitempty"`
	Files       map[string]string `json:"files"`
}

// ImportProgress is a point-in-time snapshot of a running or finished
// import, polled by operators. Error keeps the first failure's message
// verbatim; a Done snapshot with a non-empty Error means the version was
// left half-loaded and must be deleted and retried.
type ImportProgress struct {
	Dictionary     Dictionary `json:"dictionary"`
	VersionID      int64      `json:"versionId"`
	Label          string     `json:"label"`
	FilesTotal     int        `json:"filesTotal"`
	FilesProcessed int        `json:"filesProcessed"`
	CurrentFile    string     `json:"currentFile,omitempty"`
	RecordsLoaded  int64      `json:"recordsLoaded"`
	SkippedLines   int64      `json:"skippedLines"`
	StartedAt      time.Time  `json:"startedAt"`
	Done           bool       `json:"done"`
	Error          string     `json:"error,omitempty"`
}
