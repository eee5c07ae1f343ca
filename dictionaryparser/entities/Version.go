package entities

import "time"

// VersionStatus tracks the load lifecycle of a dictionary version.
// A version is created as "provisioning", becomes "loaded" once every file
// has been committed and counts recomputed, and never goes back. Activation
// is a separate flag: only a loaded version should be activated.
type VersionStatus string

const (
	VersionProvisioning VersionStatus = "provisioning"
	VersionLoaded       VersionStatus = "loaded"
)

// DictionaryVersion is one imported dictionary release. Exactly one version
// per dictionary type may be active at any instant.
type DictionaryVersion struct {
	ID          int64         `json:"id"`
	Dictionary  Dictionary    `json:"dictionary"`
	Label       string        `json:"label"`
	ReleaseDate string        `json:"releaseDate,omitempty"`
	ImportedAt  time.Time     `json:"importedAt"`
	ImportedBy  string        `json:"importedBy,omitempty"`
	Status      VersionStatus `json:"status"`
	Active      bool          `json:"active"`
	TermCount   int64         `json:"termCount"`
	LeafCount   int64         `json:"leafCount"`
}
