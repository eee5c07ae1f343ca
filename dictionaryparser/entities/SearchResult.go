package entities

// Match tiers, highest relevance first. The ranking is deterministic
// substring matching, not an edit-distance score.
const (
	MatchExact          = 1 // leaf name equals the query (case-insensitive)
	MatchPrefix         = 2 // leaf name starts with the query
	MatchContains       = 3 // leaf name contains the query
	MatchParentContains = 4 // only the parent name contains the query
)

// SearchResult is one ranked hit. Leaf/parent/top denormalize the LLT, PT
// and primary SOC for MedDRA; for WHO Drug they carry the product, its ATC
// level-5 term and the ATC level-1 group under the same JSON keys.
type SearchResult struct {
	LeafCode  string `json:"code"`
	LeafName  string `json:"name"`
	PTCode    string `json:"ptCode"`
	PTName    string `json:"ptName"`
	SOCCode   string `json:"socCode,omitempty"`
	SOCName   string `json:"socName,omitempty"`
	IsCurrent bool   `json:"isCurrent"`
	MatchTier int    `json:"matchTier"`
	VersionID int64  `json:"versionId"`
}
