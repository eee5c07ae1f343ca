package entities

// TermNode is one hierarchy node as returned by browse and by-code lookups.
// Codes are formatted as strings because MedDRA and WHO Drug numeric codes
// and ATC string codes share the same read surface.
type TermNode struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Level   Level  `json:"level"`
	IsLeaf  bool   `json:"isLeaf"`
	Current *bool  `json:"isCurrent,omitempty"` // LLT only
}
