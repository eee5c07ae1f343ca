package entities

// MeddraTerm is one parsed record from a MedDRA term file (soc.asc,
// hlgt.asc, hlt.asc, pt.asc or llt.asc). Only the fields the level's layout
// carries are populated: PrimarySOCCode only for PT records, PTCode and
// IsCurrent only for LLT records.
type MeddraTerm struct {
	Code           int64
	Name           string
	PrimarySOCCode int64
	PTCode         int64
	IsCurrent      bool
}

// MeddraRelation is one parsed parent/child pair from a MedDRA relationship
// file (soc_hlgt.asc, hlgt_hlt.asc or hlt_pt.asc).
type MeddraRelation struct {
	ParentCode int64
	ChildCode  int64
}
