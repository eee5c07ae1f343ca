package store

// One table per level, one per adjacent-level relationship. All node and
// relationship rows carry version_id as part of their primary key; cascade
// order on delete is relationships, then leaves, then the version row.
//
// The partial unique index on dictionary_versions backs the single-active
// invariant at the storage layer; activation still runs deactivate-all plus
// activate-one in a single transaction.
const schema = `
CREATE TABLE IF NOT EXISTS dictionary_versions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	dictionary    TEXT    NOT NULL,
	label         TEXT    NOT NULL,
	release_date  TEXT    NOT NULL DEFAULT '',
	imported_at   TEXT    NOT NULL,
	imported_by   TEXT    NOT NULL DEFAULT '',
	status        TEXT    NOT NULL DEFAULT 'provisioning',
	active        INTEGER NOT NULL DEFAULT 0,
	term_count    INTEGER NOT NULL DEFAULT 0,
	leaf_count    INTEGER NOT NULL DEFAULT 0
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_versions_single_active
	ON dictionary_versions(dictionary) WHERE active = 1;

CREATE TABLE IF NOT EXISTS meddra_soc (
	version_id INTEGER NOT NULL,
	code       INTEGER NOT NULL,
	name       TEXT    NOT NULL,
	PRIMARY KEY (version_id, code)
);
CREATE TABLE IF NOT EXISTS meddra_hlgt (
	version_id INTEGER NOT NULL,
	code       INTEGER NOT NULL,
	name       TEXT    NOT NULL,
	PRIMARY KEY (version_id, code)
);
CREATE TABLE IF NOT EXISTS meddra_hlt (
	version_id INTEGER NOT NULL,
	code       INTEGER NOT NULL,
	name       TEXT    NOT NULL,
	PRIMARY KEY (version_id, code)
);
CREATE TABLE IF NOT EXISTS meddra_pt (
	version_id       INTEGER NOT NULL,
	code             INTEGER NOT NULL,
	name             TEXT    NOT NULL,
	primary_soc_code INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (version_id, code)
);
CREATE TABLE IF NOT EXISTS meddra_llt (
	version_id INTEGER NOT NULL,
	code       INTEGER NOT NULL,
	name       TEXT    NOT NULL,
	pt_code    INTEGER NOT NULL,
	is_current INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (version_id, code)
);
CREATE INDEX IF NOT EXISTS idx_meddra_llt_pt ON meddra_llt(version_id, pt_code);

CREATE TABLE IF NOT EXISTS meddra_soc_hlgt (
	version_id  INTEGER NOT NULL,
	parent_code INTEGER NOT NULL,
	child_code  INTEGER NOT NULL,
	PRIMARY KEY (version_id, parent_code, child_code)
);
CREATE INDEX IF NOT EXISTS idx_meddra_soc_hlgt_child ON meddra_soc_hlgt(version_id, child_code);
CREATE TABLE IF NOT EXISTS meddra_hlgt_hlt (
	version_id  INTEGER NOT NULL,
	parent_code INTEGER NOT NULL,
	child_code  INTEGER NOT NULL,
	PRIMARY KEY (version_id, parent_code, child_code)
);
CREATE INDEX IF NOT EXISTS idx_meddra_hlgt_hlt_child ON meddra_hlgt_hlt(version_id, child_code);
CREATE TABLE IF NOT EXISTS meddra_hlt_pt (
	version_id  INTEGER NOT NULL,
	parent_code INTEGER NOT NULL,
	child_code  INTEGER NOT NULL,
	PRIMARY KEY (version_id, parent_code, child_code)
);
CREATE INDEX IF NOT EXISTS idx_meddra_hlt_pt_child ON meddra_hlt_pt(version_id, child_code);

CREATE TABLE IF NOT EXISTS whodrug_atc (
	version_id  INTEGER NOT NULL,
	code        TEXT    NOT NULL,
	name        TEXT    NOT NULL,
	level       INTEGER NOT NULL,
	parent_code TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (version_id, code)
);
CREATE INDEX IF NOT EXISTS idx_whodrug_atc_parent ON whodrug_atc(version_id, parent_code);
CREATE TABLE IF NOT EXISTS whodrug_ingredient (
	version_id INTEGER NOT NULL,
	code       INTEGER NOT NULL,
	name       TEXT    NOT NULL,
	PRIMARY KEY (version_id, code)
);
CREATE TABLE IF NOT EXISTS whodrug_product (
	version_id INTEGER NOT NULL,
	code       INTEGER NOT NULL,
	name       TEXT    NOT NULL,
	atc_code   TEXT    NOT NULL,
	PRIMARY KEY (version_id, code)
);
CREATE INDEX IF NOT EXISTS idx_whodrug_product_atc ON whodrug_product(version_id, atc_code);
CREATE TABLE IF NOT EXISTS whodrug_product_ingredient (
	version_id      INTEGER NOT NULL,
	product_code    INTEGER NOT NULL,
	ingredient_code INTEGER NOT NULL,
	PRIMARY KEY (version_id, product_code, ingredient_code)
);

CREATE TABLE IF NOT EXISTS codings (
	id         TEXT PRIMARY KEY,
	dictionary TEXT    NOT NULL,
	version_id INTEGER NOT NULL,
	code       TEXT    NOT NULL,
	verbatim   TEXT    NOT NULL,
	coder_id   TEXT    NOT NULL DEFAULT '',
	created_at TEXT    NOT NULL,
	path_json  TEXT    NOT NULL
);
`

// meddraRelationTables maps a relationship file key to its join table,
// cascade-ordered for deletes (relationships before leaves).
var meddraRelationTables = map[string]string{
	"soc_hlgt": "meddra_soc_hlgt",
	"hlgt_hlt": "meddra_hlgt_hlt",
	"hlt_pt":   "meddra_hlt_pt",
}

// meddraTermTables maps a MedDRA level to its node table.
var meddraTermTables = map[string]string{
	"SOC":  "meddra_soc",
	"HLGT": "meddra_hlgt",
	"HLT":  "meddra_hlt",
	"PT":   "meddra_pt",
	"LLT":  "meddra_llt",
}
