package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

// CreateVersion allocates a new version row: provisioning, inactive, zero
// counts. Activation is always a separate operator action.
func (s *Store) CreateVersion(d entities.Dictionary, label, releaseDate, importedBy string) (*entities.DictionaryVersion, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO dictionary_versions (dictionary, label, release_date, imported_at, imported_by, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(d), label, releaseDate, now.Format(time.RFC3339), importedBy, string(entities.VersionProvisioning),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new version id: %w", err)
	}
	return s.GetVersionByID(id)
}

// GetVersionByID returns one version or ErrNotFound.
func (s *Store) GetVersionByID(id int64) (*entities.DictionaryVersion, error) {
	return s.scanVersion(s.db.QueryRow(
		`SELECT id, dictionary, label, release_date, imported_at, imported_by, status, active, term_count, leaf_count
		 FROM dictionary_versions WHERE id = ?`, id))
}

// GetActiveVersion returns the dictionary's active version or ErrNotFound.
func (s *Store) GetActiveVersion(d entities.Dictionary) (*entities.DictionaryVersion, error) {
	return s.scanVersion(s.db.QueryRow(
		`SELECT id, dictionary, label, release_date, imported_at, imported_by, status, active, term_count, leaf_count
		 FROM dictionary_versions WHERE dictionary = ? AND active = 1`, string(d)))
}

// ListVersions returns all versions of a dictionary, newest import first.
// An empty dictionary lists every version.
func (s *Store) ListVersions(d entities.Dictionary) ([]entities.DictionaryVersion, error) {
	query := `SELECT id, dictionary, label, release_date, imported_at, imported_by, status, active, term_count, leaf_count
	          FROM dictionary_versions`
	args := []any{}
	if d != "" {
		query += ` WHERE dictionary = ?`
		args = append(args, string(d))
	}
	query += ` ORDER BY imported_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []entities.DictionaryVersion
	for rows.Next() {
		v, err := scanVersionRow(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

// ActivateVersion makes id the single active version of its dictionary
// type. Deactivate-all and activate-one share one transaction so readers
// never observe zero or two active versions.
func (s *Store) ActivateVersion(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin activation: %w", err)
	}
	defer tx.Rollback()

	var dictionary string
	err = tx.QueryRow(`SELECT dictionary FROM dictionary_versions WHERE id = ?`, id).Scan(&dictionary)
	if err == sql.ErrNoRows {
		return fmt.Errorf("version %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up version %d: %w", id, err)
	}

	if _, err := tx.Exec(`UPDATE dictionary_versions SET active = 0 WHERE dictionary = ?`, dictionary); err != nil {
		return fmt.Errorf("failed to deactivate versions: %w", err)
	}
	if _, err := tx.Exec(`UPDATE dictionary_versions SET active = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to activate version %d: %w", id, err)
	}

	return tx.Commit()
}

// DeleteVersion removes an inactive version and all its rows, cascading
// bottom-up: relationship tables, then leaf tables, then the version row.
// Deleting the active version is refused with ErrInvalidState. Codings are
// left in place; they denormalize everything they reference.
func (s *Store) DeleteVersion(id int64) error {
	v, err := s.GetVersionByID(id)
	if err != nil {
		return err
	}
	if v.Active {
		return fmt.Errorf("version %d is active: %w", id, ErrInvalidState)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	var tables []string
	if v.Dictionary == entities.DictionaryWhoDrug {
		tables = []string{"whodrug_product_ingredient", "whodrug_product", "whodrug_ingredient", "whodrug_atc"}
	} else {
		tables = []string{
			"meddra_soc_hlgt", "meddra_hlgt_hlt", "meddra_hlt_pt",
			"meddra_llt", "meddra_pt", "meddra_hlt", "meddra_hlgt", "meddra_soc",
		}
	}
	for _, table := range tables {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE version_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete %s rows: %w", table, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM dictionary_versions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete version row: %w", err)
	}

	return tx.Commit()
}

// MarkLoaded transitions a version out of the provisioning state once every
// file has been committed.
func (s *Store) MarkLoaded(id int64) error {
	res, err := s.db.Exec(`UPDATE dictionary_versions SET status = ? WHERE id = ?`,
		string(entities.VersionLoaded), id)
	if err != nil {
		return fmt.Errorf("failed to mark version %d loaded: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("version %d: %w", id, ErrNotFound)
	}
	return nil
}

// RecomputeCounts persists fresh aggregate node and leaf counts onto the
// version row after all files are loaded.
func (s *Store) RecomputeCounts(id int64) error {
	v, err := s.GetVersionByID(id)
	if err != nil {
		return err
	}

	var termTables []string
	var leafTable string
	if v.Dictionary == entities.DictionaryWhoDrug {
		termTables = []string{"whodrug_atc", "whodrug_ingredient", "whodrug_product"}
		leafTable = "whodrug_product"
	} else {
		termTables = []string{"meddra_soc", "meddra_hlgt", "meddra_hlt", "meddra_pt", "meddra_llt"}
		leafTable = "meddra_llt"
	}

	var termCount, leafCount int64
	for _, table := range termTables {
		var n int64
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE version_id = ?`, id).Scan(&n); err != nil {
			return fmt.Errorf("failed to count %s rows: %w", table, err)
		}
		termCount += n
		if table == leafTable {
			leafCount = n
		}
	}

	_, err = s.db.Exec(`UPDATE dictionary_versions SET term_count = ?, leaf_count = ? WHERE id = ?`,
		termCount, leafCount, id)
	if err != nil {
		return fmt.Errorf("failed to store counts: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanVersion(row *sql.Row) (*entities.DictionaryVersion, error) {
	v, err := scanVersionRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return v, err
}

func scanVersionRow(row rowScanner) (*entities.DictionaryVersion, error) {
	var v entities.DictionaryVersion
	var dictionary, status, importedAt string
	var active int
	err := row.Scan(&v.ID, &dictionary, &v.Label, &v.ReleaseDate, &importedAt, &v.ImportedBy,
		&status, &active, &v.TermCount, &v.LeafCount)
	if err != nil {
		return nil, err
	}
	v.Dictionary = entities.Dictionary(dictionary)
	v.Status = entities.VersionStatus(status)
	v.Active = active == 1
	if t, err := time.Parse(time.RFC3339, importedAt); err == nil {
		v.ImportedAt = t
	}
	return &v, nil
}
