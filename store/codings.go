package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

// InsertCoding persists an immutable coding record. The resolved path is
// stored as JSON alongside the denormalized fields so the record stays
// readable after its source version is deleted.
func (s *Store) InsertCoding(c *entities.Coding) error {
	pathJSON, err := json.Marshal(c.Path)
	if err != nil {
		return fmt.Errorf("failed to encode coding path: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO codings (id, dictionary, version_id, code, verbatim, coder_id, created_at, path_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, string(c.Dictionary), c.VersionID, c.Code, c.Verbatim, c.CoderID,
		c.CreatedAt.UTC().Format(time.RFC3339), string(pathJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert coding %s: %w", c.ID, err)
	}
	return nil
}

// GetCoding returns one coding record by id, or ErrNotFound.
func (s *Store) GetCoding(id string) (*entities.Coding, error) {
	var c entities.Coding
	var dictionary, createdAt, pathJSON string
	err := s.db.QueryRow(
		`SELECT id, dictionary, version_id, code, verbatim, coder_id, created_at, path_json
		 FROM codings WHERE id = ?`, id,
	).Scan(&c.ID, &dictionary, &c.VersionID, &c.Code, &c.Verbatim, &c.CoderID, &createdAt, &pathJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up coding %s: %w", id, err)
	}

	c.Dictionary = entities.Dictionary(dictionary)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		c.CreatedAt = t
	}
	if err := json.Unmarshal([]byte(pathJSON), &c.Path); err != nil {
		return nil, fmt.Errorf("failed to decode coding path for %s: %w", id, err)
	}
	return &c, nil
}
