package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

// EnumeratePaths returns every structurally valid path from the given code
// up to the dictionary's top level (top level first in each path), together
// with the code's designated primary top-level code and the version the
// lookup ran against.
//
// MedDRA accepts an LLT or PT code; a PT rolling up through several HLTs
// yields one path per (HLT, HLGT, SOC) combination, enumerated in
// relationship-code order so the "first path" fallback is deterministic.
// WHO Drug accepts a product or ATC code and always yields a single path
// because the ATC tree has derived single parents.
//
// versionID 0 resolves to the active version; ErrNoActiveVersion if there
// is none, ErrNotFound if the code does not exist in the target version.
func (s *Store) EnumeratePaths(d entities.Dictionary, code string, versionID int64) ([]entities.HierarchyPath, string, int64, error) {
	version, err := s.versionFor(d, versionID)
	if err != nil {
		return nil, "", 0, err
	}

	if d == entities.DictionaryWhoDrug {
		paths, primary, err := s.whodrugPaths(code, version)
		return paths, primary, version, err
	}
	paths, primary, err := s.meddraPaths(code, version)
	return paths, primary, version, err
}

func (s *Store) meddraPaths(code string, version int64) ([]entities.HierarchyPath, string, error) {
	numeric, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		return nil, "", ErrNotFound
	}

	// The code may be an LLT (the common case) or a PT coded directly.
	var lltLevel *entities.PathLevel
	ptCode := numeric

	var lltName string
	var lltPT int64
	err = s.db.QueryRow(
		`SELECT name, pt_code FROM meddra_llt WHERE version_id = ? AND code = ?`, version, numeric,
	).Scan(&lltName, &lltPT)
	switch {
	case err == nil:
		lltLevel = &entities.PathLevel{Level: entities.LevelLLT, Code: code, Name: lltName}
		ptCode = lltPT
	case err != sql.ErrNoRows:
		return nil, "", fmt.Errorf("failed to look up LLT %s: %w", code, err)
	}

	var ptName string
	var primarySOC int64
	err = s.db.QueryRow(
		`SELECT name, primary_soc_code FROM meddra_pt WHERE version_id = ? AND code = ?`, version, ptCode,
	).Scan(&ptName, &primarySOC)
	if err == sql.ErrNoRows {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up PT %d: %w", ptCode, err)
	}

	tail := []entities.PathLevel{{Level: entities.LevelPT, Code: strconv.FormatInt(ptCode, 10), Name: ptName}}
	if lltLevel != nil {
		tail = append(tail, *lltLevel)
	}

	hlts, err := s.parentsOf("meddra_hlt_pt", "meddra_hlt", entities.LevelHLT, ptCode, version)
	if err != nil {
		return nil, "", err
	}
	if len(hlts) == 0 {
		// Orphan PT: surface what exists rather than nothing.
		return []entities.HierarchyPath{{Levels: tail}}, strconv.FormatInt(primarySOC, 10), nil
	}

	var paths []entities.HierarchyPath
	for _, hlt := range hlts {
		hlgts, err := s.parentsOf("meddra_hlgt_hlt", "meddra_hlgt", entities.LevelHLGT, mustInt(hlt.Code), version)
		if err != nil {
			return nil, "", err
		}
		if len(hlgts) == 0 {
			paths = append(paths, buildPath(tail, hlt))
			continue
		}
		for _, hlgt := range hlgts {
			socs, err := s.parentsOf("meddra_soc_hlgt", "meddra_soc", entities.LevelSOC, mustInt(hlgt.Code), version)
			if err != nil {
				return nil, "", err
			}
			if len(socs) == 0 {
				paths = append(paths, buildPath(tail, hlgt, hlt))
				continue
			}
			for _, soc := range socs {
				paths = append(paths, buildPath(tail, soc, hlgt, hlt))
			}
		}
	}

	return paths, strconv.FormatInt(primarySOC, 10), nil
}

// parentsOf enumerates the next level up through a relationship table,
// ordered by parent code for deterministic path order.
func (s *Store) parentsOf(relation, table string, level entities.Level, childCode, version int64) ([]entities.PathLevel, error) {
	rows, err := s.db.Query(
		`SELECT p.code, p.name FROM `+relation+` r
		 JOIN `+table+` p ON p.version_id = r.version_id AND p.code = r.parent_code
		 WHERE r.version_id = ? AND r.child_code = ?
		 ORDER BY p.code ASC`, version, childCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s parents: %w", level, err)
	}
	defer rows.Close()

	var parents []entities.PathLevel
	for rows.Next() {
		var p entities.PathLevel
		if err := rows.Scan(&p.Code, &p.Name); err != nil {
			return nil, err
		}
		p.Level = level
		parents = append(parents, p)
	}
	return parents, rows.Err()
}

// buildPath prepends the upper levels (given top-down) to the PT/LLT tail.
func buildPath(tail []entities.PathLevel, upper ...entities.PathLevel) entities.HierarchyPath {
	levels := make([]entities.PathLevel, 0, len(upper)+len(tail))
	levels = append(levels, upper...)
	levels = append(levels, tail...)
	return entities.HierarchyPath{Levels: levels}
}

func mustInt(code string) int64 {
	n, _ := strconv.ParseInt(code, 10, 64)
	return n
}

func (s *Store) whodrugPaths(code string, version int64) ([]entities.HierarchyPath, string, error) {
	var tail []entities.PathLevel
	atcCode := code

	// Products carry numeric codes; anything else is tried as an ATC code.
	if productCode, err := strconv.ParseInt(code, 10, 64); err == nil {
		var name, atc string
		err := s.db.QueryRow(
			`SELECT name, atc_code FROM whodrug_product WHERE version_id = ? AND code = ?`, version, productCode,
		).Scan(&name, &atc)
		if err == sql.ErrNoRows {
			return nil, "", ErrNotFound
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to look up product %s: %w", code, err)
		}
		tail = append(tail, entities.PathLevel{Level: entities.LevelProduct, Code: code, Name: name})
		atcCode = atc
	}

	var chain []entities.PathLevel
	for atcCode != "" {
		var name, parent string
		var level int
		err := s.db.QueryRow(
			`SELECT name, level, parent_code FROM whodrug_atc WHERE version_id = ? AND code = ?`, version, atcCode,
		).Scan(&name, &level, &parent)
		if err == sql.ErrNoRows {
			if len(tail) == 0 && len(chain) == 0 {
				return nil, "", ErrNotFound
			}
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to look up ATC %s: %w", atcCode, err)
		}
		chain = append([]entities.PathLevel{{
			Level: entities.Level(fmt.Sprintf("ATC%d", level)),
			Code:  atcCode,
			Name:  name,
		}}, chain...)
		atcCode = parent
	}

	levels := append(chain, tail...)
	if len(levels) == 0 {
		return nil, "", ErrNotFound
	}

	// The derived ATC tree is single-parent, so the only path is primary.
	primary := ""
	if len(chain) > 0 {
		primary = chain[0].Code
	}
	return []entities.HierarchyPath{{Levels: levels}}, primary, nil
}
