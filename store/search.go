package store

import (
	"errors"
	"fmt"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

// SearchCandidates fetches every leaf whose own name or immediate parent's
// name contains the lowercased query, denormalizing the parent and top-level
// names so callers need no second round-trip. Ranking happens in the search
// engine; rows come back leaf-name-ascending so tie order is already final.
// versionID 0 means the active version; none active yields an empty result.
func (s *Store) SearchCandidates(d entities.Dictionary, query string, includeNonCurrent bool, versionID int64) ([]entities.SearchResult, error) {
	version, err := s.versionFor(d, versionID)
	if errors.Is(err, ErrNoActiveVersion) {
		return []entities.SearchResult{}, nil
	}
	if err != nil {
		return nil, err
	}

	if d == entities.DictionaryWhoDrug {
		return s.whodrugCandidates(query, version)
	}
	return s.meddraCandidates(query, includeNonCurrent, version)
}

func (s *Store) meddraCandidates(query string, includeNonCurrent bool, version int64) ([]entities.SearchResult, error) {
	sql := `SELECT llt.code, llt.name, llt.is_current, pt.code, pt.name,
	               COALESCE(soc.code, ''), COALESCE(soc.name, '')
	        FROM meddra_llt llt
	        JOIN meddra_pt pt ON pt.version_id = llt.version_id AND pt.code = llt.pt_code
	        LEFT JOIN meddra_soc soc ON soc.version_id = pt.version_id AND soc.code = pt.primary_soc_code
	        WHERE llt.version_id = ?
	          AND (instr(lower(llt.name), ?) > 0 OR instr(lower(pt.name), ?) > 0)`
	if !includeNonCurrent {
		sql += ` AND llt.is_current = 1`
	}
	sql += ` ORDER BY llt.name ASC`

	rows, err := s.db.Query(sql, version, query, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query MedDRA candidates: %w", err)
	}
	defer rows.Close()

	results := []entities.SearchResult{}
	for rows.Next() {
		var r entities.SearchResult
		var current int
		if err := rows.Scan(&r.LeafCode, &r.LeafName, &current, &r.PTCode, &r.PTName, &r.SOCCode, &r.SOCName); err != nil {
			return nil, err
		}
		r.IsCurrent = current == 1
		r.VersionID = version
		results = append(results, r)
	}
	return results, rows.Err()
}

// whodrugCandidates searches products: the product is the leaf, its ATC
// level-5 term the parent and the ATC level-1 group the top, carried under
// the same result fields. WHO Drug has no non-current flag; products are
// always current.
func (s *Store) whodrugCandidates(query string, version int64) ([]entities.SearchResult, error) {
	rows, err := s.db.Query(
		`SELECT p.code, p.name, a5.code, a5.name,
		        COALESCE(a1.code, ''), COALESCE(a1.name, '')
		 FROM whodrug_product p
		 JOIN whodrug_atc a5 ON a5.version_id = p.version_id AND a5.code = p.atc_code
		 LEFT JOIN whodrug_atc a1 ON a1.version_id = p.version_id AND a1.code = substr(p.atc_code, 1, 1)
		 WHERE p.version_id = ?
		   AND (instr(lower(p.name), ?) > 0 OR instr(lower(a5.name), ?) > 0)
		 ORDER BY p.name ASC`,
		version, query, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query WHO Drug candidates: %w", err)
	}
	defer rows.Close()

	results := []entities.SearchResult{}
	for rows.Next() {
		var r entities.SearchResult
		if err := rows.Scan(&r.LeafCode, &r.LeafName, &r.PTCode, &r.PTName, &r.SOCCode, &r.SOCName); err != nil {
			return nil, err
		}
		r.IsCurrent = true
		r.VersionID = version
		results = append(results, r)
	}
	return results, rows.Err()
}
