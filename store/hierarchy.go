package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

// ByCode looks up one node by level and code. versionID 0 means the active
// version; when nothing is active the lookup reports ErrNotFound rather
// than raising, matching the read-path contract.
func (s *Store) ByCode(d entities.Dictionary, level entities.Level, code string, versionID int64) (*entities.TermNode, error) {
	version, err := s.versionFor(d, versionID)
	if errors.Is(err, ErrNoActiveVersion) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	switch level {
	case entities.LevelSOC, entities.LevelHLGT, entities.LevelHLT, entities.LevelPT, entities.LevelLLT:
		return s.meddraByCode(level, code, version)
	case entities.LevelATC1, entities.LevelATC2, entities.LevelATC3, entities.LevelATC4, entities.LevelATC5:
		return s.atcByCode(code, version)
	case entities.LevelProduct:
		return s.scanNode(level, s.db.QueryRow(
			`SELECT code, name FROM whodrug_product WHERE version_id = ? AND code = ?`, version, code))
	case entities.LevelIngredient:
		return s.scanNode(level, s.db.QueryRow(
			`SELECT code, name FROM whodrug_ingredient WHERE version_id = ? AND code = ?`, version, code))
	default:
		return nil, fmt.Errorf("unknown level %s: %w", level, ErrNotFound)
	}
}

func (s *Store) meddraByCode(level entities.Level, code string, version int64) (*entities.TermNode, error) {
	numeric, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}

	if level == entities.LevelLLT {
		var node entities.TermNode
		var current int
		err := s.db.QueryRow(
			`SELECT code, name, is_current FROM meddra_llt WHERE version_id = ? AND code = ?`,
			version, numeric,
		).Scan(&node.Code, &node.Name, &current)
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up LLT %s: %w", code, err)
		}
		node.Level = level
		node.IsLeaf = true
		isCurrent := current == 1
		node.Current = &isCurrent
		return &node, nil
	}

	table := meddraTermTables[string(level)]
	return s.scanNode(level, s.db.QueryRow(
		`SELECT code, name FROM `+table+` WHERE version_id = ? AND code = ?`, version, numeric))
}

func (s *Store) atcByCode(code string, version int64) (*entities.TermNode, error) {
	var node entities.TermNode
	var level int
	err := s.db.QueryRow(
		`SELECT code, name, level FROM whodrug_atc WHERE version_id = ? AND code = ?`, version, code,
	).Scan(&node.Code, &node.Name, &level)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up ATC %s: %w", code, err)
	}
	node.Level = entities.Level(fmt.Sprintf("ATC%d", level))
	return &node, nil
}

// Browse returns the ordered immediate children one level below the given
// parent; an empty parentCode means the dictionary's top level. Children
// are name-ascending and tagged leaf/non-leaf. No active version and no
// override yields an empty list.
func (s *Store) Browse(d entities.Dictionary, parentCode string, parentLevel entities.Level, versionID int64) ([]entities.TermNode, error) {
	version, err := s.versionFor(d, versionID)
	if errors.Is(err, ErrNoActiveVersion) {
		return []entities.TermNode{}, nil
	}
	if err != nil {
		return nil, err
	}

	if parentCode == "" {
		return s.topLevelNodes(d, version)
	}
	return s.childrenOf(d, parentCode, parentLevel, version)
}

func (s *Store) topLevelNodes(d entities.Dictionary, version int64) ([]entities.TermNode, error) {
	if d == entities.DictionaryWhoDrug {
		return s.collectNodes(entities.LevelATC1,
			`SELECT code, name FROM whodrug_atc WHERE version_id = ? AND level = 1 ORDER BY name ASC`, version)
	}
	return s.collectNodes(entities.LevelSOC,
		`SELECT code, name FROM meddra_soc WHERE version_id = ? ORDER BY name ASC`, version)
}

func (s *Store) childrenOf(d entities.Dictionary, parentCode string, parentLevel entities.Level, version int64) ([]entities.TermNode, error) {
	switch parentLevel {
	case entities.LevelSOC, entities.LevelHLGT, entities.LevelHLT:
		parent, err := strconv.ParseInt(parentCode, 10, 64)
		if err != nil {
			return []entities.TermNode{}, nil
		}
		child := entities.NextLevel(d, parentLevel)
		relation := map[entities.Level]string{
			entities.LevelSOC:  "meddra_soc_hlgt",
			entities.LevelHLGT: "meddra_hlgt_hlt",
			entities.LevelHLT:  "meddra_hlt_pt",
		}[parentLevel]
		childTable := meddraTermTables[string(child)]
		return s.collectNodes(child,
			`SELECT c.code, c.name FROM `+relation+` r
			 JOIN `+childTable+` c ON c.version_id = r.version_id AND c.code = r.child_code
			 WHERE r.version_id = ? AND r.parent_code = ?
			 ORDER BY c.name ASC`, version, parent)

	case entities.LevelPT:
		parent, err := strconv.ParseInt(parentCode, 10, 64)
		if err != nil {
			return []entities.TermNode{}, nil
		}
		return s.collectLLTNodes(version, parent)

	case entities.LevelATC1, entities.LevelATC2, entities.LevelATC3, entities.LevelATC4:
		child := entities.NextLevel(d, parentLevel)
		return s.collectNodes(child,
			`SELECT code, name FROM whodrug_atc WHERE version_id = ? AND parent_code = ? ORDER BY name ASC`,
			version, parentCode)

	case entities.LevelATC5:
		return s.collectNodes(entities.LevelProduct,
			`SELECT code, name FROM whodrug_product WHERE version_id = ? AND atc_code = ? ORDER BY name ASC`,
			version, parentCode)

	case entities.LevelProduct:
		parent, err := strconv.ParseInt(parentCode, 10, 64)
		if err != nil {
			return []entities.TermNode{}, nil
		}
		return s.collectNodes(entities.LevelIngredient,
			`SELECT i.code, i.name FROM whodrug_product_ingredient pi
			 JOIN whodrug_ingredient i ON i.version_id = pi.version_id AND i.code = pi.ingredient_code
			 WHERE pi.version_id = ? AND pi.product_code = ?
			 ORDER BY i.name ASC`, version, parent)

	case entities.LevelLLT, entities.LevelIngredient:
		// Bottom levels have no children.
		return []entities.TermNode{}, nil

	default:
		return nil, fmt.Errorf("unknown browse level %s: %w", parentLevel, ErrInvalidState)
	}
}

func (s *Store) collectNodes(level entities.Level, query string, args ...any) ([]entities.TermNode, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s children: %w", level, err)
	}
	defer rows.Close()

	nodes := []entities.TermNode{}
	for rows.Next() {
		var node entities.TermNode
		if err := rows.Scan(&node.Code, &node.Name); err != nil {
			return nil, err
		}
		node.Level = level
		node.IsLeaf = level == entities.LevelLLT || level == entities.LevelIngredient
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func (s *Store) collectLLTNodes(version, ptCode int64) ([]entities.TermNode, error) {
	rows, err := s.db.Query(
		`SELECT code, name, is_current FROM meddra_llt WHERE version_id = ? AND pt_code = ? ORDER BY name ASC`,
		version, ptCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query LLT children: %w", err)
	}
	defer rows.Close()

	nodes := []entities.TermNode{}
	for rows.Next() {
		var node entities.TermNode
		var current int
		if err := rows.Scan(&node.Code, &node.Name, &current); err != nil {
			return nil, err
		}
		node.Level = entities.LevelLLT
		node.IsLeaf = true
		isCurrent := current == 1
		node.Current = &isCurrent
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func (s *Store) scanNode(level entities.Level, row *sql.Row) (*entities.TermNode, error) {
	var node entities.TermNode
	err := row.Scan(&node.Code, &node.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s node: %w", level, err)
	}
	node.Level = level
	node.IsLeaf = level == entities.LevelLLT || level == entities.LevelIngredient
	return &node, nil
}
