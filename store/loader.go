package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ravenmed/terminology-api/dictionaryparser"
	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

// DefaultBatchSize keeps multi-row inserts comfortably under SQLite's bound
// variable limit while amortizing statement overhead.
const DefaultBatchSize = 500

// BulkLoader writes one distribution file per transaction: the parser
// streams records into a bounded batch buffer, the buffer flushes as a
// multi-row insert, and any failure rolls the whole file back. Relationship
// rows reference codes by value, so term files must be loaded before
// relationship files; the importer owns that ordering.
type BulkLoader struct {
	store     *Store
	batchSize int
}

// NewBulkLoader creates a loader over the store. batchSize <= 0 selects
// DefaultBatchSize.
func NewBulkLoader(s *Store, batchSize int) *BulkLoader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BulkLoader{store: s, batchSize: batchSize}
}

// batcher accumulates rows for one table and flushes them as a single
// INSERT with multiple VALUES groups. Inserts are OR IGNORE: vendor files
// occasionally repeat records, and the lenient load policy treats a
// duplicate line like any other skipped line rather than failing the file.
type batcher struct {
	tx          *sql.Tx
	insertSQL   string // "INSERT OR IGNORE INTO t(cols) VALUES "
	placeholder string // "(?,?,?)"
	width       int
	limit       int
	args        []any
	rows        int
}

func newBatcher(tx *sql.Tx, table string, columns []string, limit int) *batcher {
	marks := make([]string, len(columns))
	for i := range marks {
		marks[i] = "?"
	}
	return &batcher{
		tx:          tx,
		insertSQL:   fmt.Sprintf("INSERT OR IGNORE INTO %s(%s) VALUES ", table, strings.Join(columns, ", ")),
		placeholder: "(" + strings.Join(marks, ",") + ")",
		width:       len(columns),
		limit:       limit,
		args:        make([]any, 0, limit*len(columns)),
	}
}

func (b *batcher) add(args ...any) error {
	if len(args) != b.width {
		return fmt.Errorf("batcher: got %d values, want %d", len(args), b.width)
	}
	b.args = append(b.args, args...)
	b.rows++
	if b.rows >= b.limit {
		return b.flush()
	}
	return nil
}

func (b *batcher) flush() error {
	if b.rows == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(b.insertSQL)
	for i := 0; i < b.rows; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(b.placeholder)
	}
	if _, err := b.tx.Exec(sb.String(), b.args...); err != nil {
		return fmt.Errorf("bulk insert failed: %w", err)
	}
	b.args = b.args[:0]
	b.rows = 0
	return nil
}

// loadFile wraps one file's parse-and-insert in a transaction.
func (l *BulkLoader) loadFile(run func(tx *sql.Tx) (entities.ParseStats, error)) (entities.ParseStats, error) {
	tx, err := l.store.db.Begin()
	if err != nil {
		return entities.ParseStats{}, fmt.Errorf("failed to begin load transaction: %w", err)
	}

	stats, err := run(tx)
	if err != nil {
		tx.Rollback()
		return stats, err
	}
	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit load transaction: %w", err)
	}
	return stats, nil
}

// LoadMeddraTerms loads one MedDRA term file for the version.
func (l *BulkLoader) LoadMeddraTerms(versionID int64, level entities.Level, path string) (entities.ParseStats, error) {
	table, ok := meddraTermTables[string(level)]
	if !ok {
		return entities.ParseStats{}, fmt.Errorf("no MedDRA term table for level %s", level)
	}

	return l.loadFile(func(tx *sql.Tx) (entities.ParseStats, error) {
		var b *batcher
		switch level {
		case entities.LevelPT:
			b = newBatcher(tx, table, []string{"version_id", "code", "name", "primary_soc_code"}, l.batchSize)
		case entities.LevelLLT:
			b = newBatcher(tx, table, []string{"version_id", "code", "name", "pt_code", "is_current"}, l.batchSize)
		default:
			b = newBatcher(tx, table, []string{"version_id", "code", "name"}, l.batchSize)
		}

		stats, err := dictionaryparser.ParseMeddraTerms(path, level, func(t entities.MeddraTerm) error {
			switch level {
			case entities.LevelPT:
				return b.add(versionID, t.Code, t.Name, t.PrimarySOCCode)
			case entities.LevelLLT:
				current := 0
				if t.IsCurrent {
					current = 1
				}
				return b.add(versionID, t.Code, t.Name, t.PTCode, current)
			default:
				return b.add(versionID, t.Code, t.Name)
			}
		})
		if err != nil {
			return stats, err
		}
		return stats, b.flush()
	})
}

// LoadMeddraRelations loads one MedDRA relationship file (soc_hlgt,
// hlgt_hlt or hlt_pt) for the version.
func (l *BulkLoader) LoadMeddraRelations(versionID int64, fileKey, path string) (entities.ParseStats, error) {
	table, ok := meddraRelationTables[fileKey]
	if !ok {
		return entities.ParseStats{}, fmt.Errorf("no MedDRA relationship table for file %s", fileKey)
	}

	return l.loadFile(func(tx *sql.Tx) (entities.ParseStats, error) {
		b := newBatcher(tx, table, []string{"version_id", "parent_code", "child_code"}, l.batchSize)
		stats, err := dictionaryparser.ParseMeddraRelations(path, func(r entities.MeddraRelation) error {
			return b.add(versionID, r.ParentCode, r.ChildCode)
		})
		if err != nil {
			return stats, err
		}
		return stats, b.flush()
	})
}

// LoadAtcTerms loads the ATC classification file for the version.
func (l *BulkLoader) LoadAtcTerms(versionID int64, path string) (entities.ParseStats, error) {
	return l.loadFile(func(tx *sql.Tx) (entities.ParseStats, error) {
		b := newBatcher(tx, "whodrug_atc", []string{"version_id", "code", "name", "level", "parent_code"}, l.batchSize)
		stats, err := dictionaryparser.ParseAtcTerms(path, func(t entities.AtcTerm) error {
			return b.add(versionID, t.Code, t.Name, t.Level, t.ParentCode)
		})
		if err != nil {
			return stats, err
		}
		return stats, b.flush()
	})
}

// LoadIngredients loads the WHO Drug ingredient file for the version.
func (l *BulkLoader) LoadIngredients(versionID int64, path string) (entities.ParseStats, error) {
	return l.loadFile(func(tx *sql.Tx) (entities.ParseStats, error) {
		b := newBatcher(tx, "whodrug_ingredient", []string{"version_id", "code", "name"}, l.batchSize)
		stats, err := dictionaryparser.ParseIngredients(path, func(t entities.Ingredient) error {
			return b.add(versionID, t.Code, t.Name)
		})
		if err != nil {
			return stats, err
		}
		return stats, b.flush()
	})
}

// LoadProducts loads the WHO Drug product file for the version.
func (l *BulkLoader) LoadProducts(versionID int64, path string) (entities.ParseStats, error) {
	return l.loadFile(func(tx *sql.Tx) (entities.ParseStats, error) {
		b := newBatcher(tx, "whodrug_product", []string{"version_id", "code", "name", "atc_code"}, l.batchSize)
		stats, err := dictionaryparser.ParseProducts(path, func(t entities.Product) error {
			return b.add(versionID, t.Code, t.Name, t.AtcCode)
		})
		if err != nil {
			return stats, err
		}
		return stats, b.flush()
	})
}

// LoadProductIngredients loads the product–ingredient link file for the
// version.
func (l *BulkLoader) LoadProductIngredients(versionID int64, path string) (entities.ParseStats, error) {
	return l.loadFile(func(tx *sql.Tx) (entities.ParseStats, error) {
		b := newBatcher(tx, "whodrug_product_ingredient", []string{"version_id", "product_code", "ingredient_code"}, l.batchSize)
		stats, err := dictionaryparser.ParseProductIngredients(path, func(t entities.ProductIngredient) error {
			return b.add(versionID, t.ProductCode, t.IngredientCode)
		})
		if err != nil {
			return stats, err
		}
		return stats, b.flush()
	})
}
