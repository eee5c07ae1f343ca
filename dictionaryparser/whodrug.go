package dictionaryparser

import (
	"strconv"
	"strings"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

// WHO Drug Global-style files are |-delimited and may carry a header row.
// ATC hierarchy level and parent code are not in the file at all: both are
// derived from the code's length (A, A10, A10B, A10BA, A10BA02).

// AtcLevel maps an ATC code length to its classification level, or 0 for a
// length no level uses.
func AtcLevel(code string) int {
	switch l := len(code); {
	case l == 1:
		return 1
	case l == 3:
		return 2
	case l == 4:
		return 3
	case l == 5:
		return 4
	case l >= 7:
		return 5
	default:
		return 0
	}
}

// AtcParent returns the code truncated to the previous level's length, or ""
// for a level-1 code.
func AtcParent(code string) string {
	switch AtcLevel(code) {
	case 2:
		return code[:1]
	case 3:
		return code[:3]
	case 4:
		return code[:4]
	case 5:
		return code[:5]
	default:
		return ""
	}
}

// isHeaderLine inspects the first line of a WHO Drug file: vendor exports
// sometimes prepend column labels, recognizable because the id column holds
// a name-like token instead of a code.
func isHeaderLine(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(fields[0]))
	switch {
	case first == "":
		return false
	case strings.Contains(first, "code"), strings.Contains(first, "id"),
		strings.Contains(first, "name"), strings.Contains(first, "term"):
		return true
	}
	return false
}

// parseWhodrugFile drives the shared line loop: split on |, skip an optional
// header, hand accepted field slices to row.
func parseWhodrugFile(path string, minFields int, row func(fields []string) (bool, error)) (entities.ParseStats, error) {
	var stats entities.ParseStats

	scanner, closeFile, err := lineScanner(path)
	if err != nil {
		return stats, err
	}
	defer closeFile()

	first := true
	for scanner.Scan() {
		stats.Lines++
		line := scanner.Text()

		if len(line) == 0 {
			stats.EmptyLines++
			continue
		}

		fields := strings.Split(line, "|")
		if first {
			first = false
			if isHeaderLine(fields) {
				continue
			}
		}
		if len(fields) < minFields {
			stats.ShortLines++
			continue
		}

		ok, err := row(fields)
		if err != nil {
			return stats, err
		}
		if !ok {
			stats.FormatErrors++
			continue
		}
		stats.Records++
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}

	logSkips(path, stats)
	return stats, nil
}

// ParseAtcTerms streams an ATC classification file. Codes whose length maps
// to no ATC level are dropped as format errors.
func ParseAtcTerms(path string, emit func(entities.AtcTerm) error) (entities.ParseStats, error) {
	return parseWhodrugFile(path, 2, func(fields []string) (bool, error) {
		code := strings.TrimSpace(fields[0])
		name := strings.TrimSpace(fields[1])
		level := AtcLevel(code)
		if level == 0 || name == "" {
			return false, nil
		}
		return true, emit(entities.AtcTerm{
			Code:       code,
			Name:       name,
			Level:      level,
			ParentCode: AtcParent(code),
		})
	})
}

// ParseIngredients streams a WHO Drug ingredient file.
func ParseIngredients(path string, emit func(entities.Ingredient) error) (entities.ParseStats, error) {
	return parseWhodrugFile(path, 2, func(fields []string) (bool, error) {
		code, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		name := strings.TrimSpace(fields[1])
		if err != nil || code <= 0 || name == "" {
			return false, nil
		}
		return true, emit(entities.Ingredient{Code: code, Name: name})
	})
}

// ParseProducts streams a WHO Drug product file (code|name|atc_code).
func ParseProducts(path string, emit func(entities.Product) error) (entities.ParseStats, error) {
	return parseWhodrugFile(path, 3, func(fields []string) (bool, error) {
		code, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		name := strings.TrimSpace(fields[1])
		atc := strings.TrimSpace(fields[2])
		if err != nil || code <= 0 || name == "" || AtcLevel(atc) != 5 {
			return false, nil
		}
		return true, emit(entities.Product{Code: code, Name: name, AtcCode: atc})
	})
}

// ParseProductIngredients streams a product–ingredient link file.
func ParseProductIngredients(path string, emit func(entities.ProductIngredient) error) (entities.ParseStats, error) {
	return parseWhodrugFile(path, 2, func(fields []string) (bool, error) {
		product, err1 := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		ingredient, err2 := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err1 != nil || err2 != nil || product <= 0 || ingredient <= 0 {
			return false, nil
		}
		return true, emit(entities.ProductIngredient{ProductCode: product, IngredientCode: ingredient})
	})
}
