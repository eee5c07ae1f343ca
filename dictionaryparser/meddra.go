package dictionaryparser

import (
	"strconv"
	"strings"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/logging"
)

// MedDRA ASCII distribution files are $-delimited with no header row and a
// fixed column layout per file:
//
//	soc/hlgt/hlt: code$name$...
//	pt:           code$name$<unused>$primary_soc_code$...
//	llt:          code$name$pt_code$...$currency(Y/N, column 10)
//	soc_hlgt etc: parent_code$child_code$
//
// The llt currency column is absent in some older releases; a missing or
// unrecognized value means the term is current.
const lltCurrencyColumn = 9

// ParseMeddraTerms streams one MedDRA term file, emitting a typed record per
// accepted line. Lines whose required leading columns do not parse are
// dropped and counted. Emit errors abort the parse and are returned as-is so
// a failed bulk insert stops reading the file.
func ParseMeddraTerms(path string, level entities.Level, emit func(entities.MeddraTerm) error) (entities.ParseStats, error) {
	var stats entities.ParseStats

	scanner, closeFile, err := lineScanner(path)
	if err != nil {
		return stats, err
	}
	defer closeFile()

	for scanner.Scan() {
		stats.Lines++
		line := scanner.Text()

		if len(line) == 0 {
			stats.EmptyLines++
			continue
		}

		fields := strings.Split(line, "$")
		minFields := 2
		if level == entities.LevelLLT {
			minFields = 3
		}
		if len(fields) < minFields {
			stats.ShortLines++
			continue
		}

		code, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || code <= 0 {
			stats.FormatErrors++
			continue
		}
		name := fields[1]
		if name == "" {
			stats.FormatErrors++
			continue
		}

		term := entities.MeddraTerm{Code: code, Name: name, IsCurrent: true}

		switch level {
		case entities.LevelPT:
			// Primary SOC sits in column 4; older files leave it blank.
			if len(fields) > 3 && fields[3] != "" {
				if soc, err := strconv.ParseInt(fields[3], 10, 64); err == nil {
					term.PrimarySOCCode = soc
				}
			}
		case entities.LevelLLT:
			ptCode, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil || ptCode <= 0 {
				stats.FormatErrors++
				continue
			}
			term.PTCode = ptCode
			if len(fields) > lltCurrencyColumn && fields[lltCurrencyColumn] == "N" {
				term.IsCurrent = false
			}
		}

		if err := emit(term); err != nil {
			return stats, err
		}
		stats.Records++
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}

	logSkips(path, stats)
	return stats, nil
}

// ParseMeddraRelations streams one MedDRA relationship file
// (parent_code$child_code$ pairs).
func ParseMeddraRelations(path string, emit func(entities.MeddraRelation) error) (entities.ParseStats, error) {
	var stats entities.ParseStats

	scanner, closeFile, err := lineScanner(path)
	if err != nil {
		return stats, err
	}
	defer closeFile()

	for scanner.Scan() {
		stats.Lines++
		line := scanner.Text()

		if len(line) == 0 {
			stats.EmptyLines++
			continue
		}

		fields := strings.Split(line, "$")
		if len(fields) < 2 {
			stats.ShortLines++
			continue
		}

		parent, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || parent <= 0 {
			stats.FormatErrors++
			continue
		}
		child, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || child <= 0 {
			stats.FormatErrors++
			continue
		}

		if err := emit(entities.MeddraRelation{ParentCode: parent, ChildCode: child}); err != nil {
			return stats, err
		}
		stats.Records++
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}

	logSkips(path, stats)
	return stats, nil
}

// logSkips reports per-file skip statistics so silent drops stay visible to
// operators.
func logSkips(path string, stats entities.ParseStats) {
	if stats.Skipped() == 0 {
		return
	}
	logging.Info("Distribution file skip statistics",
		"file", path,
		"empty_lines", stats.EmptyLines,
		"short_lines", stats.ShortLines,
		"format_errors", stats.FormatErrors,
		"total_lines", stats.Lines,
		"records_parsed", stats.Records)
}
