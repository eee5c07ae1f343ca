// Package validation provides input validation for the terminology API.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/interfaces"
)

// Pre-compiled regex patterns for performance optimization
// Compiled once at package initialization and reused for all validations
var (
	// Input validation: alphanumeric + safe punctuation. Medical terms carry
	// parentheses, commas and slashes (e.g. "Pain NOS (abdominal)").
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'’,/()\[\]]+$`)

	// Term and ATC codes: digits, or letter-digit ATC groups like A10BA02
	codeRegex = regexp.MustCompile(`^[A-Za-z0-9]+$`)

	// Version labels like "MedDRA 27.0" or "WHODrug Global 2025 Mar 1"
	labelRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\._]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	// strings.Contains is 5-10x faster than regex for these patterns
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateInput validates free-text user input (search queries, verbatim
// terms) with enhanced security
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > 200 {
		return fmt.Errorf("input too long: maximum 200 characters")
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 12 {
		return fmt.Errorf("input too complex: maximum 12 words allowed")
	}

	// Check for potentially dangerous patterns using string matching (5-10x faster than regex)
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces and common medical punctuation are allowed")
	}

	return nil
}

// ValidateDictionary parses a dictionary path segment
func (v *DataValidatorImpl) ValidateDictionary(input string) (entities.Dictionary, error) {
	d := entities.Dictionary(strings.ToLower(strings.TrimSpace(input)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown dictionary %q", input)
	}
	return d, nil
}

// ValidateLevel parses a level parameter for a dictionary. Empty input
// selects the dictionary's top level so a bare browse starts at the root.
func (v *DataValidatorImpl) ValidateLevel(d entities.Dictionary, input string) (entities.Level, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(input))
	if trimmed == "" {
		return entities.TopLevel(d), nil
	}
	level := entities.Level(trimmed)
	if !entities.ValidLevel(d, level) {
		return "", fmt.Errorf("level %q does not belong to dictionary %s", input, d)
	}
	return level, nil
}

// ValidateCode validates a term, ATC or product code.
// No regex needed for length; codeRegex limits the alphabet.
func (v *DataValidatorImpl) ValidateCode(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("code cannot be empty")
	}
	if len(input) != len(trimmed) {
		return "", fmt.Errorf("code contains invalid characters. Only letters and digits are allowed")
	}
	if len(trimmed) > 20 {
		return "", fmt.Errorf("code too long: maximum 20 characters")
	}
	if !codeRegex.MatchString(trimmed) {
		return "", fmt.Errorf("code contains invalid characters. Only letters and digits are allowed")
	}
	return trimmed, nil
}

// ValidateLabel validates a version label
func (v *DataValidatorImpl) ValidateLabel(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("label cannot be empty")
	}
	if len(trimmed) > 80 {
		return fmt.Errorf("label too long: maximum 80 characters")
	}
	if !labelRegex.MatchString(trimmed) {
		return fmt.Errorf("label contains invalid characters")
	}
	return nil
}

// ValidateVersionID parses an optional version id query parameter.
// strconv.ParseInt validates numeric format for free; empty input selects
// the active version.
func (v *DataValidatorImpl) ValidateVersionID(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("version id must be a positive integer")
	}
	return id, nil
}
