package validation

import (
	"strings"
	"testing"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

func TestValidateInputValid(t *testing.T) {
	v := NewDataValidator()

	tests := []string{
		"headache",
		"Pain NOS (abdominal)",
		"Tension-type headache",
		"B12 deficiency",
		"patient's rash, left arm",
		"Metformin 500mg tab",
	}

	for _, input := range tests {
		if err := v.ValidateInput(input); err != nil {
			t.Errorf("Expected %q to be valid: %v", input, err)
		}
	}
}

func TestValidateInputInvalid(t *testing.T) {
	v := NewDataValidator()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"too long", strings.Repeat("a", 201)},
		{"too many words", "one two three four five six seven eight nine ten eleven twelve thirteen"},
		{"script tag", "<script>alert(1)</script>"},
		{"sql injection", "' or 1=1 --"},
		{"sql comment", "headache --"},
		{"command injection", "pain; rm -rf /"},
		{"path traversal", "../etc/passwd"},
		{"template injection", "${7*7}"},
		{"disallowed characters", "pain\x00"},
		{"angle brackets", "pain < fever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.ValidateInput(tt.input); err == nil {
				t.Errorf("Expected %q to be rejected", tt.input)
			}
		})
	}
}

func TestValidateDictionary(t *testing.T) {
	v := NewDataValidator()

	tests := []struct {
		input    string
		expected entities.Dictionary
		wantErr  bool
	}{
		{"meddra", entities.DictionaryMedDRA, false},
		{"whodrug", entities.DictionaryWhoDrug, false},
		{"MedDRA", entities.DictionaryMedDRA, false},
		{" whodrug ", entities.DictionaryWhoDrug, false},
		{"icd10", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		d, err := v.ValidateDictionary(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Expected %q to be rejected", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateDictionary(%q) failed: %v", tt.input, err)
			continue
		}
		if d != tt.expected {
			t.Errorf("ValidateDictionary(%q) = %s, expected %s", tt.input, d, tt.expected)
		}
	}
}

func TestValidateLevel(t *testing.T) {
	v := NewDataValidator()

	tests := []struct {
		dictionary entities.Dictionary
		input      string
		expected   entities.Level
		wantErr    bool
	}{
		{entities.DictionaryMedDRA, "", entities.LevelSOC, false},
		{entities.DictionaryMedDRA, "pt", entities.LevelPT, false},
		{entities.DictionaryMedDRA, "HLGT", entities.LevelHLGT, false},
		{entities.DictionaryMedDRA, "ATC1", "", true},
		{entities.DictionaryWhoDrug, "", entities.LevelATC1, false},
		{entities.DictionaryWhoDrug, "atc5", entities.LevelATC5, false},
		{entities.DictionaryWhoDrug, "product", entities.LevelProduct, false},
		{entities.DictionaryWhoDrug, "SOC", "", true},
		{entities.DictionaryMedDRA, "bogus", "", true},
	}

	for _, tt := range tests {
		level, err := v.ValidateLevel(tt.dictionary, tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Expected level %q to be rejected for %s", tt.input, tt.dictionary)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateLevel(%s, %q) failed: %v", tt.dictionary, tt.input, err)
			continue
		}
		if level != tt.expected {
			t.Errorf("ValidateLevel(%s, %q) = %s, expected %s", tt.dictionary, tt.input, level, tt.expected)
		}
	}
}

func TestValidateCode(t *testing.T) {
	v := NewDataValidator()

	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"10042772", "10042772", false},
		{"A10BA02", "A10BA02", false},
		{"", "", true},
		{" 10042772", "", true},
		{"10042772;drop", "", true},
		{strings.Repeat("9", 21), "", true},
	}

	for _, tt := range tests {
		code, err := v.ValidateCode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Expected code %q to be rejected", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateCode(%q) failed: %v", tt.input, err)
			continue
		}
		if code != tt.expected {
			t.Errorf("ValidateCode(%q) = %q, expected %q", tt.input, code, tt.expected)
		}
	}
}

func TestValidateLabel(t *testing.T) {
	v := NewDataValidator()

	valid := []string{"MedDRA 27.0", "WHODrug Global 2025 Mar 1", "release_candidate-2"}
	for _, label := range valid {
		if err := v.ValidateLabel(label); err != nil {
			t.Errorf("Expected label %q to be valid: %v", label, err)
		}
	}

	invalid := []string{"", "  ", strings.Repeat("x", 81), "27.0 <script>"}
	for _, label := range invalid {
		if err := v.ValidateLabel(label); err == nil {
			t.Errorf("Expected label %q to be rejected", label)
		}
	}
}

func TestValidateVersionID(t *testing.T) {
	v := NewDataValidator()

	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"3", 3, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		id, err := v.ValidateVersionID(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Expected version id %q to be rejected", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateVersionID(%q) failed: %v", tt.input, err)
			continue
		}
		if id != tt.expected {
			t.Errorf("ValidateVersionID(%q) = %d, expected %d", tt.input, id, tt.expected)
		}
	}
}
