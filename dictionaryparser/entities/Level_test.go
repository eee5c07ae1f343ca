package entities

import "testing"

func TestDictionaryValid(t *testing.T) {
	if !DictionaryMedDRA.Valid() || !DictionaryWhoDrug.Valid() {
		t.Error("Expected the supported dictionaries to be valid")
	}
	if Dictionary("icd10").Valid() || Dictionary("").Valid() {
		t.Error("Expected unknown dictionaries to be invalid")
	}
}

func TestTopLevel(t *testing.T) {
	if TopLevel(DictionaryMedDRA) != LevelSOC {
		t.Errorf("Expected SOC, got %s", TopLevel(DictionaryMedDRA))
	}
	if TopLevel(DictionaryWhoDrug) != LevelATC1 {
		t.Errorf("Expected ATC1, got %s", TopLevel(DictionaryWhoDrug))
	}
}

func TestNextLevel(t *testing.T) {
	tests := []struct {
		dictionary Dictionary
		level      Level
		expected   Level
	}{
		{DictionaryMedDRA, LevelSOC, LevelHLGT},
		{DictionaryMedDRA, LevelPT, LevelLLT},
		{DictionaryMedDRA, LevelLLT, ""},
		{DictionaryMedDRA, LevelATC1, ""},
		{DictionaryWhoDrug, LevelATC1, LevelATC2},
		{DictionaryWhoDrug, LevelATC5, LevelProduct},
		{DictionaryWhoDrug, LevelProduct, LevelIngredient},
		{DictionaryWhoDrug, LevelIngredient, ""},
		{DictionaryWhoDrug, LevelSOC, ""},
	}

	for _, tt := range tests {
		if got := NextLevel(tt.dictionary, tt.level); got != tt.expected {
			t.Errorf("NextLevel(%s, %s) = %q, expected %q", tt.dictionary, tt.level, got, tt.expected)
		}
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel(DictionaryMedDRA, LevelHLGT) {
		t.Error("Expected HLGT to belong to MedDRA")
	}
	if ValidLevel(DictionaryMedDRA, LevelATC3) {
		t.Error("Expected ATC3 not to belong to MedDRA")
	}
	if !ValidLevel(DictionaryWhoDrug, LevelIngredient) {
		t.Error("Expected INGREDIENT to belong to WHO Drug")
	}
	if ValidLevel(DictionaryWhoDrug, LevelLLT) {
		t.Error("Expected LLT not to belong to WHO Drug")
	}
}
