package entities

// Dictionary identifies a supported terminology distribution format.
type Dictionary string

const (
	DictionaryMedDRA  Dictionary = "meddra"
	DictionaryWhoDrug Dictionary = "whodrug"
)

// Valid reports whether the dictionary type is one of the supported formats.
func (d Dictionary) Valid() bool {
	return d == DictionaryMedDRA || d == DictionaryWhoDrug
}

// Level is one hierarchy level of a dictionary. MedDRA has five levels from
// System Organ Class down to Lowest Level Term; WHO Drug has the five ATC
// classification levels plus products and ingredients below them.
type Level string

const (
	LevelSOC  Level = "SOC"
	LevelHLGT Level = "HLGT"
	LevelHLT  Level = "HLT"
	LevelPT   Level = "PT"
	LevelLLT  Level = "LLT"

	LevelATC1       Level = "ATC1"
	LevelATC2       Level = "ATC2"
	LevelATC3       Level = "ATC3"
	LevelATC4       Level = "ATC4"
	LevelATC5       Level = "ATC5"
	LevelProduct    Level = "PRODUCT"
	LevelIngredient Level = "INGREDIENT"
)

// meddraOrder and whodrugOrder list the browsable levels top to bottom.
var (
	meddraOrder  = []Level{LevelSOC, LevelHLGT, LevelHLT, LevelPT, LevelLLT}
	whodrugOrder = []Level{LevelATC1, LevelATC2, LevelATC3, LevelATC4, LevelATC5, LevelProduct, LevelIngredient}
)

// TopLevel returns the root browse level of a dictionary.
func TopLevel(d Dictionary) Level {
	if d == DictionaryWhoDrug {
		return LevelATC1
	}
	return LevelSOC
}

// NextLevel returns the level immediately below l in the given dictionary,
// or "" if l is the bottom level or unknown to that dictionary.
func NextLevel(d Dictionary, l Level) Level {
	order := meddraOrder
	if d == DictionaryWhoDrug {
		order = whodrugOrder
	}
	for i, lvl := range order {
		if lvl == l && i+1 < len(order) {
			return order[i+1]
		}
	}
	return ""
}

// ValidLevel reports whether l belongs to dictionary d.
func ValidLevel(d Dictionary, l Level) bool {
	order := meddraOrder
	if d == DictionaryWhoDrug {
		order = whodrugOrder
	}
	for _, lvl := range order {
		if lvl == l {
			return true
		}
	}
	return false
}
