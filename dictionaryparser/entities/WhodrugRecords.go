package entities

// AtcTerm is one parsed ATC classification record. Level and ParentCode are
// derived from the code length, not read from the file.
type AtcTerm struct {
	Code       string
	Name       string
	Level      int
	ParentCode string
}

// Ingredient is one parsed WHO Drug ingredient record.
type Ingredient struct {
	Code int64
	Name string
}

// Product is one parsed WHO Drug product record with its ATC level-5
// classification code.
type Product struct {
	Code    int64
	Name    string
	AtcCode string
}

// ProductIngredient links a product to one of its ingredients.
type ProductIngredient struct {
	ProductCode    int64
	IngredientCode int64
}
