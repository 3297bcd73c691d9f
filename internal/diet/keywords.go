package diet

var allergenKeywords = map[Allergen][]string{
	Nuts:      {"almond", "peanut", "walnut", "cashew", "pecan", "hazelnut", "pistachio", "macadamia"},
	Shellfish: {"shrimp", "prawn", "crab", "lobster", "clam", "mussel", "oyster", "scallop"},
	Dairy:     {"milk", "cheese", "butter", "cream", "yogurt", "whey", "ghee"},
	Soy:       {"soy", "tofu", "tempeh", "edamame", "miso"},
	Eggs:      {"egg", "mayonnaise", "meringue"},
}

// Everything a vegetarian avoids. Vegans avoid these plus animal products.
var nonVegetarianKeywords = []string{
	"chicken", "beef", "pork", "bacon", "ham", "turkey", "lamb", "sausage",
	"prosciutto", "pepperoni", "salami", "fish", "salmon", "tuna", "anchovy",
	"shrimp", "crab", "lobster", "gelatin",
}

var nonVeganKeywords = append(append([]string(nil), nonVegetarianKeywords...),
	"milk", "cheese", "butter", "cream", "yogurt", "ghee", "whey",
	"egg", "mayonnaise", "honey",
)

var glutenKeywords = []string{
	"wheat", "flour", "bread", "pasta", "spaghetti", "noodle", "barley", "rye",
	"couscous", "soy sauce", "tortilla", "seitan", "cracker", "panko",
}
