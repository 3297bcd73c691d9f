package substitutes

// DefaultSeed is the curated substitution data. Keys are ingredient display
// names as they appear in the catalog; candidate ids are resolved by Compile.
func DefaultSeed() Seed {
	return Seed{
		Vegan: Table{
			"Chicken Breast": {
				{Name: "Extra Firm Tofu", Note: "press before cooking", QuantityAdjustment: 1.0},
				{Name: "Tempeh", Note: "steam to soften bitterness", QuantityAdjustment: 1.0},
			},
			"Ground Beef": {
				{Name: "Lentils", Note: "cooked weight", QuantityAdjustment: 1.25},
				{Name: "Tempeh", QuantityAdjustment: 1.0},
			},
			"Bacon": {
				{Name: "Tempeh Bacon", QuantityAdjustment: 1.0},
			},
			"Egg": {
				{Name: "Flax Egg", Note: "1 tbsp flax + 3 tbsp water per egg", QuantityAdjustment: 1.0},
			},
			"Milk": {
				{Name: "Oat Milk", QuantityAdjustment: 1.0},
				{Name: "Soy Milk", QuantityAdjustment: 1.0},
			},
			"Butter": {
				{Name: "Vegan Butter", QuantityAdjustment: 1.0},
				{Name: "Olive Oil", Note: "use less, it is all fat", QuantityAdjustment: 0.75},
			},
			"Cheddar Cheese": {
				{Name: "Nutritional Yeast", Note: "for a cheesy flavor", QuantityAdjustment: 0.5},
			},
			"Honey": {
				{Name: "Maple Syrup", QuantityAdjustment: 1.0},
				{Name: "Agave Nectar", Note: "sweeter than honey", QuantityAdjustment: 0.75},
			},
			"Chicken Broth": {
				{Name: "Vegetable Broth", QuantityAdjustment: 1.0},
			},
			"Greek Yogurt": {
				{Name: "Coconut Yogurt", QuantityAdjustment: 1.0},
			},
		},
		Vegetarian: Table{
			"Chicken Broth": {
				{Name: "Vegetable Broth", QuantityAdjustment: 1.0},
			},
			"Bacon": {
				{Name: "Tempeh Bacon", QuantityAdjustment: 1.0},
				{Name: "Smoked Paprika", Note: "for the smoky note only", QuantityAdjustment: 0.1},
			},
			"Anchovy": {
				{Name: "Capers", QuantityAdjustment: 1.0},
			},
		},
		GlutenFree: Table{
			"Spaghetti": {
				{Name: "Rice Noodles", QuantityAdjustment: 1.0},
				{Name: "Gluten-Free Spaghetti", QuantityAdjustment: 1.0},
			},
			"Egg Noodles": {
				{Name: "Rice Noodles", QuantityAdjustment: 1.0},
			},
			"All-Purpose Flour": {
				{Name: "Gluten-Free Flour Blend", QuantityAdjustment: 1.0},
				{Name: "Almond Flour", Note: "denser crumb", QuantityAdjustment: 1.25},
			},
			"Soy Sauce": {
				{Name: "Tamari", QuantityAdjustment: 1.0},
				{Name: "Coconut Aminos", QuantityAdjustment: 1.0},
			},
			"Bread": {
				{Name: "Gluten-Free Bread", QuantityAdjustment: 1.0},
			},
			"Breadcrumbs": {
				{Name: "Crushed Rice Crackers", QuantityAdjustment: 1.0},
			},
			"Flour Tortilla": {
				{Name: "Corn Tortilla", QuantityAdjustment: 1.0},
			},
			"Couscous": {
				{Name: "Quinoa", QuantityAdjustment: 1.0},
			},
		},
		Allergen: map[string]Table{
			"nuts": {
				"Almonds": {
					{Name: "Sunflower Seeds", QuantityAdjustment: 1.0},
					{Name: "Pumpkin Seeds", QuantityAdjustment: 1.0},
				},
				"Peanut Butter": {
					{Name: "Sunflower Seed Butter", QuantityAdjustment: 1.0},
				},
				"Almond Milk": {
					{Name: "Oat Milk", QuantityAdjustment: 1.0},
				},
				"Walnuts": {
					{Name: "Pumpkin Seeds", QuantityAdjustment: 1.0},
				},
			},
			"shellfish": {
				"Shrimp": {
					{Name: "Hearts of Palm", QuantityAdjustment: 1.0},
					{Name: "Chicken Breast", QuantityAdjustment: 1.0},
				},
				"Crab": {
					{Name: "Hearts of Palm", QuantityAdjustment: 1.0},
				},
			},
			"dairy": {
				"Milk": {
					{Name: "Oat Milk", QuantityAdjustment: 1.0},
				},
				"Butter": {
					{Name: "Olive Oil", QuantityAdjustment: 0.75},
				},
				"Cheddar Cheese": {
					{Name: "Nutritional Yeast", QuantityAdjustment: 0.5},
				},
				"Greek Yogurt": {
					{Name: "Coconut Yogurt", QuantityAdjustment: 1.0},
				},
			},
			"soy": {
				"Tofu": {
					{Name: "Chickpeas", QuantityAdjustment: 1.0},
				},
				"Extra Firm Tofu": {
					{Name: "Chickpeas", QuantityAdjustment: 1.0},
				},
				"Soy Sauce": {
					{Name: "Coconut Aminos", QuantityAdjustment: 1.0},
				},
				"Soy Milk": {
					{Name: "Oat Milk", QuantityAdjustment: 1.0},
				},
			},
			"eggs": {
				"Egg": {
					{Name: "Flax Egg", Note: "binding only", QuantityAdjustment: 1.0},
				},
				"Egg Noodles": {
					{Name: "Rice Noodles", QuantityAdjustment: 1.0},
				},
				"Mayonnaise": {
					{Name: "Vegan Mayonnaise", QuantityAdjustment: 1.0},
				},
			},
		},
	}
}
