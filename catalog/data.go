package catalog

import "nutriguide"

type ing = nutriguide.Ingredient

func per(cal, protein, carbs, fat, fiber, sodium, potassium float64) nutriguide.Nutrition {
	return nutriguide.Nutrition{
		Calories: cal, ProteinG: protein, CarbsG: carbs, FatG: fat,
		FiberG: fiber, SodiumMG: sodium, PotassiumMG: potassium,
	}
}

var defaultFoods = []Food{
	{Name: "oats", Aliases: []string{"rolled oats", "oatmeal"}, Per100g: per(389, 17, 66, 7, 11, 2, 429), PricePer100g: 0.3, Carbon: CarbonLow},
	{Name: "eggs", Aliases: []string{"egg"}, Per100g: per(143, 13, 1, 10, 0, 142, 138), PricePer100g: 0.5, Carbon: CarbonMedium, Tags: []string{TagEgg}},
	{Name: "greek yogurt", Aliases: []string{"yogurt"}, Per100g: per(97, 9, 4, 5, 0, 36, 141), PricePer100g: 0.6, Carbon: CarbonMedium, Tags: []string{TagDairy}},
	{Name: "milk", Per100g: per(42, 3.4, 5, 1, 0, 44, 150), PricePer100g: 0.15, Carbon: CarbonMedium, Tags: []string{TagDairy}},
	{Name: "banana", Per100g: per(89, 1.1, 23, 0.3, 2.6, 1, 358), PricePer100g: 0.25, Carbon: CarbonLow, Tags: []string{TagHighPotassium}},
	{Name: "apple", Per100g: per(52, 0.3, 14, 0.2, 2.4, 1, 107), PricePer100g: 0.3, Carbon: CarbonLow},
	{Name: "berries", Aliases: []string{"blueberries", "strawberries"}, Per100g: per(57, 0.7, 14, 0.3, 2.4, 1, 77), PricePer100g: 1.2, Carbon: CarbonLow, Season: []int{6, 7, 8}},
	{Name: "orange", Per100g: per(47, 0.9, 12, 0.1, 2.4, 0, 181), PricePer100g: 0.3, Carbon: CarbonLow, Season: []int{12, 1, 2}, Tags: []string{TagHighPotassium}},
	{Name: "grapefruit", Per100g: per(42, 0.8, 10.7, 0.1, 1.6, 0, 135), PricePer100g: 0.4, Carbon: CarbonLow, Season: []int{12, 1, 2}, Tags: []string{TagGrapefruit}},
	{Name: "peanut butter", Per100g: per(588, 25, 20, 50, 6, 17, 649), PricePer100g: 0.6, Carbon: CarbonLow, Tags: []string{TagPeanut, TagHighPotassium}},
	{Name: "peanuts", Per100g: per(567, 26, 16, 49, 8.5, 18, 705), PricePer100g: 0.5, Carbon: CarbonLow, Tags: []string{TagPeanut, TagHighPotassium}},
	{Name: "almonds", Per100g: per(579, 21, 22, 50, 12, 1, 733), PricePer100g: 2.0, Carbon: CarbonLow, Tags: []string{TagNuts, TagHighPotassium}},
	{Name: "walnuts", Per100g: per(654, 15, 14, 65, 7, 2, 441), PricePer100g: 2.2, Carbon: CarbonLow, Tags: []string{TagNuts}},
	{Name: "chicken breast", Aliases: []string{"chicken"}, Per100g: per(165, 31, 0, 3.6, 0, 74, 256), PricePer100g: 1.0, Carbon: CarbonMedium, Tags: []string{TagMeat}},
	{Name: "salmon", Per100g: per(208, 20, 0, 13, 0, 59, 363), PricePer100g: 2.5, Carbon: CarbonMedium, Tags: []string{TagFish}},
	{Name: "tuna", Per100g: per(132, 28, 0, 1, 0, 47, 252), PricePer100g: 1.5, Carbon: CarbonMedium, Tags: []string{TagFish}},
	{Name: "shrimp", Aliases: []string{"prawns"}, Per100g: per(99, 24, 0.2, 0.3, 0, 111, 259), PricePer100g: 2.0, Carbon: CarbonMedium, Tags: []string{TagShellfish}},
	{Name: "beef", Aliases: []string{"lean beef", "steak"}, Per100g: per(250, 26, 0, 15, 0, 72, 318), PricePer100g: 1.8, Carbon: CarbonHigh, Tags: []string{TagMeat}},
	{Name: "lamb", Per100g: per(294, 25, 0, 21, 0, 72, 310), PricePer100g: 2.2, Carbon: CarbonHigh, Tags: []string{TagMeat}},
	{Name: "pork", Aliases: []string{"bacon", "ham"}, Per100g: per(242, 27, 0, 14, 0, 62, 423), PricePer100g: 1.2, Carbon: CarbonMedium, Tags: []string{TagMeat, TagPork}},
	{Name: "tofu", Per100g: per(76, 8, 1.9, 4.8, 0.3, 7, 121), PricePer100g: 0.5, Carbon: CarbonLow, Tags: []string{TagSoy}},
	{Name: "lentils", Per100g: per(116, 9, 20, 0.4, 8, 2, 369), PricePer100g: 0.3, Carbon: CarbonLow, Tags: []string{TagHighPotassium}},
	{Name: "chickpeas", Per100g: per(164, 8.9, 27, 2.6, 7.6, 7, 291), PricePer100g: 0.35, Carbon: CarbonLow},
	{Name: "brown rice", Aliases: []string{"rice"}, Per100g: per(112, 2.3, 24, 0.8, 1.8, 5, 43), PricePer100g: 0.2, Carbon: CarbonLow},
	{Name: "quinoa", Per100g: per(120, 4.4, 21, 1.9, 2.8, 7, 172), PricePer100g: 1.0, Carbon: CarbonLow},
	{Name: "whole wheat bread", Aliases: []string{"bread", "toast", "wrap"}, Per100g: per(247, 13, 41, 3.4, 7, 400, 248), PricePer100g: 0.4, Carbon: CarbonLow, Tags: []string{TagGluten}},
	{Name: "pasta", Per100g: per(131, 5, 25, 1.1, 1.8, 6, 44), PricePer100g: 0.25, Carbon: CarbonLow, Tags: []string{TagGluten}},
	{Name: "sweet potato", Per100g: per(86, 1.6, 20, 0.1, 3, 55, 337), PricePer100g: 0.3, Carbon: CarbonLow, Tags: []string{TagHighPotassium}},
	{Name: "potato", Per100g: per(77, 2, 17, 0.1, 2.2, 6, 421), PricePer100g: 0.2, Carbon: CarbonLow, Tags: []string{TagHighPotassium}},
	{Name: "spinach", Per100g: per(23, 2.9, 3.6, 0.4, 2.2, 79, 558), PricePer100g: 0.8, Carbon: CarbonLow, Tags: []string{TagHighPotassium, TagVitaminK}},
	{Name: "broccoli", Per100g: per(34, 2.8, 7, 0.4, 2.6, 33, 316), PricePer100g: 0.5, Carbon: CarbonLow, Tags: []string{TagVitaminK}},
	{Name: "bok choy", Per100g: per(13, 1.5, 2.2, 0.2, 1, 65, 252), PricePer100g: 0.5, Carbon: CarbonLow, Tags: []string{TagVitaminK}},
	{Name: "mixed vegetables", Aliases: []string{"vegetables"}, Per100g: per(65, 2.6, 13, 0.3, 4, 40, 210), PricePer100g: 0.4, Carbon: CarbonLow},
	{Name: "tomato", Aliases: []string{"tomatoes"}, Per100g: per(18, 0.9, 3.9, 0.2, 1.2, 5, 237), PricePer100g: 0.4, Carbon: CarbonLow},
	{Name: "avocado", Per100g: per(160, 2, 8.5, 14.7, 6.7, 7, 485), PricePer100g: 1.5, Carbon: CarbonLow, Tags: []string{TagHighPotassium}},
	{Name: "olive oil", Per100g: per(884, 0, 0, 100, 0, 2, 1), PricePer100g: 1.0, Carbon: CarbonLow},
	{Name: "cheese", Aliases: []string{"feta", "cheddar"}, Per100g: per(402, 25, 1.3, 33, 0, 621, 98), PricePer100g: 1.3, Carbon: CarbonHigh, Tags: []string{TagDairy, TagTyramine}},
	{Name: "paneer", Per100g: per(265, 18, 1.2, 20, 0, 18, 100), PricePer100g: 1.2, Carbon: CarbonHigh, Tags: []string{TagDairy}},
	{Name: "hummus", Per100g: per(166, 7.9, 14, 9.6, 6, 379, 228), PricePer100g: 0.8, Carbon: CarbonLow, Tags: []string{TagSesame}},
	{Name: "pumpkin", Per100g: per(26, 1, 6.5, 0.1, 0.5, 1, 340), PricePer100g: 0.3, Carbon: CarbonLow, Season: []int{9, 10, 11}},
	{Name: "black beans", Aliases: []string{"beans"}, Per100g: per(132, 8.9, 24, 0.5, 8.7, 1, 355), PricePer100g: 0.3, Carbon: CarbonLow, Tags: []string{TagHighPotassium}},
	{Name: "corn tortilla", Aliases: []string{"tortilla"}, Per100g: per(218, 5.7, 45, 2.9, 6.3, 45, 186), PricePer100g: 0.4, Carbon: CarbonLow},
}

var defaultRecipes = []Recipe{
	{Name: "Overnight Oats with Berries", Slots: []string{nutriguide.SlotBreakfast}, Cuisine: "american",
		Ingredients:  []ing{{Name: "oats", Grams: 60}, {Name: "greek yogurt", Grams: 150}, {Name: "berries", Grams: 100}, {Name: "milk", Grams: 100}},
		Instructions: "Stir oats into yogurt and milk, refrigerate overnight, top with berries."},
	{Name: "Veggie Egg Scramble", Slots: []string{nutriguide.SlotBreakfast}, Cuisine: "american",
		Ingredients:  []ing{{Name: "eggs", Grams: 120}, {Name: "spinach", Grams: 60}, {Name: "tomato", Grams: 80}, {Name: "whole wheat bread", Grams: 40}},
		Instructions: "Wilt spinach and tomato in a pan, add beaten eggs and scramble gently. Serve with toast."},
	{Name: "Masala Oats", Slots: []string{nutriguide.SlotBreakfast}, Cuisine: "indian",
		Ingredients:  []ing{{Name: "oats", Grams: 60}, {Name: "mixed vegetables", Grams: 100}, {Name: "milk", Grams: 150}},
		Instructions: "Toast turmeric and cumin, add vegetables and oats, simmer in milk until creamy."},
	{Name: "Tofu Scramble", Slots: []string{nutriguide.SlotBreakfast}, Cuisine: "asian",
		Ingredients:  []ing{{Name: "tofu", Grams: 150}, {Name: "bok choy", Grams: 60}, {Name: "brown rice", Grams: 100}},
		Instructions: "Crumble tofu into a hot pan with ginger, add bok choy and serve over rice."},
	{Name: "Peanut Butter Banana Toast", Slots: []string{nutriguide.SlotBreakfast, nutriguide.SlotSnack}, Cuisine: "american",
		Ingredients:  []ing{{Name: "whole wheat bread", Grams: 60}, {Name: "peanut butter", Grams: 30}, {Name: "banana", Grams: 100}},
		Instructions: "Toast the bread, spread peanut butter and top with sliced banana."},

	{Name: "Grilled Chicken Quinoa Bowl", Slots: []string{nutriguide.SlotLunch, nutriguide.SlotDinner}, Cuisine: "mediterranean",
		Ingredients:  []ing{{Name: "chicken breast", Grams: 150}, {Name: "quinoa", Grams: 150}, {Name: "broccoli", Grams: 100}, {Name: "olive oil", Grams: 10}},
		Instructions: "Grill seasoned chicken, serve sliced over quinoa with steamed broccoli and a drizzle of olive oil."},
	{Name: "Lentil Vegetable Curry with Brown Rice", Slots: []string{nutriguide.SlotLunch, nutriguide.SlotDinner}, Cuisine: "indian",
		Ingredients:  []ing{{Name: "lentils", Grams: 150}, {Name: "mixed vegetables", Grams: 100}, {Name: "brown rice", Grams: 150}, {Name: "olive oil", Grams: 10}},
		Instructions: "Simmer lentils and vegetables with turmeric, cumin and garlic; serve over brown rice."},
	{Name: "Chickpea Mediterranean Salad", Slots: []string{nutriguide.SlotLunch}, Cuisine: "mediterranean",
		Ingredients:  []ing{{Name: "chickpeas", Grams: 150}, {Name: "tomato", Grams: 100}, {Name: "cheese", Grams: 30}, {Name: "olive oil", Grams: 10}},
		Instructions: "Toss chickpeas, tomato and crumbled feta with olive oil and lemon."},
	{Name: "Tuna Whole Wheat Wrap", Slots: []string{nutriguide.SlotLunch}, Cuisine: "american",
		Ingredients:  []ing{{Name: "tuna", Grams: 100}, {Name: "whole wheat bread", Grams: 80}, {Name: "tomato", Grams: 60}, {Name: "spinach", Grams: 30}},
		Instructions: "Fill the wrap with tuna, tomato and spinach; roll tightly."},
	{Name: "Black Bean Burrito Bowl", Slots: []string{nutriguide.SlotLunch, nutriguide.SlotDinner}, Cuisine: "mexican",
		Ingredients:  []ing{{Name: "black beans", Grams: 150}, {Name: "brown rice", Grams: 150}, {Name: "tomato", Grams: 80}, {Name: "corn tortilla", Grams: 30}},
		Instructions: "Layer rice, seasoned beans and fresh salsa; crumble toasted tortilla on top."},

	{Name: "Baked Salmon with Sweet Potato", Slots: []string{nutriguide.SlotDinner}, Cuisine: "american",
		Ingredients:  []ing{{Name: "salmon", Grams: 150}, {Name: "sweet potato", Grams: 200}, {Name: "broccoli", Grams: 100}},
		Instructions: "Bake salmon and sweet potato wedges at 200C for 20 minutes; steam broccoli."},
	{Name: "Chicken Stir-Fry with Bok Choy", Slots: []string{nutriguide.SlotDinner}, Cuisine: "asian",
		Ingredients:  []ing{{Name: "chicken breast", Grams: 150}, {Name: "bok choy", Grams: 150}, {Name: "brown rice", Grams: 150}, {Name: "olive oil", Grams: 10}},
		Instructions: "Stir-fry chicken with ginger and garlic, add bok choy, serve over rice."},
	{Name: "Paneer Tikka with Vegetables", Slots: []string{nutriguide.SlotDinner}, Cuisine: "indian",
		Ingredients:  []ing{{Name: "paneer", Grams: 120}, {Name: "mixed vegetables", Grams: 150}, {Name: "brown rice", Grams: 100}},
		Instructions: "Marinate paneer in spiced yogurt, grill with vegetables and serve with rice."},
	{Name: "Tofu Vegetable Stir-Fry", Slots: []string{nutriguide.SlotDinner, nutriguide.SlotLunch}, Cuisine: "asian",
		Ingredients:  []ing{{Name: "tofu", Grams: 200}, {Name: "mixed vegetables", Grams: 150}, {Name: "brown rice", Grams: 150}, {Name: "olive oil", Grams: 10}},
		Instructions: "Press and cube tofu, stir-fry until golden, add vegetables and serve over rice."},
	{Name: "Lentil Pasta Primavera", Slots: []string{nutriguide.SlotDinner}, Cuisine: "mediterranean",
		Ingredients:  []ing{{Name: "pasta", Grams: 150}, {Name: "lentils", Grams: 100}, {Name: "tomato", Grams: 100}, {Name: "olive oil", Grams: 10}},
		Instructions: "Cook pasta, fold in lentils and a quick tomato sauce finished with olive oil."},

	{Name: "Greek Yogurt with Berries", Slots: []string{nutriguide.SlotSnack}, Cuisine: "mediterranean",
		Ingredients:  []ing{{Name: "greek yogurt", Grams: 170}, {Name: "berries", Grams: 80}},
		Instructions: "Top yogurt with berries."},
	{Name: "Hummus and Vegetables", Slots: []string{nutriguide.SlotSnack}, Cuisine: "middle eastern",
		Ingredients:  []ing{{Name: "hummus", Grams: 60}, {Name: "mixed vegetables", Grams: 100}},
		Instructions: "Slice vegetables into sticks and serve with hummus."},
	{Name: "Apple with Peanut Butter", Slots: []string{nutriguide.SlotSnack}, Cuisine: "american",
		Ingredients:  []ing{{Name: "apple", Grams: 150}, {Name: "peanut butter", Grams: 20}},
		Instructions: "Slice the apple and dip in peanut butter."},
	{Name: "Handful of Almonds", Slots: []string{nutriguide.SlotSnack}, Cuisine: "american",
		Ingredients:  []ing{{Name: "almonds", Grams: 30}},
		Instructions: "Portion almonds into a small container."},
	{Name: "Fresh Orange and Apple", Slots: []string{nutriguide.SlotSnack}, Cuisine: "american",
		Ingredients:  []ing{{Name: "orange", Grams: 130}, {Name: "apple", Grams: 100}},
		Instructions: "Peel and segment the orange, slice the apple."},
}

var defaultAllergens = map[string][]string{
	"peanut":    {"peanut"},
	"nuts":      {"almond", "walnut", "cashew", "pecan", "hazelnut", "pistachio", "macadamia"},
	"dairy":     {"milk", "cheese", "yogurt", "butter", "cream", "paneer", "whey", "feta"},
	"egg":       {"egg"},
	"shellfish": {"shrimp", "prawn", "crab", "lobster"},
	"fish":      {"salmon", "tuna", "cod", "fish"},
	"wheat":     {"wheat", "bread", "pasta", "flour", "couscous", "wrap"},
	"soy":       {"soy", "tofu", "edamame", "tempeh"},
	"sesame":    {"sesame", "tahini", "hummus"},
}

var defaultRestrictions = map[string]restriction{
	"vegetarian":  {Tags: []string{TagMeat, TagFish, TagShellfish}},
	"vegan":       {Tags: []string{TagMeat, TagFish, TagShellfish, TagDairy, TagEgg}, Keywords: []string{"honey"}},
	"pescatarian": {Tags: []string{TagMeat}},
	"pork":        {Tags: []string{TagPork}, Keywords: []string{"pork", "bacon", "ham"}},
	"beef":        {Keywords: []string{"beef", "steak"}},
	"no red meat": {Keywords: []string{"beef", "steak", "lamb", "pork"}},
	"alcohol":     {Keywords: []string{"wine", "beer", "rum", "vodka"}},
	"halal":       {Tags: []string{TagPork}, Keywords: []string{"pork", "bacon", "ham", "wine", "beer"}},
	"gluten free": {Tags: []string{TagGluten}},
	"shellfish":   {Tags: []string{TagShellfish}},
}
