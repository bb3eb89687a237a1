package model

// RecipeNutrition is the per-serving summary attached to search results.
type RecipeNutrition struct {
	Calories     Float `json:"calories"`
	Carbohydrate Float `json:"carbohydrate"`
	Fat          Float `json:"fat"`
	Protein      Float `json:"protein"`
}

// RecipeSummary is one row of a recipe search.
type RecipeSummary struct {
	ID               ID              `json:"recipe_id"`
	Name             string          `json:"recipe_name"`
	Description      string          `json:"recipe_description"`
	URL              string          `json:"recipe_url,omitempty"`
	Image            string          `json:"recipe_image,omitempty"`
	PreparationTime  Int             `json:"preparation_time_min"`
	CookingTime      Int             `json:"cooking_time_min"`
	NumberOfServings Int             `json:"number_of_servings"`
	Rating           Float           `json:"rating"`
	Nutrition        RecipeNutrition `json:"recipe_nutrition"`
	Ingredients      []string        `json:"ingredients,omitempty"`
	Types            []string        `json:"recipe_types,omitempty"`
}

// RecipeSearchResult is a page of recipe search results.
type RecipeSearchResult struct {
	Recipes      []RecipeSummary `json:"recipes"`
	PageNumber   int             `json:"page_number"`
	MaxResults   int             `json:"max_results"`
	TotalResults int             `json:"total_results"`
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	FoodID                 ID     `json:"food_id,omitempty"`
	FoodName               string `json:"food_name"`
	Description            string `json:"ingredient_description"`
	URL                    string `json:"ingredient_url,omitempty"`
	ServingID              ID     `json:"serving_id,omitempty"`
	NumberOfUnits          Float  `json:"number_of_units"`
	MeasurementDescription string `json:"measurement_description,omitempty"`
}

// Direction is one numbered preparation step.
type Direction struct {
	Number      Int    `json:"direction_number"`
	Description string `json:"direction_description"`
}

// RecipeCategory classifies a recipe.
type RecipeCategory struct {
	Name string `json:"recipe_category_name"`
	URL  string `json:"recipe_category_url,omitempty"`
}

// RecipeServing holds nutrients for one serving of a recipe.
type RecipeServing struct {
	Size               string `json:"serving_size,omitempty"`
	Calories           Float  `json:"calories"`
	Carbohydrate       Float  `json:"carbohydrate"`
	Protein            Float  `json:"protein"`
	Fat                Float  `json:"fat"`
	SaturatedFat       Float  `json:"saturated_fat"`
	PolyunsaturatedFat Float  `json:"polyunsaturated_fat"`
	MonounsaturatedFat Float  `json:"monounsaturated_fat"`
	TransFat           Float  `json:"trans_fat"`
	Cholesterol        Float  `json:"cholesterol"`
	Sodium             Float  `json:"sodium"`
	Potassium          Float  `json:"potassium"`
	Fiber              Float  `json:"fiber"`
	Sugar              Float  `json:"sugar"`
	VitaminA           Float  `json:"vitamin_a"`
	VitaminC           Float  `json:"vitamin_c"`
	Calcium            Float  `json:"calcium"`
	Iron               Float  `json:"iron"`
}

// Recipe is the full record returned by recipe.get.v2.
type Recipe struct {
	ID               ID               `json:"recipe_id"`
	Name             string           `json:"recipe_name"`
	Description      string           `json:"recipe_description"`
	URL              string           `json:"recipe_url,omitempty"`
	Images           []string         `json:"recipe_images,omitempty"`
	PreparationTime  Int              `json:"preparation_time_min"`
	CookingTime      Int              `json:"cooking_time_min"`
	NumberOfServings Int              `json:"number_of_servings"`
	Rating           Float            `json:"rating"`
	Types            []string         `json:"recipe_types,omitempty"`
	Categories       []RecipeCategory `json:"recipe_categories,omitempty"`
	Ingredients      []Ingredient     `json:"ingredients"`
	Directions       []Direction      `json:"directions"`
	Servings         []RecipeServing  `json:"serving_sizes"`
}

// Wire shapes.

type recipesPage struct {
	Recipe       List[recipeSummaryWire] `json:"recipe"`
	PageNumber   Int                     `json:"page_number"`
	MaxResults   Int                     `json:"max_results"`
	TotalResults Int                     `json:"total_results"`
}

type recipeSummaryWire struct {
	ID               ID              `json:"recipe_id"`
	Name             string          `json:"recipe_name"`
	Description      string          `json:"recipe_description"`
	URL              string          `json:"recipe_url"`
	Image            string          `json:"recipe_image"`
	PreparationTime  Int             `json:"preparation_time_min"`
	CookingTime      Int             `json:"cooking_time_min"`
	NumberOfServings Int             `json:"number_of_servings"`
	Rating           Float           `json:"rating"`
	Nutrition        RecipeNutrition `json:"recipe_nutrition"`
	Ingredients      *struct {
		Ingredient List[string] `json:"ingredient"`
	} `json:"recipe_ingredients"`
	Types *struct {
		Type List[string] `json:"recipe_type"`
	} `json:"recipe_types"`
}

type recipeWire struct {
	ID               ID     `json:"recipe_id"`
	Name             string `json:"recipe_name"`
	Description      string `json:"recipe_description"`
	URL              string `json:"recipe_url"`
	PreparationTime  Int    `json:"preparation_time_min"`
	CookingTime      Int    `json:"cooking_time_min"`
	NumberOfServings Int    `json:"number_of_servings"`
	Rating           Float  `json:"rating"`
	Images           *struct {
		Image List[string] `json:"recipe_image"`
	} `json:"recipe_images"`
	Types *struct {
		Type List[string] `json:"recipe_type"`
	} `json:"recipe_types"`
	Categories *struct {
		Category List[RecipeCategory] `json:"recipe_category"`
	} `json:"recipe_categories"`
	Ingredients *struct {
		Ingredient List[Ingredient] `json:"ingredient"`
	} `json:"ingredients"`
	Directions *struct {
		Direction List[Direction] `json:"direction"`
	} `json:"directions"`
	ServingSizes *struct {
		Serving List[RecipeServing] `json:"serving"`
	} `json:"serving_sizes"`
}
