package model

// FoodSummary is one row of a food search.
type FoodSummary struct {
	ID          ID     `json:"food_id"`
	Name        string `json:"food_name"`
	Type        string `json:"food_type"`
	Brand       string `json:"brand_name,omitempty"`
	URL         string `json:"food_url,omitempty"`
	Description string `json:"food_description"`
}

// FoodSearchResult is a page of food search results.
type FoodSearchResult struct {
	Foods        []FoodSummary `json:"foods"`
	PageNumber   int           `json:"page_number"`
	MaxResults   int           `json:"max_results"`
	TotalResults int           `json:"total_results"`
}

// Serving is one serving of a food with its nutrients. Nutrient amounts are
// grams unless noted; cholesterol, sodium and potassium are milligrams.
type Serving struct {
	ID                     ID     `json:"serving_id"`
	Description            string `json:"serving_description"`
	URL                    string `json:"serving_url,omitempty"`
	MetricServingAmount    Float  `json:"metric_serving_amount"`
	MetricServingUnit      string `json:"metric_serving_unit,omitempty"`
	NumberOfUnits          Float  `json:"number_of_units"`
	MeasurementDescription string `json:"measurement_description,omitempty"`
	IsDefault              Int    `json:"is_default"`

	Calories           Float `json:"calories"`
	Carbohydrate       Float `json:"carbohydrate"`
	Protein            Float `json:"protein"`
	Fat                Float `json:"fat"`
	SaturatedFat       Float `json:"saturated_fat"`
	PolyunsaturatedFat Float `json:"polyunsaturated_fat"`
	MonounsaturatedFat Float `json:"monounsaturated_fat"`
	TransFat           Float `json:"trans_fat"`
	Cholesterol        Float `json:"cholesterol"`
	Sodium             Float `json:"sodium"`
	Potassium          Float `json:"potassium"`
	Fiber              Float `json:"fiber"`
	Sugar              Float `json:"sugar"`
	AddedSugars        Float `json:"added_sugars"`
	VitaminA           Float `json:"vitamin_a"`
	VitaminC           Float `json:"vitamin_c"`
	VitaminD           Float `json:"vitamin_d"`
	Calcium            Float `json:"calcium"`
	Iron               Float `json:"iron"`
}

// Food is the full record returned by food.get.v4.
type Food struct {
	ID       ID        `json:"food_id"`
	Name     string    `json:"food_name"`
	Type     string    `json:"food_type"`
	Brand    string    `json:"brand_name,omitempty"`
	URL      string    `json:"food_url,omitempty"`
	Servings []Serving `json:"servings"`
}

// DefaultServing returns the serving flagged as default, else the first.
func (f *Food) DefaultServing() (Serving, bool) {
	if f == nil || len(f.Servings) == 0 {
		return Serving{}, false
	}
	for _, s := range f.Servings {
		if s.IsDefault.Valid && s.IsDefault.Value == 1 {
			return s, true
		}
	}
	return f.Servings[0], true
}

// Wire shapes.

type foodsPage struct {
	Food         List[FoodSummary] `json:"food"`
	PageNumber   Int               `json:"page_number"`
	MaxResults   Int               `json:"max_results"`
	TotalResults Int               `json:"total_results"`
}

type foodWire struct {
	ID       ID     `json:"food_id"`
	Name     string `json:"food_name"`
	Type     string `json:"food_type"`
	Brand    string `json:"brand_name"`
	URL      string `json:"food_url"`
	Servings *struct {
		Serving List[Serving] `json:"serving"`
	} `json:"servings"`
}

type foodIDWire struct {
	Value ID `json:"value"`
}
