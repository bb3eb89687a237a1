package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-fatsecret/internal/apierr"
)

// ParseFoodSearch decodes a foods.search response. A page with no results
// carries no food list and yields an empty Foods slice.
func ParseFoodSearch(body []byte) (*FoodSearchResult, error) {
	const payload = "food search"

	raw, err := member(body, "foods", payload)
	if err != nil {
		return nil, err
	}
	var page foodsPage
	if err := decode(raw, &page); err != nil {
		return nil, apierr.Parse(payload, err)
	}

	foods := make([]FoodSummary, 0, len(page.Food))
	for i, f := range page.Food {
		if f.ID == "" || f.Name == "" {
			return nil, apierr.Parse(payload, fmt.Errorf("food %d: missing food_id or food_name", i))
		}
		foods = append(foods, f)
	}
	return &FoodSearchResult{
		Foods:        foods,
		PageNumber:   int(page.PageNumber.Value),
		MaxResults:   int(page.MaxResults.Value),
		TotalResults: int(page.TotalResults.Value),
	}, nil
}

// ParseFood decodes a food.get.v4 response.
func ParseFood(body []byte) (*Food, error) {
	const payload = "food"

	raw, err := member(body, "food", payload)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, apierr.Parse(payload, errors.New("food object is null"))
	}
	var w foodWire
	if err := decode(raw, &w); err != nil {
		return nil, apierr.Parse(payload, err)
	}
	if w.ID == "" || w.Name == "" {
		return nil, apierr.Parse(payload, errors.New("missing food_id or food_name"))
	}

	food := &Food{
		ID:       w.ID,
		Name:     w.Name,
		Type:     w.Type,
		Brand:    w.Brand,
		URL:      w.URL,
		Servings: []Serving{},
	}
	if w.Servings != nil {
		food.Servings = append(food.Servings, w.Servings.Serving...)
	}
	return food, nil
}

// ParseFoodID decodes a food.find_id_for_barcode response. It returns ""
// when the API reports no match with a zero or missing id.
func ParseFoodID(body []byte) (ID, error) {
	const payload = "food id"

	raw, err := member(body, "food_id", payload)
	if err != nil {
		return "", err
	}
	var w foodIDWire
	if err := decode(raw, &w); err != nil {
		return "", apierr.Parse(payload, err)
	}
	if strings.Trim(string(w.Value), "0") == "" {
		return "", nil
	}
	return w.Value, nil
}

// ParseRecipeSearch decodes a recipes.search.v3 response.
func ParseRecipeSearch(body []byte) (*RecipeSearchResult, error) {
	const payload = "recipe search"

	raw, err := member(body, "recipes", payload)
	if err != nil {
		return nil, err
	}
	var page recipesPage
	if err := decode(raw, &page); err != nil {
		return nil, apierr.Parse(payload, err)
	}

	recipes := make([]RecipeSummary, 0, len(page.Recipe))
	for i, w := range page.Recipe {
		if w.ID == "" || w.Name == "" {
			return nil, apierr.Parse(payload, fmt.Errorf("recipe %d: missing recipe_id or recipe_name", i))
		}
		r := RecipeSummary{
			ID:               w.ID,
			Name:             w.Name,
			Description:      w.Description,
			URL:              w.URL,
			Image:            w.Image,
			PreparationTime:  w.PreparationTime,
			CookingTime:      w.CookingTime,
			NumberOfServings: w.NumberOfServings,
			Rating:           w.Rating,
			Nutrition:        w.Nutrition,
		}
		if w.Ingredients != nil {
			r.Ingredients = w.Ingredients.Ingredient
		}
		if w.Types != nil {
			r.Types = w.Types.Type
		}
		recipes = append(recipes, r)
	}
	return &RecipeSearchResult{
		Recipes:      recipes,
		PageNumber:   int(page.PageNumber.Value),
		MaxResults:   int(page.MaxResults.Value),
		TotalResults: int(page.TotalResults.Value),
	}, nil
}

// ParseRecipe decodes a recipe.get.v2 response.
func ParseRecipe(body []byte) (*Recipe, error) {
	const payload = "recipe"

	raw, err := member(body, "recipe", payload)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, apierr.Parse(payload, errors.New("recipe object is null"))
	}
	var w recipeWire
	if err := decode(raw, &w); err != nil {
		return nil, apierr.Parse(payload, err)
	}
	if w.ID == "" || w.Name == "" {
		return nil, apierr.Parse(payload, errors.New("missing recipe_id or recipe_name"))
	}

	r := &Recipe{
		ID:               w.ID,
		Name:             w.Name,
		Description:      w.Description,
		URL:              w.URL,
		PreparationTime:  w.PreparationTime,
		CookingTime:      w.CookingTime,
		NumberOfServings: w.NumberOfServings,
		Rating:           w.Rating,
		Ingredients:      []Ingredient{},
		Directions:       []Direction{},
		Servings:         []RecipeServing{},
	}
	if w.Images != nil {
		r.Images = w.Images.Image
	}
	if w.Types != nil {
		r.Types = w.Types.Type
	}
	if w.Categories != nil {
		r.Categories = w.Categories.Category
	}
	if w.Ingredients != nil {
		r.Ingredients = append(r.Ingredients, w.Ingredients.Ingredient...)
	}
	if w.Directions != nil {
		r.Directions = append(r.Directions, w.Directions.Direction...)
	}
	if w.ServingSizes != nil {
		r.Servings = append(r.Servings, w.ServingSizes.Serving...)
	}
	return r, nil
}

// member returns the raw value of the top-level key. A missing key is a
// parse error; an explicit null yields nil.
func member(body []byte, key, payload string) (json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, apierr.Parse(payload, err)
	}
	raw, ok := top[key]
	if !ok {
		return nil, apierr.Parse(payload, fmt.Errorf("missing %q object", key))
	}
	if bytes.Equal(bytes.TrimSpace(raw), null) {
		return nil, nil
	}
	return raw, nil
}

// decode unmarshals raw into v, leaving v untouched when raw is nil.
func decode(raw json.RawMessage, v any) error {
	if raw == nil {
		return nil
	}
	return json.Unmarshal(raw, v)
}
