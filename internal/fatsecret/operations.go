package fatsecret

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/alnah/go-fatsecret/internal/apierr"
	"github.com/alnah/go-fatsecret/internal/model"
)

// FatSecret API method names.
const (
	MethodFoodsSearch       = "foods.search"
	MethodFoodGet           = "food.get.v4"
	MethodFoodIDFromBarcode = "food.find_id_for_barcode"
	MethodRecipesSearch     = "recipes.search.v3"
	MethodRecipeGet         = "recipe.get.v2"
)

// SearchFoods searches foods by keyword. page is zero-based; maxResults is
// between 1 and MaxResultsLimit.
func (c *Client) SearchFoods(ctx context.Context, query string, page, maxResults int, opts ...SearchOption) (*model.FoodSearchResult, error) {
	params, err := searchParams(query, page, maxResults, opts)
	if err != nil {
		return nil, err
	}
	return call(ctx, c, MethodFoodsSearch, params, model.ParseFoodSearch)
}

// GetFood returns a food with all its servings.
func (c *Client) GetFood(ctx context.Context, foodID string) (*model.Food, error) {
	if err := validateID("food id", foodID); err != nil {
		return nil, err
	}
	return call(ctx, c, MethodFoodGet, url.Values{"food_id": {foodID}}, model.ParseFood)
}

// LookupBarcode resolves a barcode to a food id, then fetches that food.
// It fails with a barcode-not-found error when nothing is registered for
// the barcode.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (*model.Food, error) {
	gtin, err := NormalizeBarcode(barcode)
	if err != nil {
		return nil, err
	}

	id, err := call(ctx, c, MethodFoodIDFromBarcode, url.Values{"barcode": {gtin}}, model.ParseFoodID)
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) && apiErr.Kind == apierr.KindFoodNotFound {
			return nil, &apierr.Error{
				Kind:    apierr.KindBarcodeNotFound,
				Code:    apiErr.Code,
				Status:  apiErr.Status,
				Message: fmt.Sprintf("no food for barcode %s", gtin),
			}
		}
		return nil, err
	}
	if id == "" {
		return nil, &apierr.Error{
			Kind:    apierr.KindBarcodeNotFound,
			Message: fmt.Sprintf("no food for barcode %s", gtin),
		}
	}
	return c.GetFood(ctx, string(id))
}

// SearchRecipes searches recipes by keyword. page is zero-based; maxResults
// is between 1 and MaxResultsLimit.
func (c *Client) SearchRecipes(ctx context.Context, query string, page, maxResults int, opts ...SearchOption) (*model.RecipeSearchResult, error) {
	params, err := searchParams(query, page, maxResults, opts)
	if err != nil {
		return nil, err
	}
	return call(ctx, c, MethodRecipesSearch, params, model.ParseRecipeSearch)
}

// GetRecipe returns a recipe with ingredients, directions and nutrition.
func (c *Client) GetRecipe(ctx context.Context, recipeID string) (*model.Recipe, error) {
	if err := validateID("recipe id", recipeID); err != nil {
		return nil, err
	}
	return call(ctx, c, MethodRecipeGet, url.Values{"recipe_id": {recipeID}}, model.ParseRecipe)
}
