package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alnah/go-fatsecret/internal/format"
	"github.com/alnah/go-fatsecret/internal/lang"
	"github.com/alnah/go-fatsecret/internal/model"
)

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// pageSummary describes a result page. page is zero-based on the wire and
// one-based for humans.
func pageSummary(noun string, shown, page, total int) string {
	if total == 0 && shown == 0 {
		return fmt.Sprintf("No %s found.", noun)
	}
	return fmt.Sprintf("Found %d %s (page %d, showing %d)", total, noun, page+1, shown)
}

// localeSuffix names the region and language a search ran with, if any.
func localeSuffix(region, language string) string {
	var parts []string
	if region != "" {
		parts = append(parts, lang.DisplayName(lang.NormalizeRegion(region)))
	}
	if language != "" {
		parts = append(parts, lang.DisplayName(lang.Normalize(language)))
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func renderFoodSearch(w io.Writer, res *model.FoodSearchResult, locale string) {
	fmt.Fprintln(w, pageSummary("foods", len(res.Foods), res.PageNumber, res.TotalResults)+locale)
	if len(res.Foods) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range res.Foods {
		name := f.Name
		if f.Brand != "" {
			name = fmt.Sprintf("%s (%s)", f.Name, f.Brand)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.ID, name, f.Description)
	}
	_ = tw.Flush()
}

// nutrientRow is one line of a nutrition table.
type nutrientRow struct {
	label string
	value model.Float
	unit  string
}

func servingRows(s model.Serving) []nutrientRow {
	return []nutrientRow{
		{"Calories", s.Calories, "kcal"},
		{"Carbohydrate", s.Carbohydrate, "g"},
		{"  Sugar", s.Sugar, "g"},
		{"  Fiber", s.Fiber, "g"},
		{"Protein", s.Protein, "g"},
		{"Fat", s.Fat, "g"},
		{"  Saturated", s.SaturatedFat, "g"},
		{"  Trans", s.TransFat, "g"},
		{"Cholesterol", s.Cholesterol, "mg"},
		{"Sodium", s.Sodium, "mg"},
		{"Potassium", s.Potassium, "mg"},
	}
}

func recipeServingRows(s model.RecipeServing) []nutrientRow {
	return []nutrientRow{
		{"Calories", s.Calories, "kcal"},
		{"Carbohydrate", s.Carbohydrate, "g"},
		{"  Sugar", s.Sugar, "g"},
		{"  Fiber", s.Fiber, "g"},
		{"Protein", s.Protein, "g"},
		{"Fat", s.Fat, "g"},
		{"  Saturated", s.SaturatedFat, "g"},
		{"Cholesterol", s.Cholesterol, "mg"},
		{"Sodium", s.Sodium, "mg"},
	}
}

// writeNutrients prints rows, skipping values the API did not report.
func writeNutrients(w io.Writer, rows []nutrientRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		if !r.value.Valid {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\n", r.label, format.Quantity(r.value, r.unit))
	}
	_ = tw.Flush()
}

func renderFood(w io.Writer, f *model.Food) {
	fmt.Fprintf(w, "%s [%s]\n", f.Name, f.ID)
	if f.Brand != "" {
		fmt.Fprintf(w, "Brand: %s\n", f.Brand)
	}
	if f.Type != "" {
		fmt.Fprintf(w, "Type: %s\n", f.Type)
	}
	if f.URL != "" {
		fmt.Fprintf(w, "URL: %s\n", f.URL)
	}

	def, ok := f.DefaultServing()
	if !ok {
		fmt.Fprintln(w, "\nNo serving information.")
		return
	}
	fmt.Fprintf(w, "\nPer %s", def.Description)
	if def.MetricServingAmount.Valid {
		fmt.Fprintf(w, " (%s)", format.Quantity(def.MetricServingAmount, def.MetricServingUnit))
	}
	fmt.Fprintln(w, ":")
	writeNutrients(w, servingRows(def))

	if len(f.Servings) > 1 {
		fmt.Fprintf(w, "\nOther servings:\n")
		for _, s := range f.Servings {
			if s.ID == def.ID {
				continue
			}
			fmt.Fprintf(w, "  %s: %s\n", s.Description, format.Quantity(s.Calories, "kcal"))
		}
	}
}

func renderRecipeSearch(w io.Writer, res *model.RecipeSearchResult, locale string) {
	fmt.Fprintln(w, pageSummary("recipes", len(res.Recipes), res.PageNumber, res.TotalResults)+locale)
	if len(res.Recipes) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range res.Recipes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name, format.Quantity(r.Nutrition.Calories, "kcal"))
	}
	_ = tw.Flush()
}

func renderRecipe(w io.Writer, r *model.Recipe) {
	fmt.Fprintf(w, "%s [%s]\n", r.Name, r.ID)
	if r.Description != "" {
		fmt.Fprintln(w, r.Description)
	}
	fmt.Fprintf(w, "\nPrep: %s  Cook: %s  Servings: %s  Rating: %s\n",
		format.Minutes(r.PreparationTime),
		format.Minutes(r.CookingTime),
		intOrMissing(r.NumberOfServings),
		format.Rating(r.Rating),
	)
	if len(r.Types) > 0 {
		fmt.Fprintf(w, "Types: %s\n", strings.Join(r.Types, ", "))
	}
	if r.URL != "" {
		fmt.Fprintf(w, "URL: %s\n", r.URL)
	}

	if len(r.Ingredients) > 0 {
		fmt.Fprintln(w, "\nIngredients:")
		for _, in := range r.Ingredients {
			desc := in.Description
			if desc == "" {
				desc = in.FoodName
			}
			fmt.Fprintf(w, "  - %s\n", desc)
		}
	}

	if len(r.Directions) > 0 {
		fmt.Fprintln(w, "\nDirections:")
		for i, d := range r.Directions {
			n := int64(i + 1)
			if d.Number.Valid {
				n = d.Number.Value
			}
			fmt.Fprintf(w, "  %d. %s\n", n, d.Description)
		}
	}

	if len(r.Servings) > 0 {
		fmt.Fprintln(w, "\nPer serving:")
		writeNutrients(w, recipeServingRows(r.Servings[0]))
	}
}

func intOrMissing(n model.Int) string {
	if !n.Valid {
		return format.Missing
	}
	return fmt.Sprintf("%d", n.Value)
}
