package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-fatsecret/internal/model"
)

// RecipesCmd creates the "recipes" command group.
// The env parameter provides injectable dependencies for testing.
func RecipesCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Search the recipe database",
	}
	cmd.AddCommand(recipesSearchCmd(env))
	return cmd
}

func recipesSearchCmd(env *Env) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search recipes by keyword",
		Example: `  fatsecret recipes search "chocolate chip cookies"
  fatsecret recipes search soup --max 10 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipesSearch(cmd.Context(), env, args[0], flags)
		},
	}
	flags.register(cmd, 20)
	return cmd
}

// runRecipesSearch handles "recipes search".
func runRecipesSearch(ctx context.Context, env *Env, query string, flags searchFlags) error {
	s, err := openSession(env)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	opts := s.searchOptions(flags.region, flags.language)
	res, err := withRetry(ctx, env, func() (*model.RecipeSearchResult, error) {
		return s.client.SearchRecipes(ctx, query, flags.page, flags.max, opts...)
	})
	if err != nil {
		return err
	}

	if env.JSON {
		return writeJSON(env.Stdout, res)
	}
	renderRecipeSearch(env.Stdout, res, localeSuffix(firstNonEmpty(flags.region, s.cfg.Region), firstNonEmpty(flags.language, s.cfg.Language)))
	return nil
}

// RecipeCmd creates the "recipe" command group.
func RecipeCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Show recipe details",
	}
	cmd.AddCommand(recipeGetCmd(env))
	return cmd
}

func recipeGetCmd(env *Env) *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "get <recipe-id>...",
		Short: "Show ingredients, directions and nutrition for one or more recipes",
		Example: `  fatsecret recipe get 12345
  fatsecret recipe get 12345 67890 --parallel 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipeGet(cmd.Context(), env, args, parallel)
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, fmt.Sprintf("Max concurrent requests (1-%d)", MaxParallel))
	return cmd
}

// runRecipeGet handles "recipe get".
func runRecipeGet(ctx context.Context, env *Env, ids []string, parallel int) error {
	s, err := openSession(env)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	start := env.Now()
	recipes, err := fetchAll(ctx, env, ids, parallel, s.client.GetRecipe)
	if err != nil {
		return err
	}

	reportBatch(env, len(recipes), "recipes", start)

	if env.JSON {
		if len(recipes) == 1 {
			return writeJSON(env.Stdout, recipes[0])
		}
		return writeJSON(env.Stdout, recipes)
	}
	for i, r := range recipes {
		if i > 0 {
			fmt.Fprintln(env.Stdout)
		}
		renderRecipe(env.Stdout, r)
	}
	return nil
}
