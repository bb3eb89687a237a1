package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-fatsecret/internal/fatsecret"
	"github.com/alnah/go-fatsecret/internal/format"
	"github.com/alnah/go-fatsecret/internal/model"
)

// searchFlags are shared by "foods search" and "recipes search".
type searchFlags struct {
	page     int
	max      int
	region   string
	language string
}

func (f *searchFlags) register(cmd *cobra.Command, defaultMax int) {
	cmd.Flags().IntVar(&f.page, "page", 0, "Result page, zero-based")
	cmd.Flags().IntVarP(&f.max, "max", "n", defaultMax, fmt.Sprintf("Results per page (1-%d)", fatsecret.MaxResultsLimit))
	cmd.Flags().StringVarP(&f.region, "region", "r", "", "Region for localized results (ISO 3166-1, e.g. FR)")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "Result language (ISO 639-1, e.g. fr; requires a region)")
}

// FoodsCmd creates the "foods" command group.
// The env parameter provides injectable dependencies for testing.
func FoodsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foods",
		Short: "Search the food database",
	}
	cmd.AddCommand(foodsSearchCmd(env))
	return cmd
}

func foodsSearchCmd(env *Env) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search foods by keyword",
		Example: `  fatsecret foods search banana
  fatsecret foods search "greek yogurt" --max 5 --page 1
  fatsecret foods search fromage --region FR --language fr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFoodsSearch(cmd.Context(), env, args[0], flags)
		},
	}
	flags.register(cmd, 20)
	return cmd
}

// runFoodsSearch handles "foods search".
func runFoodsSearch(ctx context.Context, env *Env, query string, flags searchFlags) error {
	s, err := openSession(env)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	opts := s.searchOptions(flags.region, flags.language)
	res, err := withRetry(ctx, env, func() (*model.FoodSearchResult, error) {
		return s.client.SearchFoods(ctx, query, flags.page, flags.max, opts...)
	})
	if err != nil {
		return err
	}

	if env.JSON {
		return writeJSON(env.Stdout, res)
	}
	renderFoodSearch(env.Stdout, res, localeSuffix(firstNonEmpty(flags.region, s.cfg.Region), firstNonEmpty(flags.language, s.cfg.Language)))
	return nil
}

// FoodCmd creates the "food" command group.
func FoodCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "food",
		Short: "Show food details",
	}
	cmd.AddCommand(foodGetCmd(env))
	return cmd
}

func foodGetCmd(env *Env) *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "get <food-id>...",
		Short: "Show nutrition facts for one or more foods",
		Long: `Show nutrition facts for one or more foods.

Several ids are fetched concurrently (--parallel) and printed in the order given.
The first failure stops the remaining lookups.`,
		Example: `  fatsecret food get 33691
  fatsecret food get 33691 424791 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFoodGet(cmd.Context(), env, args, parallel)
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, fmt.Sprintf("Max concurrent requests (1-%d)", MaxParallel))
	return cmd
}

// runFoodGet handles "food get".
func runFoodGet(ctx context.Context, env *Env, ids []string, parallel int) error {
	s, err := openSession(env)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	start := env.Now()
	foods, err := fetchAll(ctx, env, ids, parallel, s.client.GetFood)
	if err != nil {
		return err
	}

	reportBatch(env, len(foods), "foods", start)

	if env.JSON {
		if len(foods) == 1 {
			return writeJSON(env.Stdout, foods[0])
		}
		return writeJSON(env.Stdout, foods)
	}
	for i, f := range foods {
		if i > 0 {
			fmt.Fprintln(env.Stdout)
		}
		renderFood(env.Stdout, f)
	}
	return nil
}

// BarcodeCmd creates the "barcode" command.
func BarcodeCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "barcode <gtin>",
		Short: "Look up a food by UPC/EAN barcode",
		Long: `Look up a food by barcode.

EAN-8, UPC-A, EAN-13 and GTIN-14 (leading zero) codes are accepted and
normalized to the 13-digit form.`,
		Example: `  fatsecret barcode 3017620422003
  fatsecret barcode 041196910759 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBarcode(cmd.Context(), env, args[0])
		},
	}
}

// runBarcode handles "barcode".
func runBarcode(ctx context.Context, env *Env, barcode string) error {
	// Fail fast on malformed input before loading credentials.
	if _, err := fatsecret.NormalizeBarcode(barcode); err != nil {
		return err
	}

	s, err := openSession(env)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	food, err := withRetry(ctx, env, func() (*model.Food, error) {
		return s.client.LookupBarcode(ctx, barcode)
	})
	if err != nil {
		return err
	}

	if env.JSON {
		return writeJSON(env.Stdout, food)
	}
	renderFood(env.Stdout, food)
	return nil
}

// reportBatch prints a timing line to stderr for multi-id lookups.
func reportBatch(env *Env, n int, noun string, start time.Time) {
	if n < 2 {
		return
	}
	fmt.Fprintf(env.Stderr, "Fetched %d %s in %s\n", n, noun, format.DurationHuman(env.Now().Sub(start)))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
