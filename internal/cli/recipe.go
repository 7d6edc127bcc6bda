package cli

import (
	"tangled.org/arabica.social/dialin/internal/models"
	"tangled.org/arabica.social/dialin/internal/recipe"

	"github.com/spf13/cobra"
)

func newRecipeCommand(opts *options) *cobra.Command {
	var (
		req      models.RecipeRequest
		method   string
		roast    string
		taste    string
		baseline float64
	)

	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Generate a brew recipe with a grind setting.",
		Long: "`recipe --method v60 --roast light --dose 18 --water 300` prints water, " +
			"temperature, target time, steps and a grind setting. Use --ratio instead " +
			"of --water to derive the water (or espresso yield) from the dose.",
		Example: `  dialin recipe --method v60 --roast light --dose 18 --water 300
  dialin recipe --method espresso --roast medium --dose 18 --ratio 2 --taste sweeter
  dialin recipe --method v60 --roast dark --dose 15 --ratio 16 --baseline 10.4 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Method = models.Method(method)
			req.RoastLevel = models.RoastLevel(roast)
			req.TasteGoal = models.TasteGoal(taste)
			if cmd.Flags().Changed("baseline") {
				req.BaselineGrind = &baseline
			}

			var (
				out *models.Recipe
				err error
			)
			if c := opts.client(); c != nil {
				out, err = c.Recipe(cmd.Context(), req)
			} else {
				reg, rerr := opts.registry()
				if rerr != nil {
					return rerr
				}
				out, err = recipe.Generate(reg, req)
			}
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			writeRecipe(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&method, "method", "m", string(models.MethodV60), "brew method: v60 or espresso")
	flags.StringVarP(&roast, "roast", "r", string(models.RoastLight), "roast level: light, medium or dark")
	flags.Float64VarP(&req.CoffeeG, "dose", "d", 0, "coffee dose in grams")
	flags.Float64VarP(&req.WaterG, "water", "w", 0, "total water (V60) or yield (espresso) in grams")
	flags.Float64Var(&req.Ratio, "ratio", 0, "water/coffee ratio, used when --water is not set")
	flags.StringVarP(&taste, "taste", "t", string(models.TasteBalanced), "taste goal: balanced, sweeter, brighter or less_bitter")
	flags.Float64Var(&baseline, "baseline", 0, "your usual dial setting for this method")
	flags.StringVarP(&req.Grinder, "grinder", "g", "", "grinder name (default TIMEMORE Sculptor 064S)")
	_ = cmd.MarkFlagRequired("dose")

	return cmd
}
