package cli

import (
	"tangled.org/arabica.social/dialin/internal/models"
	"tangled.org/arabica.social/dialin/internal/recipe"

	"github.com/spf13/cobra"
)

func newDialInCommand(opts *options) *cobra.Command {
	var (
		req    models.DialInRequest
		method string
		roast  string
		result string
	)

	cmd := &cobra.Command{
		Use:     "dial-in",
		Aliases: []string{"dialin"},
		Short:   "Suggest the next grind setting from how a brew tasted.",
		Long: "`dial-in --method espresso --grind 2.2 --time 18 --taste too_sour` compares " +
			"the brew time with the target for the method and moves the dial one or two " +
			"grinder steps towards a better extraction.",
		Example: `  dialin dial-in --method espresso --roast light --grind 2.2 --time 18 --taste too_sour
  dialin dial-in --method v60 --grind 11 --time 200 --taste too_bitter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Method = models.Method(method)
			req.RoastLevel = models.RoastLevel(roast)
			req.TasteResult = models.TasteResult(result)

			var (
				out *models.DialInAdvice
				err error
			)
			if c := opts.client(); c != nil {
				out, err = c.DialIn(cmd.Context(), req)
			} else {
				reg, rerr := opts.registry()
				if rerr != nil {
					return rerr
				}
				out, err = recipe.DialIn(reg, req)
			}
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			writeAdvice(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&method, "method", "m", string(models.MethodV60), "brew method: v60 or espresso")
	flags.StringVarP(&roast, "roast", "r", "", "roast level: light, medium or dark")
	flags.StringVarP(&req.Grinder, "grinder", "g", "", "grinder name (default TIMEMORE Sculptor 064S)")
	flags.Float64Var(&req.CurrentGrind, "grind", 0, "dial setting used for the brew")
	flags.IntVar(&req.TimeS, "time", 0, "shot time (espresso) or total brew time (V60) in seconds")
	flags.StringVarP(&result, "taste", "t", string(models.ResultBalanced), "how it tasted: too_sour, too_bitter, too_weak, too_strong or balanced")
	flags.Float64Var(&req.CurrentRatio, "ratio", 0, "ratio used for the brew, echoed back in the advice")
	_ = cmd.MarkFlagRequired("grind")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}
