package cli

import (
	"strings"

	"tangled.org/arabica.social/dialin/internal/grinder"
	"tangled.org/arabica.social/dialin/internal/suggestions"

	"github.com/spf13/cobra"
)

func newGrindersCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "grinders [search]",
		Short: "List the grinder table and dial ranges.",
		Long: "`grinders` prints every grinder with its dial range per method. " +
			"`grinders sculptor` lists only the grinders matching the search. " +
			"Pass --grinders FILE to check a YAML table before deploying it.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search := strings.Join(args, " ")

			var (
				profiles []grinder.Profile
				err      error
			)
			if c := opts.client(); c != nil {
				profiles, err = c.Grinders(cmd.Context(), search)
			} else {
				profiles, err = localGrinders(opts, search)
			}
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"grinders": profiles})
			}
			if len(profiles) == 0 {
				cmd.PrintErrf("No grinder matches %q\n", search)
				return nil
			}
			writeGrinders(cmd.OutOrStdout(), profiles)
			return nil
		},
	}
}

func localGrinders(opts *options, search string) ([]grinder.Profile, error) {
	reg, err := opts.registry()
	if err != nil {
		return nil, err
	}
	if search == "" {
		return reg.List(), nil
	}

	return suggestions.Filter(reg.List(), search, suggestions.DefaultLimit), nil
}
