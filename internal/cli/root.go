// Package cli implements the dialin command-line tool. Commands compute
// recipes locally from the grinder table, or ask a running server when
// --server (or DIALIN_SERVER) is set.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"tangled.org/arabica.social/dialin/internal/grinder"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ServerEnvVar names the environment variable used as the default --server.
const ServerEnvVar = "DIALIN_SERVER"

// options holds the flags shared by every subcommand.
type options struct {
	server       string
	grindersFile string
	jsonOutput   bool
	verbose      bool
}

// registry returns the grinder table for local calculations.
func (o *options) registry() (*grinder.Registry, error) {
	if o.grindersFile == "" {
		return grinder.NewDefaultRegistry(), nil
	}
	profiles, err := grinder.LoadFile(o.grindersFile)
	if err != nil {
		return nil, err
	}
	return grinder.NewRegistry(profiles)
}

// client returns a server client, or nil when running locally.
func (o *options) client() *Client {
	if o.server == "" {
		return nil
	}
	return NewClient(o.server, nil)
}

// NewRootCommand builds the dialin command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "dialin",
		Short: "Coffee recipe and grind advisor for V60 and espresso.",
		Long: `dialin turns a dose, a ratio and a roast level into a brew recipe ` +
			`with a grind setting for your grinder, and helps you dial in ` +
			`the next brew from how the last one tasted.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			if !cmd.Flags().Changed("server") {
				opts.server = os.Getenv(ServerEnvVar)
			}
			setupLogging(cmd.ErrOrStderr(), opts.verbose)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", "", "base URL of a dialin server (default $"+ServerEnvVar+")")
	flags.StringVar(&opts.grindersFile, "grinders", "", "YAML grinder table for local calculations")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of text")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(
		newRecipeCommand(opts),
		newDialInCommand(opts),
		newGrindersCommand(opts),
	)

	return rootCmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}).Level(level).With().Timestamp().Logger()
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
