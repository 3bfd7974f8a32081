// Package cli provides the Cobra command tree for cidralias.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cidralias/cidralias/internal/config"
	"github.com/cidralias/cidralias/internal/version"
)

// NewRootCmd builds the top-level Cobra command. Callers must set the
// command's in/out/err streams before Execute.
func NewRootCmd(logger *slog.Logger, programLevel *slog.LevelVar) *cobra.Command {
	// d is populated by PersistentPreRunE before any subcommand's RunE runs.
	// INVARIANT: Cobra only executes the innermost PersistentPreRunE in the
	// command chain. If a future subcommand defines its own PersistentPreRunE,
	// the root hook will NOT run and d will be zero-valued. Do not add
	// PersistentPreRunE to any subcommand without also re-calling buildDeps.
	var d deps

	cmd := &cobra.Command{
		Use:   "cidralias",
		Short: "Generate merged CIDR alias lists from blocklist dumps",
		Long: `cidralias turns a semicolon-delimited blocklist dump into deduplicated,
merged CIDR lists, one per address family, ready to load as firewall aliases.

Subnets listed in the dump are always collected. With --dns-jobs above zero
the dump's domains and URL hostnames are resolved as well and every returned
address is added as a host route. Overlapping networks and sibling pairs are
collapsed before output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := buildDeps(cmd, logger, programLevel)
			if err != nil {
				return err
			}
			d = *resolved
			return nil
		},
	}

	config.RegisterPersistentFlags(cmd.PersistentFlags())

	cmd.Version = version.Version
	cmd.SetVersionTemplate("cidralias version {{.Version}}\n")

	cmd.AddCommand(
		newGenerateCmd(&d),
		newConfigCmd(&d),
		newCompletionCmd(),
		newVersionCmd(),
	)

	return cmd
}
