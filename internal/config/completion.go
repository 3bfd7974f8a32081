package config

import (
	"github.com/spf13/cobra"

	"github.com/cidralias/cidralias/internal/dump"
)

// encodingCandidates are the charsets registry dumps are commonly published
// in. Any IANA name is accepted; these only seed shell completion.
var encodingCandidates = []string{dump.DefaultEncoding, "utf-8", "koi8-r", "cp866", "iso-8859-5"}

// CompleteEncoding provides shell completion candidates for the --encoding flag.
func CompleteEncoding(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return encodingCandidates, cobra.ShellCompDirectiveNoFileComp
}

// RegisterFlagCompletions wires completion candidates for flags with a known
// value set. Flags holding file paths keep cobra's default file completion.
func RegisterFlagCompletions(cmd *cobra.Command) {
	// Registration fails only for flag names missing from cmd.
	_ = cmd.RegisterFlagCompletionFunc("encoding", CompleteEncoding)
}

// KeyCompletions returns completion candidates for a config key's value, or
// nil when the value is free-form.
func KeyCompletions(key string) []string {
	switch NormalizeKey(key) {
	case "verbose", "progress":
		return []string{"true", "false"}
	case "encoding":
		return encodingCandidates
	default:
		return nil
	}
}
