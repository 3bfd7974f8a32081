package cli

import "github.com/spf13/cobra"

func newCompletionCmd() *cobra.Command {
	completion := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cidralias.

To load completions:

Bash:
  $ source <(cidralias completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ cidralias completion bash > /etc/bash_completion.d/cidralias
  # macOS:
  $ cidralias completion bash > $(brew --prefix)/etc/bash_completion.d/cidralias

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it first:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ source <(cidralias completion zsh)

  # To load completions for each session, execute once:
  $ cidralias completion zsh > "${fpath[1]}/_cidralias"

Fish:
  $ cidralias completion fish | source

  # To load completions for each session, execute once:
  $ cidralias completion fish > ~/.config/fish/completions/cidralias.fish

PowerShell:
  PS> cidralias completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, add the output of the above
  # command to your PowerShell profile.`,
		// Override root's PersistentPreRunE: buildDeps must not run during
		// tab-completion because it has filesystem side effects (creates config
		// dir and file). This is the only subcommand permitted to override
		// PersistentPreRunE without calling buildDeps.
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
	}

	completion.AddCommand(
		newCompletionBashCmd(),
		newCompletionZshCmd(),
		newCompletionFishCmd(),
		newCompletionPowerShellCmd(),
	)

	return completion
}

func newCompletionBashCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "bash",
		Short:                 "Generate bash completion script",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Long: `Generate the autocompletion script for bash.

This script depends on the 'bash-completion' package. If not installed, you can
install it via your OS package manager.

To load completions in your current shell session:
  $ source <(cidralias completion bash)

To load completions for every new session, execute once:
  # Linux:
  $ cidralias completion bash > /etc/bash_completion.d/cidralias
  # macOS:
  $ cidralias completion bash > $(brew --prefix)/etc/bash_completion.d/cidralias

You will need to start a new shell for the setup to take effect.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
		},
	}
}

func newCompletionZshCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "zsh",
		Short:                 "Generate zsh completion script",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Long: `Generate the autocompletion script for the zsh shell.

If shell completion is not already enabled in your environment, enable it once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

To load completions in your current shell session:
  $ source <(cidralias completion zsh)

To load completions for every new session, execute once:
  $ cidralias completion zsh > "${fpath[1]}/_cidralias"

You will need to start a new shell for the setup to take effect.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	}
}

func newCompletionFishCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "fish",
		Short:                 "Generate fish completion script",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Long: `Generate the autocompletion script for the fish shell.

To load completions in your current shell session:
  $ cidralias completion fish | source

To load completions for every new session, execute once:
  $ cidralias completion fish > ~/.config/fish/completions/cidralias.fish

You will need to start a new shell for the setup to take effect.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	}
}

func newCompletionPowerShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "powershell",
		Short:                 "Generate PowerShell completion script",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Long: `Generate the autocompletion script for PowerShell.

To load completions in your current shell session:
  PS> cidralias completion powershell | Out-String | Invoke-Expression

To load completions for every new session, add the output of the above command
to your PowerShell profile.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		},
	}
}
