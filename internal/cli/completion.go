package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cola.

To load completions:

Bash:
  $ source <(cola completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ cola completion bash > /etc/bash_completion.d/cola
  # macOS:
  $ cola completion bash > $(brew --prefix)/etc/bash_completion.d/cola

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ cola completion zsh > "${fpath[1]}/_cola"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ cola completion fish | source

  # To load completions for each session, execute once:
  $ cola completion fish > ~/.config/fish/completions/cola.fish

PowerShell:
  PS> cola completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> cola completion powershell > cola.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
