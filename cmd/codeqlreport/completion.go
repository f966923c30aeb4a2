package codeqlreport

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Print a shell completion script for codeqlreport",
		Long: `Print a completion script for bash, zsh, fish or powershell.

The script completes subcommands such as report, setup and template init,
their flags, and file paths for --config and --env-file.`,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
		Example: `  # Load for the current bash session
  source <(codeqlreport completion bash)

  # Install for zsh, then restart the shell
  codeqlreport completion zsh > "${fpath[1]}/_codeqlreport"

  # fish
  codeqlreport completion fish > ~/.config/fish/completions/codeqlreport.fish

  # PowerShell
  codeqlreport completion powershell | Out-String | Invoke-Expression`,
	}
	rootCmd.AddCommand(cmd)
}
