package pulsedcm

import (
	"fmt"

	"github.com/pulsedcm/pulsedcm/internal/anon"
	"github.com/pulsedcm/pulsedcm/internal/policy"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletionV2(out, true)
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
		Example: `
# Bash
pulsedcm completion bash > /etc/bash_completion.d/pulsedcm

# Zsh
pulsedcm completion zsh > "${fpath[1]}/_pulsedcm"

# Fish
pulsedcm completion fish > ~/.config/fish/completions/pulsedcm.fish
`,
	}
	rootCmd.AddCommand(cmd)
}

// registerPolicyFlags completes --policy and, when present, --action with the
// names the parsers accept.
func registerPolicyFlags(cmd *cobra.Command) {
	var policies []string
	for _, s := range policy.All {
		policies = append(policies, s.String())
	}
	_ = cmd.RegisterFlagCompletionFunc("policy", cobra.FixedCompletions(policies, cobra.ShellCompDirectiveNoFileComp))
	if cmd.Flags().Lookup("action") == nil {
		return
	}
	actions := []string{anon.Zero.String(), anon.Replace.String(), anon.Remove.String()}
	_ = cmd.RegisterFlagCompletionFunc("action", cobra.FixedCompletions(actions, cobra.ShellCompDirectiveNoFileComp))
}
