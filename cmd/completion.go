package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/yashshri2111/ysbot/internal/config"
	"github.com/yashshri2111/ysbot/internal/llm"
)

// ProviderFlagCompletion handles --provider flag completion. Candidates come
// from the config plus the built-in providers; after a colon, known models.
func ProviderFlagCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	completions := llm.GetProviderCompletions(toComplete, cfg)

	// If completing provider name (no colon), don't add space so user can type ":"
	if !strings.Contains(toComplete, ":") {
		return completions, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
