package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yashshri2111/ysbot/internal/config"
	"github.com/yashshri2111/ysbot/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Show the resolved configuration: config file path, persona, default
provider, and each provider's model and credential status.

Secrets are masked; only the tail of a resolved key is shown.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	styles := ui.NewStyles(os.Stdout)

	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if config.Exists() {
		fmt.Printf("Config file: %s\n", path)
	} else {
		fmt.Printf("Config file: %s (not created yet; defaults in effect)\n", path)
	}

	personaSource := cfg.Persona
	if personaSource == "" {
		personaSource = "builtin"
	}
	fmt.Printf("Persona:     %s\n", personaSource)
	fmt.Printf("\nDefault provider: %s\n\n", cfg.DefaultProvider)

	fmt.Println("Providers:")
	for _, name := range cfg.ProviderNames() {
		pc := cfg.Provider(name)
		ptype := config.InferProviderType(name, pc.Type)

		header := "  " + name
		if name == cfg.DefaultProvider {
			header += " (default)"
		}
		fmt.Println(header)
		fmt.Printf("    type:     %s\n", ptype)

		model := pc.Model
		if model == "" && ptype == config.ProviderTypeGemini {
			model = config.DefaultGeminiModel
		}
		if model != "" {
			fmt.Printf("    model:    %s\n", model)
		}
		if pc.BaseURL != "" {
			fmt.Printf("    base_url: %s\n", pc.BaseURL)
		}

		key, source := resolveCredential(pc, ptype)
		if key != "" {
			fmt.Printf("    api_key:  %s (%s)\n", maskKey(key), source)
		}
		fmt.Printf("    %s\n", styles.FormatEnabled(key != ""))
	}

	return nil
}

// resolveCredential reports where a provider's key comes from, for display.
// Resolution order matches what the provider factory does at startup.
func resolveCredential(pc config.ProviderConfig, ptype config.ProviderType) (key, source string) {
	if pc.APIKey != "" {
		resolved, err := config.ResolveValue(pc.APIKey)
		if err == nil && resolved != "" {
			return resolved, "config"
		}
	}
	if envVar := config.EnvKeyVar(ptype); envVar != "" {
		if v := os.Getenv(envVar); v != "" {
			return v, envVar
		}
	}
	return "", ""
}

// maskKey hides all but the last four characters of a credential.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
