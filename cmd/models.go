package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yashshri2111/ysbot/internal/config"
	"github.com/yashshri2111/ysbot/internal/llm"
)

var modelsProvider string
var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models per provider",
	Long: `List the known model names for each provider.

The lists are built in and cover commonly used models; any model name a
provider accepts can still be set in the config or via --provider.

Examples:
  ysbot models                      # list models for every provider
  ysbot models --provider openai    # list models for one provider
  ysbot models --json               # output as JSON`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().StringVarP(&modelsProvider, "provider", "p", "", "Only list models for this provider")
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "Output as JSON")
}

// ProviderModels pairs a provider with its model names, for listing.
type ProviderModels struct {
	Provider string   `json:"provider"`
	Default  string   `json:"default,omitempty"`
	Models   []string `json:"models"`
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	providers := cfg.ProviderNames()
	if modelsProvider != "" {
		found := false
		for _, name := range providers {
			if name == modelsProvider {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown provider %q (known: %s)", modelsProvider, strings.Join(providers, ", "))
		}
		providers = []string{modelsProvider}
	}

	listing := buildModelListing(cfg, providers)
	if len(listing) == 0 {
		fmt.Println("No models known for the selected provider.")
		return nil
	}

	if modelsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	}

	fmt.Print(formatModelListing(listing, cfg.DefaultProvider))
	return nil
}

// buildModelListing merges each provider's configured model into its known
// list, configured model first, the same order the in-chat picker shows.
func buildModelListing(cfg *config.Config, providers []string) []ProviderModels {
	var listing []ProviderModels
	for _, name := range providers {
		models := llm.KnownModels(name)
		configured := cfg.Provider(name).Model
		if configured != "" {
			ordered := []string{configured}
			for _, model := range models {
				if model != configured {
					ordered = append(ordered, model)
				}
			}
			models = ordered
		}
		if len(models) == 0 {
			continue
		}
		listing = append(listing, ProviderModels{
			Provider: name,
			Default:  configured,
			Models:   models,
		})
	}
	return listing
}

func formatModelListing(listing []ProviderModels, defaultProvider string) string {
	var b strings.Builder
	for i, pm := range listing {
		if i > 0 {
			b.WriteString("\n")
		}
		header := pm.Provider
		if pm.Provider == defaultProvider {
			header += " (default)"
		}
		fmt.Fprintf(&b, "%s:\n", header)
		for _, model := range pm.Models {
			marker := "  "
			if pm.Default != "" && model == pm.Default {
				marker = "* "
			}
			fmt.Fprintf(&b, "  %s%s\n", marker, model)
		}
	}
	b.WriteString("\nTo switch, run /model in the chat or set providers.<name>.model in the config.\n")
	return b.String()
}
