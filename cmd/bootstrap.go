package cmd

import (
	"fmt"

	"github.com/yashshri2111/ysbot/internal/config"
	"github.com/yashshri2111/ysbot/internal/llm"
	"github.com/yashshri2111/ysbot/internal/ui"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func loadConfigWithSetup() (*config.Config, error) {
	if config.NeedsSetup() {
		cfg, err := ui.RunSetupWizard()
		if err != nil {
			return nil, fmt.Errorf("setup cancelled: %w", err)
		}
		return cfg, nil
	}

	return loadConfig()
}

// applyProviderOverrides applies a --provider flag value, which may carry a
// model after a colon.
func applyProviderOverrides(cfg *config.Config, providerFlag string) error {
	if providerFlag == "" {
		return nil
	}

	overrideProvider, overrideModel, err := llm.ParseProviderModel(providerFlag, cfg)
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(overrideProvider, overrideModel)
	return nil
}
