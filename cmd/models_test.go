package cmd

import (
	"strings"
	"testing"

	"github.com/yashshri2111/ysbot/internal/config"
)

func TestBuildModelListingPutsConfiguredModelFirst(t *testing.T) {
	cfg := &config.Config{
		DefaultProvider: "gemini",
		Providers: map[string]config.ProviderConfig{
			"gemini": {Model: "gemini-3-flash-preview"},
		},
	}

	listing := buildModelListing(cfg, []string{"gemini"})
	if len(listing) != 1 {
		t.Fatalf("expected one provider, got %d", len(listing))
	}

	models := listing[0].Models
	if models[0] != "gemini-3-flash-preview" {
		t.Fatalf("configured model not first: %v", models)
	}
	count := 0
	for _, m := range models {
		if m == "gemini-3-flash-preview" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("configured model duplicated: %v", models)
	}
}

func TestBuildModelListingIncludesConfiguredCustomModel(t *testing.T) {
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"local": {Type: config.ProviderTypeOpenAICompat, Model: "llama-3.3-70b"},
		},
	}

	listing := buildModelListing(cfg, []string{"local"})
	if len(listing) != 1 || listing[0].Models[0] != "llama-3.3-70b" {
		t.Fatalf("expected configured custom model listed, got %v", listing)
	}
}

func TestBuildModelListingSkipsProvidersWithoutModels(t *testing.T) {
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"local": {Type: config.ProviderTypeOpenAICompat, BaseURL: "http://localhost:8080/v1"},
		},
	}

	listing := buildModelListing(cfg, []string{"local"})
	if len(listing) != 0 {
		t.Fatalf("expected no entry for provider without models, got %v", listing)
	}
}

func TestFormatModelListingMarksDefaults(t *testing.T) {
	listing := []ProviderModels{
		{Provider: "openai", Default: "gpt-5.2", Models: []string{"gpt-5.2", "gpt-4.1"}},
	}

	out := formatModelListing(listing, "openai")
	if !strings.Contains(out, "openai (default):") {
		t.Fatalf("default provider not marked:\n%s", out)
	}
	if !strings.Contains(out, "* gpt-5.2") {
		t.Fatalf("configured model not starred:\n%s", out)
	}
	if strings.Contains(out, "* gpt-4.1") {
		t.Fatalf("non-default model starred:\n%s", out)
	}
}
