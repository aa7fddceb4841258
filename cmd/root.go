package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yashshri2111/ysbot/internal/exitcode"
	"github.com/yashshri2111/ysbot/internal/persona"
	"github.com/yashshri2111/ysbot/internal/tui/chat"
)

var rootProvider string

func init() {
	rootCmd.Flags().StringVar(&rootProvider, "provider", "", "Override provider, optionally with model (e.g., openai:gpt-5.2)")
	if err := rootCmd.RegisterFlagCompletionFunc("provider", ProviderFlagCompletion); err != nil {
		panic(fmt.Sprintf("failed to register provider completion: %v", err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "ysbot",
	Short: "Chat with YS Bot in your terminal",
	Long: `ysbot is a terminal chat assistant. Replies stream into a scrollable
transcript while you keep your place in the conversation.

Examples:
  ysbot                                 # start chatting
  ysbot --provider openai:gpt-5.2       # chat via a specific provider
  ysbot ask "what is a goroutine?"      # one-shot question
  ysbot models                          # list known models
  ysbot config                          # view configuration`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
	SilenceErrors:     true,
	Version:           Version,
	RunE:              runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigWithSetup()
	if err != nil {
		return err
	}

	if err := applyProviderOverrides(cfg, rootProvider); err != nil {
		return err
	}

	p, err := persona.Resolve(cfg.Persona)
	if err != nil {
		return err
	}

	return chat.Run(cfg, p)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(exitcode.ExitError); ok {
			if exitErr.Code != exitcode.Cancelled {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitcode.Error)
	}
}
