package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "promptmaster",
	Short: "Multi-user prompt library with visibility-aware sharing",
	Long: `PromptMaster is a multi-user library for LLM prompts.

Users organise prompts with categories and tags, keep them private or share
them with the community, favorite the ones they reach for, and (with a
Gemini API key) get AI help rewriting drafts into effective prompts.

Configuration comes from config.yaml and PROMPTMASTER_* environment
variables; see 'promptmaster serve --help' to get started.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.promptmaster/config.yaml)",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
