// Package cmd implements the personaforge CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "personaforge",
	Short: "personaforge — persona profiles from public evidence",
	Long:  "personaforge builds structured persona documents from LinkedIn and X profiles via an LLM research loop",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(serveCmd)
}
