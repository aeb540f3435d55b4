// Command orchardctl runs advisory calculations and maintenance tasks from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "orchardctl",
		Short:         "Orchard advisory tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(classifyCmd(), outlookCmd(), migrateCmd())
	return cmd
}
