// Package commands wires the converter pipeline into a CLI.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "converter",
		Short: "Convert bank statement PDFs into validated spreadsheets",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newConvertCommand())

	return rootCmd
}
