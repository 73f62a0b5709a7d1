package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"schema-export/internal/license"
)

var licenseCmd = &cobra.Command{
	Use:   "license [root]",
	Short: "Prepend the Apache 2.0 license banner to generated sources",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		patterns, _ := cmd.Flags().GetStringSlice("pattern")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		n, err := license.ProcessFiles(root, patterns, license.ASL2{}, dryRun, Logger)
		if err != nil {
			return err
		}
		if dryRun {
			fmt.Printf("🔍 %d file(s) would get the license banner\n", n)
			return nil
		}
		fmt.Printf("✓ License banner added to %d file(s)\n", n)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(licenseCmd)
	licenseCmd.Flags().StringSlice("pattern", license.DefaultPatterns, "file name patterns to process")
	licenseCmd.Flags().Bool("dry-run", false, "list matching files without rewriting them")
}
