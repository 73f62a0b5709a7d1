package cmd

import "github.com/spf13/cobra"

var dropCmd = &cobra.Command{
	Use:     "drop [mapping files|directories|archives...]",
	Short:   "Drop the mapped schema (export --drop)",
	PreRunE: bindExportFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, args, modeDrop)
	},
}

func init() {
	RootCmd.AddCommand(dropCmd)
	addExportFlags(dropCmd)
}
