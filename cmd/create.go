package cmd

import "github.com/spf13/cobra"

var createCmd = &cobra.Command{
	Use:     "create [mapping files|directories|archives...]",
	Short:   "Create the mapped schema (export --create)",
	PreRunE: bindExportFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, args, modeCreate)
	},
}

func init() {
	RootCmd.AddCommand(createCmd)
	addExportFlags(createCmd)
}
