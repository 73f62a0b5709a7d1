package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"schema-export/internal/ddl"
	"schema-export/internal/export"
	"schema-export/internal/format"
)

type exportMode int

const (
	modeBoth exportMode = iota
	modeCreate
	modeDrop
)

var exportCmd = &cobra.Command{
	Use:   "export [mapping files|directories|archives...]",
	Short: "Drop and create the mapped schema",
	Long: `Generates drop and create scripts from the mapping and runs them against
the database, an output file and the console. Statements mentioning an
excluded table are skipped. After create, the import script runs line by line.`,
	PreRunE: bindExportFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := modeBoth
		if create, _ := cmd.Flags().GetBool("create"); create {
			mode = modeCreate
		}
		if drop, _ := cmd.Flags().GetBool("drop"); drop {
			if mode == modeCreate {
				return fmt.Errorf("--drop and --create are mutually exclusive")
			}
			mode = modeDrop
		}
		return runExport(cmd, args, mode)
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)
	addExportFlags(exportCmd)
	exportCmd.Flags().Bool("drop", false, "only drop the tables")
	exportCmd.Flags().Bool("create", false, "only create the tables")

	viper.SetDefault("export.highlight_style", "monokai")
}

// addExportFlags registers the flags shared by export, create and drop.
func addExportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolP("quiet", "q", false, "do not echo the script to stdout")
	f.Bool("haltonerror", false, "stop at the first failing create statement")
	f.Bool("text", false, "do not export to the database")
	f.StringP("output", "o", "", "write the script to this file")
	f.String("import", export.DefaultImportFile, "import script run after create")
	f.Bool("format", false, "pretty print the DDL")
	f.String("delimiter", "", "statement delimiter appended to each statement")
	f.String("config", "", "schema configuration file (mappings, naming, exclude_tables)")
	f.String("naming", "", "naming strategy (default, improved, upper, lower)")
	f.StringSlice("exclude", nil, "tables to exclude (repeatable or comma separated)")
	f.Bool("from-db", false, "read the schema from the database instead of mapping files")
	f.String("schema", "", "schema to read with --from-db")
	f.Bool("color", true, "highlight the echoed script when stdout is a terminal")
	f.Bool("progress", true, "show a progress bar when the script is not echoed")
	f.Bool("strict", false, "fail on drop errors too")
}

// bindExportFlags binds the running command's flags. Only one command runs
// per process, so binding in PreRunE keeps export, create and drop apart.
func bindExportFlags(cmd *cobra.Command, _ []string) error {
	for key, flag := range map[string]string{
		"export.format_sql":     "format",
		"export.delimiter":      "delimiter",
		"export.halt_on_error":  "haltonerror",
		"export.exclude_tables": "exclude",
		"export.output_file":    "output",
		"export.import_file":    "import",
		"export.naming":         "naming",
		"export.schema":         "schema",
		"export.strict":         "strict",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string, mode exportMode) error {
	flags := cmd.Flags()
	quiet, _ := flags.GetBool("quiet")
	textOnly, _ := flags.GetBool("text")
	color, _ := flags.GetBool("color")
	showProgress, _ := flags.GetBool("progress")

	in, err := loadMapping(cmd, args)
	if err != nil {
		return err
	}
	defer in.close()

	d, err := resolveDialect()
	if err != nil {
		return err
	}
	g := ddl.New(d, in.naming)

	cfg := export.Config{
		DropSQL:       g.DropScript(in.tables),
		CreateSQL:     g.CreateScript(in.tables),
		ExcludeTables: in.exclusions,
		OutputFile:    viper.GetString("export.output_file"),
		ImportFile:    viper.GetString("export.import_file"),
		Format:        viper.GetBool("export.format_sql"),
		Delimiter:     viper.GetString("export.delimiter"),
		HaltOnError:   viper.GetBool("export.halt_on_error"),
		Console:       os.Stdout,
		Logger:        Logger,
	}
	if color && format.IsTerminal(os.Stdout) {
		cfg.Highlighter = format.NewHighlighter(viper.GetString("export.highlight_style"))
	}

	if !textOnly {
		switch {
		case in.db != nil:
			cfg.Connector = export.NewSuppliedConnector(in.db, d)
			fmt.Printf("🦅 Exporting to %s (%s)\n", in.conn.Name, in.conn.Driver)
		default:
			conn, err := resolveConnection()
			if err != nil {
				return err
			}
			cfg.Connector = export.NewManagedConnector(conn.Driver, conn.DSN, d)
			fmt.Printf("🦅 Exporting to %s (%s)\n", conn.Name, conn.Driver)
		}
	}

	var bar *uiprogress.Bar
	if showProgress && quiet && !textOnly {
		total := statementCount(cfg, mode)
		if total > 0 {
			uiprogress.Start()
			bar = uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "Exporting: "
			})
			cfg.Progress = func() { bar.Incr() }
		}
	}

	exporter, err := export.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := export.ExecuteOptions{
		Script:     !quiet,
		Export:     !textOnly,
		JustCreate: mode == modeCreate,
		JustDrop:   mode == modeDrop,
	}
	runErr := exporter.Execute(ctx, opts)
	if bar != nil {
		uiprogress.Stop()
	}

	exceptions := exporter.Exceptions()
	if len(exceptions) > 0 {
		fmt.Printf("\n📊 %d exception(s) recorded:\n", len(exceptions))
		for _, ex := range exceptions {
			fmt.Printf("    └ %v\n", ex)
		}
	}
	if runErr != nil {
		return runErr
	}
	return exitError(exceptions, viper.GetBool("export.strict"))
}

// exitError decides the exit status from the recorded exceptions. Drop
// failures are expected against an empty database (the foreign keys and
// tables do not exist yet), so they only count with strict set.
func exitError(exceptions []error, strict bool) error {
	n := 0
	for _, ex := range exceptions {
		var execErr *export.ExecError
		if !strict && errors.As(ex, &execErr) && execErr.Phase == export.PhaseDrop {
			continue
		}
		n++
	}
	if n == 0 {
		return nil
	}
	return fmt.Errorf("schema export recorded %d exception(s)", n)
}

// statementCount sizes the progress bar: the statements mode runs once
// exclusions are applied.
func statementCount(cfg export.Config, mode exportMode) int {
	n := 0
	if mode != modeCreate {
		n += len(export.ExcludeTables(cfg.DropSQL, cfg.ExcludeTables, nil))
	}
	if mode != modeDrop {
		n += len(export.ExcludeTables(cfg.CreateSQL, cfg.ExcludeTables, nil))
	}
	return n
}
