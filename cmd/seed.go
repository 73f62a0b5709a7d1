package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"schema-export/internal/export"
	"schema-export/internal/schema"
	"schema-export/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed [mapping files|directories|archives...]",
	Short: "Write an import script of fake rows for the mapped tables",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		for key, flag := range map[string]string{
			"seed.rows":             "rows",
			"export.naming":         "naming",
			"export.exclude_tables": "exclude",
		} {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return err
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		seedValue, _ := cmd.Flags().GetInt64("seed")
		outPath, _ := cmd.Flags().GetString("out")

		in, err := loadMapping(cmd, args)
		if err != nil {
			return err
		}
		defer in.close()

		d, err := resolveDialect()
		if err != nil {
			return err
		}
		tables := excludeTables(in.tables, in.exclusions)
		rows := viper.GetInt("seed.rows")

		var out io.Writer = os.Stdout
		var bar *uiprogress.Bar
		if outPath != "" && outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			defer f.Close()
			out = f

			uiprogress.Start()
			bar = uiprogress.AddBar(max(rows*len(tables), 1)).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "Generating: "
			})
		}

		s := seed.New(seed.Options{
			Rows:    rows,
			Seed:    seedValue,
			Dialect: d,
			Naming:  in.naming,
			Logger:  Logger,
			Progress: func() {
				if bar != nil {
					bar.Incr()
				}
			},
		})

		start := time.Now()
		results, err := s.Write(out, tables)
		if bar != nil {
			uiprogress.Stop()
		}
		if err != nil {
			return err
		}
		if out == os.Stdout {
			return nil
		}

		fmt.Println("\n📊 Summary Report (Dependency Order):")
		total := 0
		for i, r := range results {
			icon := "✓"
			if r.Status != "OK" {
				icon = "!"
			}
			fmt.Printf("[%s] [%02d/%02d] %-20s : %d rows (Target: %d) - %s\n",
				icon, i+1, len(results), r.TableName, r.Actual, r.Target, r.Status)
			total += r.Actual
		}
		fmt.Println("--------------------------------------------------")
		fmt.Printf("Total Rows: %d written to %s in %s\n", total, outPath, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(seedCmd)

	f := seedCmd.Flags()
	f.Int("rows", 0, "rows to generate per table (overrides config)")
	f.Int64("seed", 0, "random seed; 0 picks one")
	f.StringP("out", "o", export.DefaultImportFile, "script file to write, - for stdout")
	f.String("config", "", "schema configuration file (mappings, naming, exclude_tables)")
	f.String("naming", "", "naming strategy (default, improved, upper, lower)")
	f.StringSlice("exclude", nil, "tables to skip (repeatable or comma separated)")

	viper.SetDefault("seed.rows", 10)
}

// excludeTables drops tables whose name matches an exclusion, using the
// same substring rule as the export filter.
func excludeTables(tables []*schema.Table, exclusions []string) []*schema.Table {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	kept := map[string]bool{}
	for _, n := range export.ExcludeTables(names, exclusions, Logger) {
		kept[strings.ToUpper(n)] = true
	}

	var out []*schema.Table
	for _, t := range tables {
		if kept[strings.ToUpper(t.Name)] {
			out = append(out, t)
		}
	}
	return out
}
