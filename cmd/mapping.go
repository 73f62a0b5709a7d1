package cmd

import (
	"database/sql"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"schema-export/internal/naming"
	"schema-export/internal/schema"
)

// mappingInput is what export and seed build their scripts from.
type mappingInput struct {
	tables     []*schema.Table
	naming     naming.Strategy
	exclusions []string

	// db and conn are set when the schema was read from a live database.
	db   *sql.DB
	conn *DBConfig
}

// loadMapping reads the mapped tables from --config and positional
// arguments, or from the database when --from-db is set.
func loadMapping(cmd *cobra.Command, args []string) (*mappingInput, error) {
	in := &mappingInput{exclusions: viper.GetStringSlice("export.exclude_tables")}
	strategyName := viper.GetString("export.naming")

	paths := slices.Clone(args)
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		cfg, err := schema.LoadConfiguration(configPath)
		if err != nil {
			return nil, err
		}
		paths = append(cfg.Mappings, paths...)
		in.exclusions = append(in.exclusions, cfg.ExcludeTables...)
		if strategyName == "" {
			strategyName = cfg.Naming
		}
	}

	strategy, err := naming.Lookup(strategyName)
	if err != nil {
		return nil, err
	}
	in.naming = strategy

	if fromDB, _ := cmd.Flags().GetBool("from-db"); fromDB {
		if err := in.analyze(); err != nil {
			return nil, err
		}
		return in, nil
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no mapping files given (pass files, directories or .zip archives, or use --config / --from-db)")
	}
	loaded, err := schema.Load(paths, Logger)
	if err != nil {
		return nil, err
	}
	in.tables, err = schema.Resolve(loaded, Logger)
	if err != nil {
		return nil, err
	}
	Logger.Info("mapping loaded", "files", len(paths), "tables", len(in.tables))
	return in, nil
}

func (in *mappingInput) analyze() error {
	conn, err := resolveConnection()
	if err != nil {
		return err
	}
	fmt.Printf("🦅 Reading schema from %s (%s)\n", conn.Name, conn.Driver)

	db, err := sql.Open(conn.Driver, conn.DSN)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to db: %w", err)
	}

	name, err := schemaName(db, conn.Driver)
	if err != nil {
		db.Close()
		return err
	}
	d, err := resolveDialect()
	if err != nil {
		db.Close()
		return err
	}

	Logger.Info("analyzing schema", "schema", name, "dialect", d.Name())
	tables, err := schema.Analyze(db, d, name, Logger)
	if err != nil {
		db.Close()
		return err
	}
	in.tables, in.db, in.conn = tables, db, conn
	return nil
}

func (in *mappingInput) close() {
	if in.db != nil {
		in.db.Close()
	}
}
