package cmd

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"schema-export/internal/dialect"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Active bool   `mapstructure:"active"`
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

// resolveConnection picks the target database: connection.* settings
// (flag > env > file) first, then the active profile under databases.
func resolveConnection() (*DBConfig, error) {
	if connStr := viper.GetString("connection.dsn"); connStr != "" {
		return &DBConfig{
			Name:   "connection",
			Driver: detectDriver(viper.GetString("connection.driver"), connStr),
			DSN:    connStr,
			Active: true,
		}, nil
	}

	active, err := GetActiveDBConfig()
	if err != nil {
		return nil, fmt.Errorf("no connection configured (use --dsn or a databases profile): %w", err)
	}
	active.Driver = detectDriver(active.Driver, active.DSN)
	return active, nil
}

// detectDriver keeps an explicit driver and otherwise guesses from the DSN.
func detectDriver(driver, connStr string) string {
	if driver != "" {
		return driver
	}
	switch {
	case strings.HasPrefix(connStr, "sqlserver://"):
		return "sqlserver"
	case strings.HasPrefix(connStr, "oracle://"):
		return "oracle"
	case strings.HasPrefix(connStr, "file:"), strings.HasSuffix(connStr, ".db"):
		return "sqlite"
	case strings.Contains(connStr, "postgres") || strings.Contains(connStr, "sslmode"):
		return "postgres"
	default:
		return "mysql"
	}
}

// resolveDialect honours connection.dialect, then the configured driver. A
// text-only export needs no connection, so a missing one falls back to
// postgres.
func resolveDialect() (dialect.Dialect, error) {
	if name := viper.GetString("connection.dialect"); name != "" {
		return dialect.Lookup(name)
	}
	if conn, err := resolveConnection(); err == nil {
		return dialect.GetDialect(conn.Driver), nil
	}
	if driver := viper.GetString("connection.driver"); driver != "" {
		return dialect.GetDialect(driver), nil
	}
	return dialect.GetDialect("postgres"), nil
}

// schemaName returns export.schema or the driver's default schema.
func schemaName(db *sql.DB, driver string) (string, error) {
	if name := viper.GetString("export.schema"); name != "" {
		return name, nil
	}
	switch driver {
	case "mysql":
		var name string
		if err := db.QueryRow("SELECT DATABASE()").Scan(&name); err != nil {
			return "", fmt.Errorf("failed to get database name: %w", err)
		}
		if name == "" {
			return "", fmt.Errorf("no database selected in DSN")
		}
		return name, nil
	case "sqlserver", "mssql":
		return "dbo", nil
	case "sqlite", "sqlite3":
		return "main", nil
	case "oracle":
		var name string
		if err := db.QueryRow("SELECT USER FROM DUAL").Scan(&name); err != nil {
			return "", fmt.Errorf("failed to get schema name: %w", err)
		}
		return name, nil
	default:
		return "public", nil
	}
}
