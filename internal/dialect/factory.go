package dialect

import (
	"fmt"
	"strings"
)

// GetDialect returns the appropriate Dialect implementation based on driver name.
func GetDialect(driver string) Dialect {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return &PostgresDialect{}
	case "sqlserver", "mssql":
		return &MSSQLDialect{}
	case "oracle":
		return &OracleDialect{}
	case "sqlite", "sqlite3":
		return &SQLiteDialect{}
	default: // mysql
		return &MysqlDialect{}
	}
}

// Lookup is the strict variant of GetDialect used for the --dialect flag.
func Lookup(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx", "sqlserver", "mssql", "oracle", "sqlite", "sqlite3", "mysql", "mariadb":
		return GetDialect(name), nil
	}
	return nil, fmt.Errorf("unknown dialect %q (want postgres, mysql, sqlserver, oracle or sqlite)", name)
}

// Ensure interface implementation
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)
var _ Dialect = (*OracleDialect)(nil)
var _ Dialect = (*SQLiteDialect)(nil)
