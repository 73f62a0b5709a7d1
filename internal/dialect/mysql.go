package dialect

import (
	"fmt"
)

type MysqlDialect struct{}

var mysqlTypes = map[string]string{
	"varchar":   "varchar($l)",
	"char":      "char($l)",
	"text":      "longtext",
	"int":       "integer",
	"smallint":  "smallint",
	"tinyint":   "tinyint",
	"bigint":    "bigint",
	"boolean":   "bit",
	"decimal":   "decimal($p,$s)",
	"float":     "float",
	"double":    "double precision",
	"date":      "date",
	"time":      "time",
	"timestamp": "datetime",
	"blob":      "longblob",
	"uuid":      "char(36)",
}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) GetTablesQuery(schema string) string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'`
}

func (d *MysqlDialect) GetColumnsQuery(schema string) string {
	return `SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, CHARACTER_MAXIMUM_LENGTH, IS_NULLABLE, COLUMN_KEY, EXTRA, IF(COLUMN_KEY='UNI', 'UNIQUE', NULL) AS IS_UNIQUE, COLUMN_COMMENT FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME, ORDINAL_POSITION`
}

func (d *MysqlDialect) GetForeignKeysQuery(schema string) string {
	return `SELECT TABLE_NAME, CONSTRAINT_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = ? AND REFERENCED_TABLE_NAME IS NOT NULL`
}

func (d *MysqlDialect) ColumnType(typ string, length, precision, scale int) string {
	return renderType(mysqlTypes, typ, length, precision, scale)
}

func (d *MysqlDialect) IdentityColumn(sqlType string) string {
	return sqlType + " auto_increment"
}

func (d *MysqlDialect) InlineIdentityKey() bool { return false }

func (d *MysqlDialect) DropTable(table string) string {
	return fmt.Sprintf("drop table if exists %s", table)
}

// MySQL refuses to drop a referenced table, so foreign keys go first.
func (d *MysqlDialect) DropConstraints() bool { return true }

func (d *MysqlDialect) DropForeignKey(table, name string) string {
	return fmt.Sprintf("alter table %s drop foreign key %s", table, name)
}

func (d *MysqlDialect) AlterForeignKeys() bool { return true }

func (d *MysqlDialect) BoolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (d *MysqlDialect) TimestampLiteral(ts string) string {
	return quoteTimestamp(ts)
}

func (d *MysqlDialect) WarningsQuery() string { return "SHOW WARNINGS" }

func (d *MysqlDialect) NormalizeType(sqlType string) string {
	return DefaultNormalizeType(sqlType)
}

func (d *MysqlDialect) GetSchemaName(input string) string {
	return DefaultGetSchemaName(input)
}
