package dialect

// Dialect abstracts database-specific SQL rendering and introspection.
type Dialect interface {
	Name() string

	// Metadata Queries (Schema Introspection)
	GetTablesQuery(schema string) string
	GetColumnsQuery(schema string) string
	GetForeignKeysQuery(schema string) string

	// DDL Generation
	ColumnType(typ string, length, precision, scale int) string
	IdentityColumn(sqlType string) string
	InlineIdentityKey() bool // identity columns must carry the primary key themselves (SQLite)
	DropTable(table string) string
	DropConstraints() bool // drop foreign keys one by one before dropping tables
	DropForeignKey(table, name string) string
	AlterForeignKeys() bool // foreign keys added with ALTER TABLE after all tables exist

	// Literals (import scripts)
	BoolLiteral(v bool) string
	TimestampLiteral(ts string) string

	// WarningsQuery is run after each exported statement. Empty when the
	// vendor has no such query.
	WarningsQuery() string

	// Helpers
	NormalizeType(sqlType string) string
	GetSchemaName(input string) string
}
