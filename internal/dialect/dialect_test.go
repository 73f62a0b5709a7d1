package dialect_test

import (
	"testing"

	"schema-export/internal/dialect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDialect(t *testing.T) {
	cases := map[string]string{
		"postgres":  "postgres",
		"pgx":       "postgres",
		"mysql":     "mysql",
		"sqlserver": "sqlserver",
		"mssql":     "sqlserver",
		"oracle":    "oracle",
		"sqlite":    "sqlite",
		"":          "mysql",
	}
	for driver, want := range cases {
		assert.Equal(t, want, dialect.GetDialect(driver).Name(), "driver %q", driver)
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := dialect.Lookup("db2")
	require.Error(t, err)

	d, err := dialect.Lookup("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestColumnType(t *testing.T) {
	pg := dialect.GetDialect("postgres")
	assert.Equal(t, "varchar(40)", pg.ColumnType("varchar", 40, 0, 0))
	assert.Equal(t, "varchar(255)", pg.ColumnType("string", 0, 0, 0))
	assert.Equal(t, "numeric(19,2)", pg.ColumnType("decimal", 0, 0, 0))
	assert.Equal(t, "numeric(10,0)", pg.ColumnType("numeric", 0, 10, 0))
	assert.Equal(t, "bytea", pg.ColumnType("blob", 0, 0, 0))
	assert.Equal(t, "timestamp", pg.ColumnType("timestamp without time zone", 0, 0, 0))

	ora := dialect.GetDialect("oracle")
	assert.Equal(t, "varchar2(20 char)", ora.ColumnType("VARCHAR", 20, 0, 0))
	assert.Equal(t, "number(19,0)", ora.ColumnType("bigint", 0, 0, 0))

	my := dialect.GetDialect("mysql")
	assert.Equal(t, "datetime", my.ColumnType("timestamp", 0, 0, 0))
	// vendor types pass through untouched
	assert.Equal(t, "json", my.ColumnType("json", 0, 0, 0))
}

func TestIdentityAndDrop(t *testing.T) {
	assert.Equal(t, "integer auto_increment", dialect.GetDialect("mysql").IdentityColumn("integer"))
	assert.Equal(t, "int identity(1,1)", dialect.GetDialect("mssql").IdentityColumn("int"))
	assert.Equal(t, "integer primary key autoincrement", dialect.GetDialect("sqlite").IdentityColumn("bigint"))

	assert.Equal(t, "drop table if exists users cascade", dialect.GetDialect("postgres").DropTable("users"))
	assert.Equal(t, "drop table users cascade constraints", dialect.GetDialect("oracle").DropTable("users"))
	assert.Equal(t, "alter table orders drop foreign key fk_orders_user", dialect.GetDialect("mysql").DropForeignKey("orders", "fk_orders_user"))

	pg := dialect.GetDialect("postgres")
	assert.False(t, pg.DropConstraints(), "cascade drops remove foreign keys")
	assert.Equal(t, "alter table orders drop constraint if exists fk_orders_user", pg.DropForeignKey("orders", "fk_orders_user"))
}

func TestLiterals(t *testing.T) {
	assert.Equal(t, "true", dialect.GetDialect("postgres").BoolLiteral(true))
	assert.Equal(t, "0", dialect.GetDialect("sqlite").BoolLiteral(false))
	assert.Equal(t, "'2024-01-02 03:04:05'", dialect.GetDialect("mysql").TimestampLiteral("2024-01-02 03:04:05"))
	assert.Equal(t, "TIMESTAMP '2024-01-02 03:04:05'", dialect.GetDialect("oracle").TimestampLiteral("2024-01-02 03:04:05"))
}

func TestSQLiteNormalizeType(t *testing.T) {
	d := dialect.GetDialect("sqlite")
	assert.Equal(t, "varchar", d.NormalizeType("VARCHAR(40)"))
	assert.Equal(t, "integer", d.NormalizeType("INTEGER"))
}
