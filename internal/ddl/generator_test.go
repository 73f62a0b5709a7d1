package ddl_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"schema-export/internal/ddl"
	"schema-export/internal/dialect"
	"schema-export/internal/naming"
	"schema-export/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTables(t *testing.T) []*schema.Table {
	t.Helper()
	def := "0"
	tables, err := schema.Resolve([]*schema.Table{
		{
			Name: "OrderLine",
			Columns: []*schema.Column{
				{Name: "id", DataType: "bigint", IsPK: true, IsAutoInc: true},
				{Name: "orderId", DataType: "bigint"},
				{Name: "quantity", DataType: "int", Default: &def},
			},
			ForeignKeys: []*schema.ForeignKey{{Column: "orderId", RefTable: "Orders"}},
		},
		{
			Name: "Orders",
			Columns: []*schema.Column{
				{Name: "id", DataType: "bigint", IsPK: true, IsAutoInc: true},
				{Name: "reference", DataType: "varchar", Length: 32, IsUnique: true},
				{Name: "note", DataType: "text", IsNullable: true},
			},
		},
	}, nil)
	require.NoError(t, err)
	return tables
}

func TestCreateScript_Postgres(t *testing.T) {
	s, err := naming.Lookup("improved")
	require.NoError(t, err)
	g := ddl.New(dialect.GetDialect("postgres"), s)

	script := g.CreateScript(sampleTables(t))

	assert.Equal(t, []string{
		"create table orders (id bigint generated by default as identity not null, reference varchar(32) not null unique, note text, primary key (id))",
		"create table order_line (id bigint generated by default as identity not null, order_id bigint not null, quantity integer default 0 not null, primary key (id))",
		"alter table order_line add constraint fk_order_line_order_id foreign key (order_id) references orders (id)",
	}, script)
}

func TestDropScript(t *testing.T) {
	tables := sampleTables(t)

	pg := ddl.New(dialect.GetDialect("postgres"), nil)
	assert.Equal(t, []string{
		"drop table if exists OrderLine cascade",
		"drop table if exists Orders cascade",
	}, pg.DropScript(tables))

	my := ddl.New(dialect.GetDialect("mysql"), nil)
	assert.Equal(t, []string{
		"alter table OrderLine drop foreign key fk_OrderLine_orderId",
		"drop table if exists OrderLine",
		"drop table if exists Orders",
	}, my.DropScript(tables))
}

func TestCreateScript_SQLiteRunsAgainstDatabase(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "ddl.db"))
	require.NoError(t, err)
	defer db.Close()

	g := ddl.New(dialect.GetDialect("sqlite"), nil)
	tables := sampleTables(t)

	create := g.CreateScript(tables)
	require.Len(t, create, 2, "foreign keys are inlined for sqlite")
	assert.Equal(t,
		"create table OrderLine (id integer primary key autoincrement, orderId bigint not null, quantity integer default 0 not null, constraint fk_OrderLine_orderId foreign key (orderId) references Orders (id))",
		create[1])

	for _, stmt := range append(g.DropScript(tables), create...) {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	analyzed, err := schema.Analyze(db, dialect.GetDialect("sqlite"), "", nil)
	require.NoError(t, err)
	require.Len(t, analyzed, 2)
	assert.Equal(t, "Orders", analyzed[0].Name)
	assert.Equal(t, "OrderLine", analyzed[1].Name)
}
