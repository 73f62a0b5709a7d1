package format_test

import (
	"bytes"
	"strings"
	"testing"

	"schema-export/internal/format"

	"github.com/stretchr/testify/assert"
)

func TestNone(t *testing.T) {
	sql := "create table foo (id integer not null)"
	assert.Equal(t, sql, format.None.Format(sql))
	assert.Equal(t, format.None, format.ForStyle(false))
}

func TestDDL_CreateTable(t *testing.T) {
	got := format.ForStyle(true).Format("create table foo (id integer not null, name varchar(255), primary key (id))")
	want := "\n    create table foo (\n" +
		"        id integer not null,\n" +
		"        name varchar(255),\n" +
		"        primary key (id)\n" +
		"    )"
	assert.Equal(t, want, got)
}

func TestDDL_CreateTableKeepsQuotedCommas(t *testing.T) {
	got := format.DDL.Format("create table t (flag char(1) default 'a,b' not null, id int)")
	assert.Contains(t, got, "default 'a,b' not null,")
	assert.Equal(t, 1, strings.Count(got, ",\n"), "only the column separator breaks: %q", got)
}

func TestDDL_AlterTable(t *testing.T) {
	got := format.DDL.Format("alter table order_line add constraint fk_line_order foreign key (order_id) references orders (id)")
	want := "\n    alter table order_line \n" +
		"        add constraint fk_line_order \n" +
		"        foreign key (order_id) \n" +
		"        references orders (id)"
	assert.Equal(t, want, got)
}

func TestDDL_CommentOn(t *testing.T) {
	got := format.DDL.Format("comment on table users is 'people who log in'")
	assert.Equal(t, "\n    comment on table users is\n        'people who log in'", got)
}

func TestDDL_Other(t *testing.T) {
	assert.Equal(t, "\n    drop table if exists users", format.DDL.Format("drop table if exists users"))
	assert.Equal(t, "", format.DDL.Format(""))
}

func TestHighlighter(t *testing.T) {
	h := format.NewHighlighter("monokai")
	out := h.Highlight("select 1")
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "select")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, format.IsTerminal(&bytes.Buffer{}))
}
