package export_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"schema-export/internal/dialect"
	"schema-export/internal/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	dropScript = []string{
		"drop table if exists order_line",
		"drop table if exists orders",
	}
	createScript = []string{
		"create table orders (id integer primary key)",
		"create table order_line (id integer primary key, order_id integer references orders (id))",
		"create table audit (id integer primary key)",
	}
)

func newExporter(t *testing.T, cfg export.Config) *export.Exporter {
	t.Helper()
	if cfg.DropSQL == nil {
		cfg.DropSQL = dropScript
	}
	if cfg.CreateSQL == nil {
		cfg.CreateSQL = createScript
	}
	if cfg.Console == nil {
		cfg.Console = &bytes.Buffer{}
	}
	e, err := export.New(cfg)
	require.NoError(t, err)
	return e
}

func writeImport(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.sql")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestNew_RejectsMultilineDelimiter(t *testing.T) {
	_, err := export.New(export.Config{Delimiter: ";\n"})
	assert.Error(t, err)
}

func TestNew_AppliesExclusions(t *testing.T) {
	e := newExporter(t, export.Config{ExcludeTables: []string{"ORDER_LINE"}})

	assert.Equal(t, []string{"drop table if exists orders"}, e.DropSQL())
	assert.Equal(t, []string{
		"create table orders (id integer primary key)",
		"create table audit (id integer primary key)",
	}, e.CreateSQL())
}

func TestExecute_CreateErrorWithoutHaltContinues(t *testing.T) {
	c := newFakeConnector()
	c.session.fail["order_line (id"] = errBoom
	e := newExporter(t, export.Config{Connector: c})

	err := e.Execute(context.Background(), export.ExecuteOptions{Export: true})
	require.NoError(t, err)

	assert.Equal(t, append(append([]string{}, dropScript...), createScript...), c.session.executed)

	exceptions := e.Exceptions()
	require.Len(t, exceptions, 1)
	var execErr *export.ExecError
	require.ErrorAs(t, exceptions[0], &execErr)
	assert.Equal(t, export.PhaseCreate, execErr.Phase)
	assert.Equal(t, createScript[1], execErr.SQL)
	assert.ErrorIs(t, exceptions[0], errBoom)
}

func TestExecute_CreateErrorWithHaltAborts(t *testing.T) {
	c := newFakeConnector()
	c.session.fail["order_line (id"] = errBoom
	e := newExporter(t, export.Config{
		Connector:   c,
		HaltOnError: true,
		ImportFile:  writeImport(t, "insert into orders values (1);\n"),
	})

	err := e.Execute(context.Background(), export.ExecuteOptions{Export: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)

	var execErr *export.ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, createScript[1], execErr.SQL)

	assert.NotContains(t, c.session.executed, createScript[2])
	assert.NotContains(t, c.session.executed, "insert into orders values (1)")
	assert.Len(t, e.Exceptions(), 1)

	assert.True(t, c.session.closed)
	assert.True(t, c.released)
}

func TestExecute_DropErrorsNeverHalt(t *testing.T) {
	c := newFakeConnector()
	c.session.fail["drop table"] = errBoom
	e := newExporter(t, export.Config{Connector: c, HaltOnError: true})

	err := e.Execute(context.Background(), export.ExecuteOptions{Export: true})
	require.NoError(t, err)

	assert.Len(t, c.session.executed, len(dropScript)+len(createScript))
	exceptions := e.Exceptions()
	require.Len(t, exceptions, 2)
	for _, ex := range exceptions {
		var execErr *export.ExecError
		require.ErrorAs(t, ex, &execErr)
		assert.Equal(t, export.PhaseDrop, execErr.Phase)
	}
}

func TestExecute_ImportScript(t *testing.T) {
	c := newFakeConnector()
	path := writeImport(t, "-- comment\n\n  // other\n/* block */\nINSERT INTO t VALUES (1);\n  insert into t values (2)  \n;\n")
	e := newExporter(t, export.Config{Connector: c, ImportFile: path})

	err := e.Execute(context.Background(), export.ExecuteOptions{Export: true})
	require.NoError(t, err)

	n := len(dropScript) + len(createScript)
	assert.Equal(t, []string{"INSERT INTO t VALUES (1)", "insert into t values (2)"}, c.session.executed[n:])
	assert.Empty(t, e.Exceptions())
}

func TestExecute_ImportErrorIsFatal(t *testing.T) {
	c := newFakeConnector()
	c.session.fail["values (2)"] = errBoom
	path := writeImport(t, "-- data\ninsert into t values (1);\ninsert into t values (2);\ninsert into t values (3);\n")
	e := newExporter(t, export.Config{Connector: c, ImportFile: path})

	err := e.Execute(context.Background(), export.ExecuteOptions{Export: true})
	require.Error(t, err)

	var importErr *export.ImportError
	require.ErrorAs(t, err, &importErr)
	assert.EqualValues(t, 3, importErr.Line)
	assert.Equal(t, "insert into t values (2)", importErr.SQL)
	assert.ErrorIs(t, err, errBoom)
	assert.NotContains(t, c.session.executed, "insert into t values (3)")
	assert.True(t, c.session.closed)
}

func TestExecute_MissingImportFileIsSkipped(t *testing.T) {
	c := newFakeConnector()
	e := newExporter(t, export.Config{
		Connector:  c,
		ImportFile: filepath.Join(t.TempDir(), "missing.sql"),
	})

	require.NoError(t, e.Execute(context.Background(), export.ExecuteOptions{Export: true}))
	assert.Empty(t, e.Exceptions())
}

func TestExecute_ScriptAndOutputFile(t *testing.T) {
	var console bytes.Buffer
	out := filepath.Join(t.TempDir(), "schema.sql")
	e := newExporter(t, export.Config{
		Console:    &console,
		OutputFile: out,
		Delimiter:  ";",
	})

	err := e.Execute(context.Background(), export.ExecuteOptions{Script: true})
	require.NoError(t, err)

	want := "drop table if exists order_line;\n" +
		"drop table if exists orders;\n" +
		"create table orders (id integer primary key);\n" +
		"create table order_line (id integer primary key, order_id integer references orders (id));\n" +
		"create table audit (id integer primary key);\n"
	assert.Equal(t, want, console.String())

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want, string(written))
}

func TestExecute_JustDropAndJustCreate(t *testing.T) {
	c := newFakeConnector()
	e := newExporter(t, export.Config{Connector: c, ImportFile: writeImport(t, "insert into t values (1);")})

	require.NoError(t, e.Drop(context.Background(), false, true))
	assert.Equal(t, dropScript, c.session.executed)

	c.session.executed = nil
	require.NoError(t, e.Execute(context.Background(), export.ExecuteOptions{Export: true, JustCreate: true}))
	assert.Equal(t, append(append([]string{}, createScript...), "insert into t values (1)"), c.session.executed)

	c.session.executed = nil
	require.NoError(t, e.Create(context.Background(), false, true))
	want := append(append(append([]string{}, dropScript...), createScript...), "insert into t values (1)")
	assert.Equal(t, want, c.session.executed, "Create drops before creating")

	err := e.Execute(context.Background(), export.ExecuteOptions{JustDrop: true, JustCreate: true})
	assert.Error(t, err)
}

func TestExecute_NoConnector(t *testing.T) {
	e := newExporter(t, export.Config{})

	err := e.Execute(context.Background(), export.ExecuteOptions{Export: true})
	assert.ErrorIs(t, err, export.ErrNoConnector)
	assert.Len(t, e.Exceptions(), 1)
}

func TestExecute_ConnectFailureIsFatal(t *testing.T) {
	c := newFakeConnector()
	c.connectErr = errBoom
	e := newExporter(t, export.Config{Connector: c})

	err := e.Execute(context.Background(), export.ExecuteOptions{Export: true})
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, c.released, "release only follows a successful connect")
}

func TestExecute_ReleaseAlwaysRuns(t *testing.T) {
	c := newFakeConnector()
	c.session.fail["create table"] = errBoom
	c.session.closeErr = errors.New("close failed")
	c.releaseErr = errors.New("release failed")
	out := filepath.Join(t.TempDir(), "schema.sql")
	e := newExporter(t, export.Config{Connector: c, OutputFile: out, HaltOnError: true})

	err := e.Execute(context.Background(), export.ExecuteOptions{Export: true})
	require.Error(t, err)

	assert.True(t, c.session.closed)
	assert.True(t, c.released)

	written, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Contains(t, string(written), createScript[0], "output is flushed on failure")

	exceptions := e.Exceptions()
	require.Len(t, exceptions, 3)
	assert.ErrorIs(t, exceptions[0], errBoom)
	assert.ErrorContains(t, exceptions[1], "close failed")
	assert.ErrorContains(t, exceptions[2], "release failed")
}

func TestExecute_WarningsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	c := newFakeConnector()
	c.session.warnings = []string{"Note 1051 Unknown table 'order_line'"}
	e := newExporter(t, export.Config{
		Connector: c,
		Logger:    slog.New(slog.NewTextHandler(&logs, nil)),
	})

	require.NoError(t, e.Execute(context.Background(), export.ExecuteOptions{Export: true}))
	assert.Contains(t, logs.String(), "Unknown table")
	assert.Empty(t, e.Exceptions())
}

func TestExecute_WarningsReadFailureIsNotRecorded(t *testing.T) {
	var logs bytes.Buffer
	c := newFakeConnector()
	c.session.warningsErr = errors.New("warnings unavailable")
	e := newExporter(t, export.Config{
		Connector: c,
		Logger:    slog.New(slog.NewTextHandler(&logs, nil)),
	})

	require.NoError(t, e.Execute(context.Background(), export.ExecuteOptions{Export: true}))
	assert.Len(t, c.session.executed, len(dropScript)+len(createScript))
	assert.Empty(t, e.Exceptions())
	assert.Contains(t, logs.String(), "unable to log SQL warnings")
	assert.Contains(t, logs.String(), "warnings unavailable")
}

func TestExecute_ProgressAndExceptionsReset(t *testing.T) {
	c := newFakeConnector()
	c.session.fail["audit"] = errBoom
	ticks := 0
	e := newExporter(t, export.Config{Connector: c, Progress: func() { ticks++ }})

	require.NoError(t, e.Execute(context.Background(), export.ExecuteOptions{Export: true}))
	assert.Equal(t, len(dropScript)+len(createScript), ticks)
	assert.Len(t, e.Exceptions(), 1)

	delete(c.session.fail, "audit")
	require.NoError(t, e.Execute(context.Background(), export.ExecuteOptions{Export: true}))
	assert.Empty(t, e.Exceptions())
}

func TestExecute_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	defer db.Close()

	path := writeImport(t, "-- seed\ninsert into orders (id) values (1);\ninsert into order_line (id, order_id) values (10, 1);\n")
	e := newExporter(t, export.Config{
		Connector:  export.NewSuppliedConnector(db, dialect.GetDialect("sqlite")),
		ImportFile: path,
		Format:     true,
	})

	for range 2 {
		require.NoError(t, e.Execute(context.Background(), export.ExecuteOptions{Export: true}))
		assert.Empty(t, e.Exceptions())
	}

	var n int
	require.NoError(t, db.QueryRow("select count(*) from order_line where order_id = 1").Scan(&n))
	assert.Equal(t, 1, n)
}
