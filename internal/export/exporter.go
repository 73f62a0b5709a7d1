// Package export runs generated drop and create scripts against a database,
// a script file and the console.
package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"schema-export/internal/format"
)

// DefaultImportFile is the import script the CLI looks for when none is set.
const DefaultImportFile = "import.sql"

// Config describes one exporter. Zero values are usable defaults except for
// Connector, which is required when exporting to a database.
type Config struct {
	DropSQL   []string
	CreateSQL []string

	// ExcludeTables is applied to both scripts once, in New.
	ExcludeTables []string

	Connector Connector

	OutputFile string
	// ImportFile is run after the create script. Empty means no import.
	ImportFile string

	// Format selects the DDL pretty printer. Formatter, when set, wins.
	Format    bool
	Formatter format.Formatter
	Delimiter string

	HaltOnError bool

	// Console receives echoed statements; os.Stdout when nil.
	Console     io.Writer
	Highlighter *format.Highlighter

	Logger *slog.Logger
	// Progress is called after every drop and create statement.
	Progress func()
}

// ExecuteOptions selects the outputs and phases of one run.
type ExecuteOptions struct {
	Script     bool // echo statements to the console
	Export     bool // execute statements against the database
	JustDrop   bool
	JustCreate bool
}

// Exporter is immutable after New apart from the exception list of the last
// run.
type Exporter struct {
	dropSQL     []string
	createSQL   []string
	connector   Connector
	outputFile  string
	importFile  string
	formatter   format.Formatter
	delimiter   string
	haltOnError bool
	console     io.Writer
	highlighter *format.Highlighter
	logger      *slog.Logger
	progress    func()

	exceptions []error
}

// New validates cfg and filters the scripts.
func New(cfg Config) (*Exporter, error) {
	if strings.ContainsAny(cfg.Delimiter, "\r\n") {
		return nil, fmt.Errorf("delimiter must not contain a line break")
	}

	e := &Exporter{
		connector:   cfg.Connector,
		outputFile:  cfg.OutputFile,
		importFile:  cfg.ImportFile,
		formatter:   cfg.Formatter,
		delimiter:   cfg.Delimiter,
		haltOnError: cfg.HaltOnError,
		console:     cfg.Console,
		highlighter: cfg.Highlighter,
		logger:      cfg.Logger,
		progress:    cfg.Progress,
	}
	if e.formatter == nil {
		e.formatter = format.ForStyle(cfg.Format)
	}
	if e.console == nil {
		e.console = os.Stdout
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	e.dropSQL = ExcludeTables(cfg.DropSQL, cfg.ExcludeTables, e.logger)
	e.createSQL = ExcludeTables(cfg.CreateSQL, cfg.ExcludeTables, e.logger)
	return e, nil
}

// DropSQL returns the filtered drop script.
func (e *Exporter) DropSQL() []string { return slices.Clone(e.dropSQL) }

// CreateSQL returns the filtered create script.
func (e *Exporter) CreateSQL() []string { return slices.Clone(e.createSQL) }

// Exceptions returns every error recorded by the last run, fatal or not.
func (e *Exporter) Exceptions() []error { return slices.Clone(e.exceptions) }

// Create recreates the schema: the drop script, then the create script
// and the import script.
func (e *Exporter) Create(ctx context.Context, script, export bool) error {
	return e.Execute(ctx, ExecuteOptions{Script: script, Export: export})
}

// Drop runs only the drop script.
func (e *Exporter) Drop(ctx context.Context, script, export bool) error {
	return e.Execute(ctx, ExecuteOptions{Script: script, Export: export, JustDrop: true})
}

// resources are acquired in prepare and always handed back in release.
type resources struct {
	importFile *os.File
	outputFile *os.File
	output     *bufio.Writer
	session    Session
	connected  bool
}

// Execute runs drop, create and import in that order. Statement failures
// are recorded and skipped, except that a create failure with HaltOnError
// set aborts the run. The returned error is the fatal one, if any; it is
// also part of Exceptions.
func (e *Exporter) Execute(ctx context.Context, opts ExecuteOptions) error {
	if opts.JustDrop && opts.JustCreate {
		return fmt.Errorf("drop-only and create-only are mutually exclusive")
	}

	e.logger.Info("running schema export")
	e.exceptions = nil

	r := &resources{}
	defer e.release(r)

	if err := e.prepare(ctx, opts, r); err != nil {
		return e.fail(err)
	}
	if !opts.JustCreate {
		if err := e.drop(ctx, opts, r); err != nil {
			return e.fail(err)
		}
	}
	if !opts.JustDrop {
		if err := e.create(ctx, opts, r); err != nil {
			return e.fail(err)
		}
		if opts.Export && r.importFile != nil {
			e.logger.Info("executing import script", "file", e.importFile)
			if err := runImportScript(ctx, r.importFile, r.session, e.logger); err != nil {
				return e.fail(err)
			}
		}
	}

	e.logger.Info("schema export complete")
	return nil
}

func (e *Exporter) fail(err error) error {
	e.exceptions = append(e.exceptions, err)
	e.logger.Error("schema export unsuccessful", "error", err)
	return err
}

func (e *Exporter) prepare(ctx context.Context, opts ExecuteOptions, r *resources) error {
	if e.importFile != "" {
		f, err := os.Open(e.importFile)
		if err != nil {
			e.logger.Info("import file not found", "file", e.importFile, "error", err)
		} else {
			r.importFile = f
		}
	}

	if e.outputFile != "" {
		e.logger.Info("writing generated schema to file", "file", e.outputFile)
		f, err := os.Create(e.outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		r.outputFile = f
		r.output = bufio.NewWriter(f)
	}

	if opts.Export {
		e.logger.Info("exporting generated schema to database")
		if e.connector == nil {
			return ErrNoConnector
		}
		session, err := e.connector.Connect(ctx)
		if err != nil {
			return err
		}
		r.connected = true
		r.session = session
	}
	return nil
}

func (e *Exporter) drop(ctx context.Context, opts ExecuteOptions, r *resources) error {
	for _, stmt := range e.dropSQL {
		fatal, err := e.executeStatement(ctx, opts, r, stmt)
		e.tick()
		if fatal != nil {
			return fatal
		}
		if err != nil {
			e.record(&ExecError{Phase: PhaseDrop, SQL: stmt, Err: err})
		}
	}
	return nil
}

func (e *Exporter) create(ctx context.Context, opts ExecuteOptions, r *resources) error {
	for _, stmt := range e.createSQL {
		fatal, err := e.executeStatement(ctx, opts, r, stmt)
		e.tick()
		if fatal != nil {
			return fatal
		}
		if err == nil {
			continue
		}
		execErr := &ExecError{Phase: PhaseCreate, SQL: stmt, Err: err}
		if e.haltOnError {
			return execErr
		}
		e.record(execErr)
	}
	return nil
}

func (e *Exporter) record(err *ExecError) {
	e.exceptions = append(e.exceptions, err)
	e.logger.Error("unsuccessful: "+err.SQL, "error", err.Err)
}

func (e *Exporter) tick() {
	if e.progress != nil {
		e.progress()
	}
}

// executeStatement writes and runs one statement. fatal is an I/O failure on
// the output file; stmtErr is the database error for this statement.
func (e *Exporter) executeStatement(ctx context.Context, opts ExecuteOptions, r *resources, stmt string) (fatal, stmtErr error) {
	formatted := e.formatter.Format(stmt) + e.delimiter

	if opts.Script {
		line := formatted
		if e.highlighter != nil {
			line = e.highlighter.Highlight(formatted)
		}
		fmt.Fprintln(e.console, line)
	}

	e.logger.Debug(formatted)
	if r.output != nil {
		if _, err := r.output.WriteString(formatted + "\n"); err != nil {
			return fmt.Errorf("failed to write output file: %w", err), nil
		}
	}

	if !opts.Export {
		return nil, nil
	}
	if err := r.session.Exec(ctx, stmt); err != nil {
		return nil, err
	}

	warnings, err := r.session.Warnings(ctx)
	if err != nil {
		e.logger.Warn("unable to log SQL warnings", "error", err)
		return nil, nil
	}
	for _, w := range warnings {
		e.logger.Warn("SQL warning", "warning", w, "sql", stmt)
	}
	return nil, nil
}

// release hands back everything prepare acquired. A failure is recorded and
// the remaining resources are still released.
func (e *Exporter) release(r *resources) {
	if r.session != nil {
		if err := r.session.Close(); err != nil {
			e.cleanupFailed("could not close connection", err)
		}
	}
	if r.connected {
		if err := e.connector.Release(); err != nil {
			e.cleanupFailed("could not release connection", err)
		}
	}
	if r.outputFile != nil {
		err := errors.Join(r.output.Flush(), r.outputFile.Close())
		if err != nil {
			e.cleanupFailed("error closing output file "+e.outputFile, err)
		}
	}
	if r.importFile != nil {
		if err := r.importFile.Close(); err != nil {
			e.cleanupFailed("error closing import file "+e.importFile, err)
		}
	}
}

func (e *Exporter) cleanupFailed(msg string, err error) {
	err = fmt.Errorf("%s: %w", msg, err)
	e.exceptions = append(e.exceptions, err)
	e.logger.Error(msg, "error", err)
}
