package export

import (
	"errors"
	"fmt"
)

// ErrNoConnector is returned when a database export is requested without a
// Connector.
var ErrNoConnector = errors.New("no database connector configured")

// Phases reported by ExecError.
const (
	PhaseDrop   = "drop"
	PhaseCreate = "create"
)

// ExecError is a failed drop or create statement.
type ExecError struct {
	Phase string
	SQL   string
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("error during DDL export (%s) %q: %v", e.Phase, e.SQL, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// ImportError is a failed import script line. Line is 1-based.
type ImportError struct {
	Line int64
	SQL  string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("error during import script execution at line %d: %v", e.Line, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
