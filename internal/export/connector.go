package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/lib/pq"

	"schema-export/internal/dialect"
)

// Connector hands out the single Session used by one export run.
type Connector interface {
	Connect(ctx context.Context) (Session, error)
	// Release is called once after the session is closed.
	Release() error
}

// Session executes statements on one database connection.
type Session interface {
	Exec(ctx context.Context, sql string) error
	// Warnings returns and clears the warnings raised by the last statement.
	Warnings(ctx context.Context) ([]string, error)
	Close() error
}

// SuppliedConnector uses a pool owned by the caller. Release leaves the pool
// open.
type SuppliedConnector struct {
	db      *sql.DB
	dialect dialect.Dialect
}

func NewSuppliedConnector(db *sql.DB, d dialect.Dialect) *SuppliedConnector {
	return &SuppliedConnector{db: db, dialect: d}
}

func (c *SuppliedConnector) Connect(ctx context.Context) (Session, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return &sqlSession{conn: conn, warningsQuery: c.dialect.WarningsQuery()}, nil
}

func (c *SuppliedConnector) Release() error { return nil }

// ManagedConnector opens its own pool from a driver name and DSN and closes
// it on Release.
type ManagedConnector struct {
	driver  string
	dsn     string
	dialect dialect.Dialect

	db      *sql.DB
	notices *noticeBuffer
}

func NewManagedConnector(driver, dsn string, d dialect.Dialect) *ManagedConnector {
	return &ManagedConnector{driver: driver, dsn: dsn, dialect: d}
}

func (c *ManagedConnector) Connect(ctx context.Context) (Session, error) {
	db, notices, err := c.open()
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	c.db, c.notices = db, notices
	return &sqlSession{conn: conn, warningsQuery: c.dialect.WarningsQuery(), notices: notices}, nil
}

// open builds the pool. PostgreSQL through lib/pq gets a notice handler so
// server notices can be reported as warnings.
func (c *ManagedConnector) open() (*sql.DB, *noticeBuffer, error) {
	if c.driver == "postgres" {
		base, err := pq.NewConnector(c.dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db: %w", err)
		}
		notices := &noticeBuffer{}
		return sql.OpenDB(pq.ConnectorWithNoticeHandler(base, notices.add)), notices, nil
	}
	db, err := sql.Open(c.driver, c.dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return db, nil, nil
}

func (c *ManagedConnector) Release() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

type noticeBuffer struct {
	mu       sync.Mutex
	messages []string
}

func (b *noticeBuffer) add(n *pq.Error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, fmt.Sprintf("%s: %s", n.Severity, n.Message))
}

func (b *noticeBuffer) drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.messages
	b.messages = nil
	return out
}

type sqlSession struct {
	conn          *sql.Conn
	warningsQuery string
	notices       *noticeBuffer
}

func (s *sqlSession) Exec(ctx context.Context, stmt string) error {
	_, err := s.conn.ExecContext(ctx, stmt)
	return err
}

func (s *sqlSession) Warnings(ctx context.Context) ([]string, error) {
	var warnings []string
	if s.notices != nil {
		warnings = append(warnings, s.notices.drain()...)
	}
	if s.warningsQuery == "" {
		return warnings, nil
	}

	rows, err := s.conn.QueryContext(ctx, s.warningsQuery)
	if err != nil {
		return warnings, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return warnings, err
	}
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return warnings, err
		}
		parts := make([]string, 0, len(vals))
		for _, v := range vals {
			if v.Valid {
				parts = append(parts, v.String)
			}
		}
		warnings = append(warnings, strings.Join(parts, " "))
	}
	return warnings, rows.Err()
}

func (s *sqlSession) Close() error {
	return s.conn.Close()
}
