package export_test

import (
	"context"
	"errors"
	"strings"

	"schema-export/internal/export"
)

var errBoom = errors.New("boom")

// fakeConnector records everything the exporter does with it.
type fakeConnector struct {
	connectErr error
	releaseErr error
	session    *fakeSession

	connected bool
	released  bool
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{session: &fakeSession{fail: map[string]error{}}}
}

func (c *fakeConnector) Connect(context.Context) (export.Session, error) {
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	c.connected = true
	return c.session, nil
}

func (c *fakeConnector) Release() error {
	c.released = true
	return c.releaseErr
}

type fakeSession struct {
	fail        map[string]error
	warnings    []string
	warningsErr error
	closeErr    error

	executed []string
	closed   bool
}

func (s *fakeSession) Exec(_ context.Context, sql string) error {
	s.executed = append(s.executed, sql)
	for frag, err := range s.fail {
		if strings.Contains(sql, frag) {
			return err
		}
	}
	return nil
}

func (s *fakeSession) Warnings(context.Context) ([]string, error) {
	if s.warningsErr != nil {
		return nil, s.warningsErr
	}
	w := s.warnings
	s.warnings = nil
	return w, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return s.closeErr
}
