// Package memory keeps the mirrored expense list in process. It backs
// tracker-worker --dry-run and the worker tests.
package memory

import (
	"context"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	items   []core.Expense
	mirrors int
	err     error
	logger  *log.Logger
}

var _ sheets.Mirror = (*Store)(nil)

func New(logger *log.Logger) *Store {
	return &Store{logger: log.OrDefault(logger).WithComponent(log.ComponentSheets)}
}

// Mirror replaces the held copy with records.
func (s *Store) Mirror(ctx context.Context, records []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.items = append([]core.Expense(nil), records...)
	s.mirrors++
	s.logger.InfoContext(ctx, "Mirrored expenses in memory",
		log.FieldCount, len(records),
		"total", core.Total(records).String())
	return nil
}

// Fail makes every following Mirror call return err. Nil clears it.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Records returns the last mirrored list.
func (s *Store) Records() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...)
}

// Mirrors counts successful Mirror calls.
func (s *Store) Mirrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mirrors
}
