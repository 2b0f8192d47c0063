// Package store implements the expense store: the ordered record list, the
// active filter and edit selection, and persistence through a kv.Store.
package store

import (
	"context"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/kv"
	"expensetracker/internal/log"
)

// DefaultKey is the key the record blob is persisted under.
const DefaultKey = "expenses"

// Op identifies the mutation reported in a Change.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes one successful mutation. Version is the store version
// after the mutation was applied.
type Change struct {
	Op      Op
	ID      int64
	Version uint64
	At      time.Time
}

// Observer is called after every successful mutation, once the new state
// has been persisted. Observers run synchronously on the mutating goroutine
// and must not call back into mutating store methods.
type Observer func(ctx context.Context, c Change)

// Snapshot is a consistent view of the store for one render.
type Snapshot struct {
	Records        []core.Expense
	Filter         core.Filter
	Filtered       []core.Expense
	Summary        core.Summary
	Editing        *core.Expense
	EditingEnabled bool
	Version        uint64
}

type Store struct {
	mu sync.Mutex

	kv     kv.Store
	key    string
	logger *log.Logger
	clock  func() time.Time
	ids    idSource

	records        []core.Expense
	filter         core.Filter
	editID         int64
	editing        bool
	editingEnabled bool
	version        uint64

	observers map[int]Observer
	nextObs   int
}

type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStore)
		}
	}
}

// WithClock replaces time.Now for id generation and change timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithoutEditing configures the add/delete-only variant.
func WithoutEditing() Option {
	return func(s *Store) { s.editingEnabled = false }
}

// Open builds a store from whatever is persisted under the store key.
// Missing or unreadable data yields an empty store; Open never fails.
func Open(ctx context.Context, backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:             backend,
		key:            DefaultKey,
		logger:         log.OrDefault(nil).WithComponent(log.ComponentStore),
		clock:          time.Now,
		filter:         core.FilterAll,
		editingEnabled: true,
		observers:      make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ids.now = s.clock
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	blob, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load expenses, starting empty",
			log.FieldKey, s.key, log.FieldOperation, log.OpLoad, log.FieldError, err)
		return
	}
	if !ok {
		s.logger.DebugContext(ctx, "No persisted expenses", log.FieldKey, s.key)
		return
	}

	records, dropped, err := Decode(blob)
	if err != nil {
		s.logger.WarnContext(ctx, "Persisted expenses are unreadable, starting empty",
			log.FieldKey, s.key, log.FieldOperation, log.OpLoad, log.FieldError, err)
		return
	}
	for _, d := range dropped {
		s.logger.WarnContext(ctx, "Dropped invalid persisted expense",
			log.FieldKey, s.key, log.FieldError, d)
	}
	for _, e := range records {
		s.ids.observe(e.ID)
	}
	s.records = records
	s.logger.InfoContext(ctx, "Loaded expenses", log.FieldKey, s.key, log.FieldCount, len(records))
}

// persist writes the full record list. Failures are logged and the
// in-memory state is kept. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	blob, err := Encode(s.records)
	if err != nil {
		s.logger.Failure(ctx, "Failed to encode expenses", log.OpSave, err)
		return
	}
	if err := s.kv.Set(ctx, s.key, blob); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist expenses",
			log.FieldKey, s.key, log.FieldOperation, log.OpSave, log.FieldError, err)
	}
}

// commit bumps the version, persists and returns the change to announce
// together with the observers to announce it to. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, op Op, id int64) (Change, []Observer) {
	s.version++
	s.persist(ctx)
	c := Change{Op: op, ID: id, Version: s.version, At: s.clock()}
	obs := make([]Observer, 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if o, ok := s.observers[i]; ok {
			obs = append(obs, o)
		}
	}
	return c, obs
}

func notify(ctx context.Context, c Change, obs []Observer) {
	for _, o := range obs {
		o(ctx, c)
	}
}

// Add validates d and appends a new record with a fresh id.
func (s *Store) Add(ctx context.Context, d core.Draft) (core.Expense, error) {
	d, err := core.NewDraft(d.Title, d.Amount, d.Category)
	if err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	e := core.Expense{ID: s.ids.next(), Title: d.Title, Amount: d.Amount, Category: d.Category}
	s.records = append(s.records, e)
	c, obs := s.commit(ctx, OpAdd, e.ID)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Expense added",
		log.NewFields().WithExpense(e.ID, e.Title, e.Amount.Cents, e.Category.String()).ToSlice()...)
	notify(ctx, c, obs)
	return e, nil
}

// Update replaces the fields of record id in place and clears the edit
// selection. An unknown id returns core.ErrNotFound and changes nothing.
func (s *Store) Update(ctx context.Context, id int64, d core.Draft) (core.Expense, error) {
	if !s.editingEnabled {
		return core.Expense{}, core.ErrEditingDisabled
	}
	d, err := core.NewDraft(d.Title, d.Amount, d.Category)
	if err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Expense{}, core.ErrNotFound
	}
	s.records[i].Title = d.Title
	s.records[i].Amount = d.Amount
	s.records[i].Category = d.Category
	e := s.records[i]
	s.editing = false
	s.editID = 0
	c, obs := s.commit(ctx, OpUpdate, id)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Expense updated",
		log.NewFields().WithExpense(e.ID, e.Title, e.Amount.Cents, e.Category.String()).ToSlice()...)
	notify(ctx, c, obs)
	return e, nil
}

// Delete removes record id. It reports false, and does nothing else, when
// no such record exists.
func (s *Store) Delete(ctx context.Context, id int64) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	if s.editing && s.editID == id {
		s.editing = false
		s.editID = 0
	}
	c, obs := s.commit(ctx, OpDelete, id)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Expense deleted", log.FieldExpenseID, id)
	notify(ctx, c, obs)
	return true
}

// BeginEdit selects record id for editing and returns its current values.
func (s *Store) BeginEdit(id int64) (core.Expense, error) {
	if !s.editingEnabled {
		return core.Expense{}, core.ErrEditingDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Expense{}, core.ErrNotFound
	}
	s.editing = true
	s.editID = id
	return s.records[i], nil
}

// CancelEdit clears the edit selection.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	s.editing = false
	s.editID = 0
	s.mu.Unlock()
}

// Submit updates the record being edited, or adds d when nothing is.
func (s *Store) Submit(ctx context.Context, d core.Draft) (core.Expense, Op, error) {
	if id, ok := s.EditTarget(); ok {
		e, err := s.Update(ctx, id, d)
		return e, OpUpdate, err
	}
	e, err := s.Add(ctx, d)
	return e, OpAdd, err
}

func (s *Store) SetFilter(f core.Filter) error {
	if !f.Valid() {
		return core.ErrInvalidFilter
	}
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	return nil
}

func (s *Store) Filter() core.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Filtered returns the records passing the active filter.
func (s *Store) Filtered() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.FilterExpenses(s.records, s.filter)
}

// FilteredBy returns the records passing f without touching the active
// filter.
func (s *Store) FilteredBy(f core.Filter) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.FilterExpenses(s.records, f)
}

// Total sums every record regardless of the active filter.
func (s *Store) Total() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Total(s.records)
}

func (s *Store) CategoryTotals() []core.CategoryTotal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.CategoryTotals(s.records)
}

// Records returns a copy of all records in insertion order.
func (s *Store) Records() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.records...)
}

func (s *Store) Get(id int64) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.records[i], true
	}
	return core.Expense{}, false
}

func (s *Store) EditTarget() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editID, s.editing
}

func (s *Store) EditingEnabled() bool {
	return s.editingEnabled
}

// Version increases by one with every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Records:        append([]core.Expense(nil), s.records...),
		Filter:         s.filter,
		Filtered:       core.FilterExpenses(s.records, s.filter),
		Summary:        core.Summarize(s.records),
		EditingEnabled: s.editingEnabled,
		Version:        s.version,
	}
	if s.editing {
		if i := s.indexOf(s.editID); i >= 0 {
			e := s.records[i]
			snap.Editing = &e
		}
	}
	return snap
}

// Subscribe registers o and returns a func that removes it.
func (s *Store) Subscribe(o Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) indexOf(id int64) int {
	for i, e := range s.records {
		if e.ID == id {
			return i
		}
	}
	return -1
}
