package repository

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// MemoryStore is a process-local ledger store with the same version rules
// as LedgerStore. Runtimes sharing one MemoryStore behave like instances
// sharing one database.
type MemoryStore struct {
	mu      sync.Mutex
	version uint64
	tables  map[string]map[string]any
	failErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]map[string]any)}
}

// FailNext makes the next Commit return err without writing anything.
func (s *MemoryStore) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failErr = err
}

func (s *MemoryStore) Version(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.version, nil
}

func (s *MemoryStore) Commit(_ context.Context, version uint64, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failErr; err != nil {
		s.failErr = nil

		return err
	}

	if version != s.version {
		return ErrStaleVersion
	}

	for _, row := range rows {
		table, ok := s.tables[row.Table]
		if !ok {
			table = make(map[string]any)
			s.tables[row.Table] = table
		}

		table[row.Key] = reflect.Indirect(reflect.ValueOf(row.Data)).Interface()
	}

	s.version++

	return nil
}

func (s *MemoryStore) Load(ctx context.Context, fn func(src Source) error) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(memorySource{tables: s.tables}); err != nil {
		return 0, err
	}

	return s.version, nil
}

// Rows returns the number of rows held for table.
func (s *MemoryStore) Rows(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tables[table])
}

type memorySource struct {
	tables map[string]map[string]any
}

func (s memorySource) SelectAll(_ context.Context, table string, dest any) error {
	elem, err := sliceElem(dest)
	if err != nil {
		return err
	}

	rows := s.tables[table]

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	out := reflect.MakeSlice(reflect.SliceOf(elem), 0, len(keys))

	for _, k := range keys {
		v := reflect.ValueOf(rows[k])
		if v.Type() != elem {
			return fmt.Errorf("failed to read %s: row %s is %s, not %s", table, k, v.Type(), elem)
		}

		out = reflect.Append(out, v)
	}

	reflect.ValueOf(dest).Elem().Set(out)

	return nil
}
