package repository

import (
	"context"
	"database/sql"
	"time"
)

// Reverter records undo steps for in-memory mutations made during an operation.
type Reverter interface {
	OnRevert(undo func())
}

// Journal is a Reverter that also collects the rows an operation must leave
// in durable storage when it commits.
type Journal interface {
	Reverter
	Stage(row Row)
}

// Row is one durable record. Staging the same Table and Key twice in one
// operation keeps only the last Data.
type Row struct {
	Table      string
	KeyColumns []string
	Key        string
	// Data is a struct whose db tags name the table columns.
	Data any
}

// Source reads durable rows back when the ledger is restored.
type Source interface {
	// SelectAll fills dest, a pointer to a slice of db-tagged structs, with
	// every row of table in no particular order.
	SelectAll(ctx context.Context, table string, dest any) error
}

// Loader rebuilds in-memory state from a Source, replacing what it held.
type Loader interface {
	Load(ctx context.Context, src Source) error
}

// Untracked applies mutations without undo or storage, e.g. while loading.
var Untracked Journal = untracked{}

type untracked struct{}

func (untracked) OnRevert(func()) {}

func (untracked) Stage(Row) {}

// NullTime stores the zero time as NULL.
func NullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

// TimeOf maps NULL back to the zero time.
func TimeOf(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}

	return t.Time.UTC()
}
