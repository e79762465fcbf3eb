package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"traveltrust/infras/otel"
	"traveltrust/infras/postgres"
	"traveltrust/shared/constant"
	"traveltrust/shared/logger"

	"github.com/jmoiron/sqlx"
)

const (
	queryLedgerVersion = "SELECT version FROM ledger_state WHERE id = 1"
	queryLedgerAdvance = "UPDATE ledger_state SET version = version + 1, updated_at = NOW() WHERE id = 1 AND version = $1"

	ledgerScopeName = constant.OtelRepositoryScopeName + ".ledger"
)

// ErrStaleVersion means another writer committed since the caller last
// loaded the ledger.
var ErrStaleVersion = errors.New("ledger version is stale")

// LedgerStore keeps the trust ledger in Postgres. Each committed operation
// is one database transaction that advances the ledger version.
type LedgerStore struct {
	db   *postgres.Connection
	otel otel.Otel
}

func NewLedgerStore(db *postgres.Connection, otl otel.Otel) *LedgerStore {
	return &LedgerStore{db: db, otel: otl}
}

func (s *LedgerStore) Version(ctx context.Context) (version uint64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelRepositoryScopeName, ledgerScopeName+".Version")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.db.Write.GetContext(ctx, &version, queryLedgerVersion); err != nil {
		return 0, fmt.Errorf("failed to read ledger version: %w", err)
	}

	return version, nil
}

// Commit writes rows and moves the ledger from version to version+1. It
// fails with ErrStaleVersion and writes nothing when the stored version
// differs.
func (s *LedgerStore) Commit(ctx context.Context, version uint64, rows []Row) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelRepositoryScopeName, ledgerScopeName+".Commit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		"ledger.version": version,
		"ledger.rows":    len(rows),
	})

	tx, err := s.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.ErrorWithStack(rbErr)
		}
	}()

	result, err := tx.ExecContext(ctx, queryLedgerAdvance, version)
	if err != nil {
		return fmt.Errorf("failed to advance ledger version: %w", err)
	}

	advanced, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to advance ledger version: %w", err)
	}

	if advanced == 0 {
		return ErrStaleVersion
	}

	for _, row := range rows {
		if _, err = sqlx.NamedExecContext(ctx, tx, UpsertQuery(row), row.Data); err != nil {
			return fmt.Errorf("failed to write %s %s: %w", row.Table, row.Key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}

	return nil
}

// Load runs fn against one consistent snapshot and returns its version.
func (s *LedgerStore) Load(ctx context.Context, fn func(src Source) error) (version uint64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelRepositoryScopeName, ledgerScopeName+".Load")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tx, err := s.db.Write.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return 0, fmt.Errorf("failed to begin ledger snapshot: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err = tx.GetContext(ctx, &version, queryLedgerVersion); err != nil {
		return 0, fmt.Errorf("failed to read ledger version: %w", err)
	}

	if err = fn(txSource{tx: tx}); err != nil {
		return 0, err
	}

	scope.SetAttribute("ledger.version", version)

	return version, nil
}

type txSource struct {
	tx *sqlx.Tx
}

func (s txSource) SelectAll(ctx context.Context, table string, dest any) error {
	elem, err := sliceElem(dest)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(getColumns(elem), ", "), table)

	if err := s.tx.SelectContext(ctx, dest, query); err != nil {
		return fmt.Errorf("failed to read %s: %w", table, err)
	}

	return nil
}

// UpsertQuery inserts row or overwrites the non-key columns of the row with
// the same key.
func UpsertQuery(row Row) string {
	columns := getColumns(structType(row.Data))

	placeholders := make([]string, 0, len(columns))
	updates := make([]string, 0, len(columns))

	for _, col := range columns {
		placeholders = append(placeholders, ":"+col)

		if !slices.Contains(row.KeyColumns, col) {
			updates = append(updates, col+" = EXCLUDED."+col)
		}
	}

	action := "DO NOTHING"
	if len(updates) > 0 {
		action = "DO UPDATE SET " + strings.Join(updates, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		row.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), strings.Join(row.KeyColumns, ", "), action)
}

func structType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

var errNotSlicePointer = errors.New("destination must be a pointer to a slice of structs")

func sliceElem(dest any) (reflect.Type, error) {
	t := reflect.TypeOf(dest)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Slice || t.Elem().Elem().Kind() != reflect.Struct {
		return nil, errNotSlicePointer
	}

	return t.Elem().Elem(), nil
}
