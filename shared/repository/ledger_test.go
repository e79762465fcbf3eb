package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
	"traveltrust/shared/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type balanceRow struct {
	Address string `db:"address"`
	Amount  string `db:"amount"`
}

type settingRow struct {
	Component string `db:"component"`
	Slot      string `db:"slot"`
}

func TestUpsertQuery(t *testing.T) {
	tests := []struct {
		name string
		row  repository.Row
		want string
	}{
		{
			name: "updates non-key columns",
			row:  repository.Row{Table: "balances", KeyColumns: []string{"address"}, Data: balanceRow{}},
			want: "INSERT INTO balances (address, amount) VALUES (:address, :amount) ON CONFLICT (address) DO UPDATE SET amount = EXCLUDED.amount",
		},
		{
			name: "pointer data",
			row:  repository.Row{Table: "balances", KeyColumns: []string{"address"}, Data: &balanceRow{}},
			want: "INSERT INTO balances (address, amount) VALUES (:address, :amount) ON CONFLICT (address) DO UPDATE SET amount = EXCLUDED.amount",
		},
		{
			name: "all columns are keys",
			row:  repository.Row{Table: "settings", KeyColumns: []string{"component", "slot"}, Data: settingRow{}},
			want: "INSERT INTO settings (component, slot) VALUES (:component, :slot) ON CONFLICT (component, slot) DO NOTHING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repository.UpsertQuery(tt.row))
		})
	}
}

func balance(address, amount string) repository.Row {
	return repository.Row{
		Table:      "balances",
		KeyColumns: []string{"address"},
		Key:        address,
		Data:       balanceRow{Address: address, Amount: amount},
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	require.NoError(t, store.Commit(ctx, 0, []repository.Row{balance("0xb", "5"), balance("0xa", "1")}))
	require.NoError(t, store.Commit(ctx, 1, []repository.Row{balance("0xa", "7")}))

	version, err := store.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)

	err = store.Commit(ctx, 1, []repository.Row{balance("0xc", "9")})
	require.ErrorIs(t, err, repository.ErrStaleVersion)
	assert.Equal(t, 2, store.Rows("balances"), "stale commits write nothing")

	var rows []balanceRow

	loaded, err := store.Load(ctx, func(src repository.Source) error {
		return src.SelectAll(ctx, "balances", &rows)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), loaded)
	assert.Equal(t, []balanceRow{{Address: "0xa", Amount: "7"}, {Address: "0xb", Amount: "5"}}, rows)
}

func TestMemoryStoreFailNext(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	boom := errors.New("connection reset")

	store.FailNext(boom)

	require.ErrorIs(t, store.Commit(ctx, 0, []repository.Row{balance("0xa", "1")}), boom)
	assert.Equal(t, 0, store.Rows("balances"))

	require.NoError(t, store.Commit(ctx, 0, []repository.Row{balance("0xa", "1")}))
	assert.Equal(t, 1, store.Rows("balances"))
}

func TestMemoryStoreSelectAllRejectsBadDestination(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Commit(ctx, 0, []repository.Row{balance("0xa", "1")}))

	tests := []struct {
		name string
		dest any
	}{
		{name: "not a pointer", dest: []balanceRow{}},
		{name: "wrong row type", dest: &[]settingRow{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Load(ctx, func(src repository.Source) error {
				return src.SelectAll(ctx, "balances", tt.dest)
			})
			require.Error(t, err)
		})
	}
}

func TestNullTime(t *testing.T) {
	assert.Equal(t, sql.NullTime{}, repository.NullTime(time.Time{}))

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, at, repository.TimeOf(repository.NullTime(at)))
	assert.True(t, repository.TimeOf(sql.NullTime{}).IsZero())
}
