package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"
	"traveltrust/shared/amount"
	"traveltrust/shared/repository"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

const (
	TableBalances = "balances"
	TableSettings = "component_settings"

	// SlotOwner names the owner slot of an Ownable component.
	SlotOwner = "owner"

	defaultPersistTimeout = 5 * time.Second
)

// Storage is the durable copy of the ledger. Every committed operation is
// written as one versioned batch of rows.
type Storage interface {
	Version(ctx context.Context) (uint64, error)
	// Commit must fail with repository.ErrStaleVersion when version is not
	// the current one.
	Commit(ctx context.Context, version uint64, rows []repository.Row) error
	Load(ctx context.Context, fn func(src repository.Source) error) (uint64, error)
}

type balanceRow struct {
	Address string `db:"address"`
	Amount  string `db:"amount"`
}

func balanceRecord(addr common.Address, value *big.Int) repository.Row {
	return repository.Row{
		Table:      TableBalances,
		KeyColumns: []string{"address"},
		Key:        addr.Hex(),
		Data:       balanceRow{Address: addr.Hex(), Amount: amount.Wei(value)},
	}
}

type settingRow struct {
	Component string `db:"component"`
	Slot      string `db:"slot"`
	Address   string `db:"address"`
}

func settingRecord(component common.Address, slot string, addr common.Address) repository.Row {
	return repository.Row{
		Table:      TableSettings,
		KeyColumns: []string{"component", "slot"},
		Key:        component.Hex() + "/" + slot,
		Data:       settingRow{Component: component.Hex(), Slot: slot, Address: addr.Hex()},
	}
}

type slotKey struct {
	component common.Address
	name      string
}

// UseStorage backs the runtime with s. The next operation or Restore loads
// the stored ledger first.
func (r *Runtime) UseStorage(s Storage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.storage = s
	r.stale = s != nil
}

// SetSharedStorage marks the storage as written by other processes too. Reads
// and operations then check the stored version first and reload when it
// moved.
func (r *Runtime) SetSharedStorage(shared bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.shared = shared
}

func (r *Runtime) SetPersistTimeout(timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}

	r.persistTimeout = timeout
}

// Track registers a repository rebuilt from storage on every reload.
func (r *Runtime) Track(loader repository.Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loaders = append(r.loaders, loader)
}

// BindSlot lets the address stored for component under name be restored into
// slot.
func (r *Runtime) BindSlot(component common.Address, name string, slot *common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slots[slotKey{component: component, name: name}] = slot
}

// Slot reads the address currently held in the slot bound for component
// under name.
func (r *Runtime) Slot(component common.Address, name string) (common.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slot, ok := r.slots[slotKey{component: component, name: name}]
	if !ok {
		return common.Address{}, false
	}

	return *slot, true
}

// Restore replaces the in-memory ledger with the stored one.
func (r *Runtime) Restore(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.storage == nil {
		return nil
	}

	return r.restoreLocked(ctx)
}

// Sync reloads the ledger when the stored version differs from the loaded one.
func (r *Runtime) Sync(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.syncLocked(ctx)
}

func (r *Runtime) syncLocked(ctx context.Context) error {
	if r.storage == nil {
		return nil
	}

	if !r.stale {
		version, err := r.storage.Version(ctx)
		if err != nil {
			return fmt.Errorf("failed to check ledger version: %w", err)
		}

		if version == r.version {
			return nil
		}
	}

	return r.restoreLocked(ctx)
}

func (r *Runtime) restoreLocked(ctx context.Context) error {
	balances := map[common.Address]*big.Int{}

	version, err := r.storage.Load(ctx, func(src repository.Source) error {
		var rows []balanceRow
		if err := src.SelectAll(ctx, TableBalances, &rows); err != nil {
			return err
		}

		for _, row := range rows {
			value, err := amount.ParseWei(row.Amount)
			if err != nil {
				return fmt.Errorf("balance of %s: %w", row.Address, err)
			}

			balances[common.HexToAddress(row.Address)] = value
		}

		var settings []settingRow
		if err := src.SelectAll(ctx, TableSettings, &settings); err != nil {
			return err
		}

		for _, row := range settings {
			slot, ok := r.slots[slotKey{component: common.HexToAddress(row.Component), name: row.Slot}]
			if !ok {
				log.Warn().Str("component", row.Component).Str("slot", row.Slot).Msg("Stored setting has no bound slot")

				continue
			}

			*slot = common.HexToAddress(row.Address)
		}

		for _, loader := range r.loaders {
			if err := loader.Load(ctx, src); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		r.stale = true

		return fmt.Errorf("failed to restore ledger: %w", err)
	}

	r.balances = balances
	r.version = version
	r.stale = false

	log.Info().Uint64("version", version).Int("accounts", len(balances)).Msg("Ledger restored")

	return nil
}

// commitLocked writes the rows of a successfully applied operation. On any
// failure the operation is undone and the runtime reloads before its next use.
func (r *Runtime) commitLocked(ctx context.Context, tx *Tx) error {
	if r.storage == nil || len(tx.journal.rows) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.persistTimeout)
	defer cancel()

	if err := r.storage.Commit(ctx, r.version, tx.journal.rows); err != nil {
		tx.journal.revert()
		r.stale = true

		return err
	}

	r.version++

	return nil
}

func isStale(err error) bool {
	return errors.Is(err, repository.ErrStaleVersion)
}
