package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"
	"traveltrust/shared/repository"
	"traveltrust/shared/timezone"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Msg is the envelope of a state-changing call: the sender, the component
// receiving it and the native value attached to it.
type Msg struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// Receipt describes a committed operation.
type Receipt struct {
	TxID      string         `json:"tx_id"`
	From      common.Address `json:"from"`
	To        common.Address `json:"to"`
	Value     *big.Int       `json:"value"`
	Timestamp time.Time      `json:"timestamp"`
	Events    []Event        `json:"events"`
	Transfers []Transfer     `json:"transfers"`
}

// Receiver is invoked when value lands on an address inside an operation.
// Returning an error aborts the whole operation.
type Receiver func(tx *Tx, amount *big.Int) error

// Runtime applies operations one at a time. Each operation either commits all
// of its balance and state changes or none of them. With storage attached an
// operation only commits once its rows are written.
type Runtime struct {
	mu sync.RWMutex

	balances  map[common.Address]*big.Int
	contracts map[common.Address]any
	receivers map[common.Address]Receiver
	dispatch  *dispatcher
	nowFn     func() time.Time

	storage        Storage
	version        uint64
	stale          bool
	shared         bool
	persistTimeout time.Duration
	loaders        []repository.Loader
	slots          map[slotKey]*common.Address
}

func NewRuntime() *Runtime {
	return &Runtime{
		balances:       map[common.Address]*big.Int{},
		contracts:      map[common.Address]any{},
		receivers:      map[common.Address]Receiver{},
		dispatch:       newDispatcher(),
		nowFn:          timezone.Now,
		persistTimeout: defaultPersistTimeout,
		slots:          map[slotKey]*common.Address{},
	}
}

// SetNowFunc overrides the clock used to timestamp operations. Passing nil
// restores the application clock.
func (r *Runtime) SetNowFunc(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now == nil {
		r.nowFn = timezone.Now

		return
	}

	r.nowFn = now
}

// Subscribe registers an emitter notified after every committed operation.
func (r *Runtime) Subscribe(emitter Emitter) {
	if emitter == nil {
		return
	}

	r.dispatch.subscribe(emitter)
}

// SetEmitTimeout bounds how long a single emitter may take per receipt.
func (r *Runtime) SetEmitTimeout(timeout time.Duration) {
	r.dispatch.setTimeout(timeout)
}

// Flush waits until emitters have seen every committed operation.
func (r *Runtime) Flush() {
	r.dispatch.flush()
}

// Close stops accepting receipts for emitters once the queued ones are
// delivered or ctx ends.
func (r *Runtime) Close(ctx context.Context) error {
	return r.dispatch.close(ctx)
}

// Deploy binds a component to an address so other components can call it.
func (r *Runtime) Deploy(addr common.Address, contract any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contracts[addr]; exists {
		return ErrAddressInUse
	}

	r.contracts[addr] = contract

	log.Info().Str("address", addr.Hex()).Msg("Component deployed")

	return nil
}

// SetReceiver installs a hook run whenever addr receives a transfer. A nil
// receiver removes the hook.
func (r *Runtime) SetReceiver(addr common.Address, receiver Receiver) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if receiver == nil {
		delete(r.receivers, addr)

		return
	}

	r.receivers[addr] = receiver
}

// IsComponent reports whether a component is deployed at addr.
func (r *Runtime) IsComponent(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.contracts[addr]

	return ok
}

// BalanceOf returns the spendable balance of addr.
func (r *Runtime) BalanceOf(addr common.Address) *big.Int {
	r.syncForRead()

	r.mu.RLock()
	defer r.mu.RUnlock()

	return new(big.Int).Set(r.balance(addr))
}

// View runs fn while no operation is in flight.
func (r *Runtime) View(fn func()) {
	r.syncForRead()

	r.mu.RLock()
	defer r.mu.RUnlock()

	fn()
}

// Fund credits amount to addr from outside the system, e.g. a settled card
// payment or an on-ramp deposit.
func (r *Runtime) Fund(ctx context.Context, addr common.Address, amount *big.Int) (*Receipt, error) {
	return r.Execute(ctx, Msg{To: addr}, func(tx *Tx) error {
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}

		tx.setBalance(addr, new(big.Int).Add(r.balance(addr), amount))
		tx.Emit(NewDepositedEvent(addr, amount))

		return nil
	})
}

// Execute applies fn as a single operation. msg.Value moves from msg.From into
// the custody of msg.To before fn runs. When fn fails every change is undone
// and the error is returned unchanged.
func (r *Runtime) Execute(ctx context.Context, msg Msg, fn func(tx *Tx) error) (*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	receipt, err := r.executeLocked(ctx, msg, fn)
	if err != nil {
		return nil, err
	}

	// Queued under mu so emitters see commit order.
	r.dispatch.push(ctx, receipt)

	return receipt, nil
}

func (r *Runtime) executeLocked(ctx context.Context, msg Msg, fn func(tx *Tx) error) (*Receipt, error) {
	if r.shared || r.stale {
		if err := r.loadLocked(ctx); err != nil {
			return nil, err
		}
	}

	for attempt := 0; ; attempt++ {
		tx, err := r.apply(ctx, msg, fn)
		if err != nil {
			return nil, err
		}

		err = r.commitLocked(ctx, tx)
		if err == nil {
			return tx.receipt, nil
		}

		if !isStale(err) {
			return nil, fmt.Errorf("failed to persist operation: %w", err)
		}

		if attempt > 0 {
			return nil, ErrLedgerConflict
		}

		log.Ctx(ctx).Info().Uint64("version", r.version).Msg("Ledger moved, reloading before retry")

		if err := r.loadLocked(ctx); err != nil {
			return nil, err
		}
	}
}

func (r *Runtime) loadLocked(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.persistTimeout)
	defer cancel()

	return r.syncLocked(ctx)
}

func (r *Runtime) syncForRead() {
	r.mu.RLock()
	shared := r.shared && r.storage != nil
	r.mu.RUnlock()

	if !shared {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadLocked(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Serving reads from the last loaded ledger")
	}
}

func (r *Runtime) apply(ctx context.Context, msg Msg, fn func(tx *Tx) error) (_ *Tx, err error) {
	value := new(big.Int)
	if msg.Value != nil {
		value.Set(msg.Value)
	}

	if value.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	tx := &Tx{
		ctx:     ctx,
		rt:      r,
		journal: &journal{},
		sender:  msg.From,
		self:    msg.To,
		value:   value,
		now:     r.nowFn(),
	}
	tx.receipt = &Receipt{
		TxID:      uuid.New().String(),
		From:      msg.From,
		To:        msg.To,
		Value:     new(big.Int).Set(value),
		Timestamp: tx.now,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.journal.revert()
			panic(p)
		}

		if err != nil {
			tx.journal.revert()
		}
	}()

	if value.Sign() > 0 {
		if err = tx.move(msg.From, msg.To, value); err != nil {
			return nil, err
		}
	}

	if err = fn(tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (r *Runtime) balance(addr common.Address) *big.Int {
	if bal, ok := r.balances[addr]; ok {
		return bal
	}

	return new(big.Int)
}
