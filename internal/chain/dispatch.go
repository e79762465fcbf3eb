package chain

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultEmitTimeout = 10 * time.Second

type delivery struct {
	ctx     context.Context
	receipt *Receipt
}

// dispatcher hands committed receipts to emitters from a single goroutine,
// in the order they were pushed. Pushing never waits on an emitter.
type dispatcher struct {
	mu       sync.Mutex
	cond     *sync.Cond
	emitters []Emitter
	queue    []delivery
	timeout  time.Duration
	busy     bool
	running  bool
	closed   bool
	done     chan struct{}
}

func newDispatcher() *dispatcher {
	d := &dispatcher{timeout: defaultEmitTimeout}
	d.cond = sync.NewCond(&d.mu)

	return d
}

func (d *dispatcher) subscribe(emitter Emitter) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.emitters = append(d.emitters, emitter)

	if !d.running && !d.closed {
		d.running = true
		d.done = make(chan struct{})

		go d.run()
	}
}

func (d *dispatcher) setTimeout(timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timeout <= 0 {
		timeout = defaultEmitTimeout
	}

	d.timeout = timeout
}

func (d *dispatcher) push(ctx context.Context, receipt *Receipt) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.emitters) == 0 {
		return
	}

	if d.closed {
		log.Warn().Str("tx_id", receipt.TxID).Msg("Receipt dropped, dispatcher closed")

		return
	}

	d.queue = append(d.queue, delivery{ctx: context.WithoutCancel(ctx), receipt: receipt})
	d.cond.Broadcast()
}

func (d *dispatcher) run() {
	d.mu.Lock()

	for {
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}

		if len(d.queue) == 0 {
			d.running = false
			close(d.done)
			d.cond.Broadcast()
			d.mu.Unlock()

			return
		}

		next := d.queue[0]
		d.queue[0] = delivery{}
		d.queue = d.queue[1:]
		d.busy = true
		emitters := d.emitters
		timeout := d.timeout
		d.mu.Unlock()

		for _, emitter := range emitters {
			deliver(emitter, next, timeout)
		}

		d.mu.Lock()
		d.busy = false
		d.cond.Broadcast()
	}
}

func deliver(emitter Emitter, next delivery, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(next.ctx, timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("tx_id", next.receipt.TxID).Msg("Emitter panicked")
		}
	}()

	emitter.Emit(ctx, next.receipt)
}

// flush waits until every pushed receipt has been delivered.
func (d *dispatcher) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for d.running && (len(d.queue) > 0 || d.busy) {
		d.cond.Wait()
	}
}

// close delivers what is queued and stops the goroutine, giving up when ctx
// ends first.
func (d *dispatcher) close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	running, done := d.running, d.done
	d.cond.Broadcast()
	d.mu.Unlock()

	if !running {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
