package pricingsvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/Simplici0/alu.works/internal/pricing"
	"github.com/Simplici0/alu.works/internal/quote"
)

// DefaultDebounce is the quiet period before a recalculation is sent.
const DefaultDebounce = 300 * time.Millisecond

// Snapshot is the quote as it stood at one point in time. The header travels
// with the pricing input so a result is always shown with its own quote.
type Snapshot struct {
	quote.Quote
}

// Key identifies the snapshot content. Equal inputs give equal keys.
func (s Snapshot) Key() string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Result is a priced snapshot.
type Result struct {
	Key      string
	Snapshot Snapshot
	Quote    pricing.PricedQuote
	Source   Source
}

// ComputeFunc prices a snapshot.
type ComputeFunc func(ctx context.Context, s Snapshot) (pricing.PricedQuote, Source)

// Debouncer coalesces rapid edits into one recalculation and applies a
// result only if it belongs to the latest submitted input. Slow responses
// for older inputs are discarded.
type Debouncer struct {
	delay   time.Duration
	compute ComputeFunc
	apply   func(Result)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timer   *time.Timer
	latest  string
	stopped bool
}

// NewDebouncer returns a debouncer that prices with compute after delay and
// hands fresh results to apply. apply runs with the debouncer locked and must
// not call Submit.
func NewDebouncer(delay time.Duration, compute ComputeFunc, apply func(Result)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		delay:   delay,
		compute: compute,
		apply:   apply,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Submit records s as the latest input and restarts the quiet period.
func (d *Debouncer) Submit(s Snapshot) {
	key := s.Key()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.latest = key
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.run(s, key) })
}

func (d *Debouncer) run(s Snapshot, key string) {
	q, src := d.compute(d.ctx, s)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || key != d.latest {
		return
	}
	d.apply(Result{Key: key, Snapshot: s, Quote: q, Source: src})
}

// Stop cancels pending work. Results still in flight are dropped.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.cancel()
}
