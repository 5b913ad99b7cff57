package pricingsvc

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Simplici0/alu.works/internal/pricing"
)

// Fallback prefers a remote calculator and transparently recomputes locally
// when the remote one fails. Its methods never return errors; the Source
// tells the caller which side produced the value.
type Fallback struct {
	remote Calculator
	local  *Local
	logger zerolog.Logger
	parity bool
}

// FallbackOption configures a Fallback.
type FallbackOption func(*Fallback)

// WithFallbackLogger sets the logger used for fallback warnings.
func WithFallbackLogger(logger zerolog.Logger) FallbackOption {
	return func(f *Fallback) { f.logger = logger }
}

// WithParityCheck also computes every remote result locally and logs any
// difference above one cent.
func WithParityCheck() FallbackOption {
	return func(f *Fallback) { f.parity = true }
}

// NewFallback returns a calculator that tries remote first. A nil remote
// always computes locally.
func NewFallback(remote Calculator, local *Local, opts ...FallbackOption) *Fallback {
	f := &Fallback{remote: remote, local: local, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Item prices one line item.
func (f *Fallback) Item(ctx context.Context, item pricing.LineItem) (pricing.Breakdown, Source) {
	localItem := func() pricing.Breakdown {
		b, _ := f.local.CalculateItem(ctx, item)
		return b
	}
	if f.remote == nil || !item.HasGeometry() {
		return localItem(), SourceLocal
	}

	b, err := f.remote.CalculateItem(ctx, item)
	if err != nil {
		f.warn(err, PathItem)
		return localItem(), SourceLocal
	}
	if f.parity {
		if want := localItem(); !b.EqualCents(want) {
			f.mismatch(PathItem, b.BaseTotal, want.BaseTotal)
		}
	}
	return b, SourceRemote
}

// Items prices every line item, sending them to the remote calculator
// concurrently. If any remote call fails the whole batch is recomputed
// locally so the result never mixes sources.
func (f *Fallback) Items(ctx context.Context, items []pricing.LineItem) ([]pricing.Breakdown, Source) {
	localItems := func() []pricing.Breakdown {
		out, _ := PriceItems(ctx, f.local, items)
		return out
	}
	if f.remote == nil {
		return localItems(), SourceLocal
	}

	out, err := PriceItems(ctx, f.remote, items)
	if err != nil {
		f.warn(err, PathItem)
		return localItems(), SourceLocal
	}
	if f.parity {
		want := localItems()
		for i := range out {
			if !out[i].EqualCents(want[i]) {
				f.mismatch(PathItem, out[i].BaseTotal, want[i].BaseTotal)
			}
		}
	}
	return out, SourceRemote
}

// Totals computes the quote roll-up.
func (f *Fallback) Totals(ctx context.Context, items []pricing.LineItem, costs pricing.AdditionalCosts) (pricing.QuoteTotals, Source) {
	localTotals := func() pricing.QuoteTotals {
		t, _ := f.local.CalculateQuoteTotals(ctx, items, costs)
		return t
	}
	if f.remote == nil {
		return localTotals(), SourceLocal
	}

	t, err := f.remote.CalculateQuoteTotals(ctx, items, costs)
	if err != nil {
		f.warn(err, PathTotals)
		return localTotals(), SourceLocal
	}
	if f.parity {
		if want := localTotals(); !t.EqualCents(want) {
			f.mismatch(PathTotals, t.GrandTotal, want.GrandTotal)
		}
	}
	return t, SourceRemote
}

// TypeMetrics computes the roll-up of one system family.
func (f *Fallback) TypeMetrics(ctx context.Context, items []pricing.LineItem, systemType pricing.SystemType, costs pricing.AdditionalCosts) (pricing.TypeMetrics, Source) {
	localMetrics := func() pricing.TypeMetrics {
		m, _ := f.local.CalculateTypeMetrics(ctx, items, systemType, costs)
		return m
	}
	if f.remote == nil {
		return localMetrics(), SourceLocal
	}

	m, err := f.remote.CalculateTypeMetrics(ctx, items, systemType, costs)
	if err != nil {
		f.warn(err, PathTypeMetrics)
		return localMetrics(), SourceLocal
	}
	if f.parity {
		if want := localMetrics(); !pricing.EqualCents(m.FinalTotal, want.FinalTotal) {
			f.mismatch(PathTypeMetrics, m.FinalTotal, want.FinalTotal)
		}
	}
	return m, SourceRemote
}

// Quote evaluates the whole quote.
func (f *Fallback) Quote(ctx context.Context, items []pricing.LineItem, costs pricing.AdditionalCosts) (pricing.PricedQuote, Source) {
	localQuote := func() pricing.PricedQuote {
		q, _ := f.local.CalculateQuote(ctx, items, costs)
		return q
	}
	if f.remote == nil {
		return localQuote(), SourceLocal
	}

	q, err := f.remote.CalculateQuote(ctx, items, costs)
	if err != nil {
		f.warn(err, PathQuote)
		return localQuote(), SourceLocal
	}
	if f.parity {
		if want := localQuote(); !q.Totals.EqualCents(want.Totals) {
			f.mismatch(PathQuote, q.Totals.GrandTotal, want.Totals.GrandTotal)
		}
	}
	return q, SourceRemote
}

func (f *Fallback) warn(err error, path string) {
	f.logger.Warn().Err(err).Str("path", path).Msg("pricing service failed, using local calculation")
}

func (f *Fallback) mismatch(path string, remote, local float64) {
	f.logger.Warn().
		Str("path", path).
		Float64("remote", remote).
		Float64("local", local).
		Msg("pricing parity mismatch")
}
