// Package pricingsvc exposes quote pricing as a service. The same engine
// backs the HTTP endpoints and the local fallback, so a client always gets
// identical numbers whichever side computed them.
package pricingsvc

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/alu.works/internal/pricing"
)

var ErrServiceUnavailable = errors.New("pricing service unavailable")

// Source tells where a result was computed.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Calculator is the pricing service contract.
type Calculator interface {
	CalculateItem(ctx context.Context, item pricing.LineItem) (pricing.Breakdown, error)
	CalculateQuoteTotals(ctx context.Context, items []pricing.LineItem, costs pricing.AdditionalCosts) (pricing.QuoteTotals, error)
	CalculateTypeMetrics(ctx context.Context, items []pricing.LineItem, systemType pricing.SystemType, costs pricing.AdditionalCosts) (pricing.TypeMetrics, error)
	CalculateQuote(ctx context.Context, items []pricing.LineItem, costs pricing.AdditionalCosts) (pricing.PricedQuote, error)
}

// Request and response bodies shared by the HTTP server and Client.
type (
	ItemRequest struct {
		Item pricing.LineItem `json:"item"`
	}

	QuoteRequest struct {
		Items           []pricing.LineItem      `json:"items"`
		AdditionalCosts pricing.AdditionalCosts `json:"additionalCosts"`
	}

	TypeMetricsRequest struct {
		Items           []pricing.LineItem      `json:"items"`
		SystemType      pricing.SystemType      `json:"systemType"`
		AdditionalCosts pricing.AdditionalCosts `json:"additionalCosts"`
	}
)

// Local computes everything in process. It never returns an error.
type Local struct {
	engine *pricing.Engine
}

// NewLocal returns a calculator over engine.
func NewLocal(engine *pricing.Engine) *Local {
	return &Local{engine: engine}
}

func (l *Local) CalculateItem(_ context.Context, item pricing.LineItem) (pricing.Breakdown, error) {
	return l.engine.PriceItem(item), nil
}

func (l *Local) CalculateQuoteTotals(_ context.Context, items []pricing.LineItem, costs pricing.AdditionalCosts) (pricing.QuoteTotals, error) {
	return l.engine.Aggregate(items, costs), nil
}

func (l *Local) CalculateTypeMetrics(_ context.Context, items []pricing.LineItem, systemType pricing.SystemType, costs pricing.AdditionalCosts) (pricing.TypeMetrics, error) {
	return l.engine.MetricsForType(items, systemType, costs), nil
}

func (l *Local) CalculateQuote(_ context.Context, items []pricing.LineItem, costs pricing.AdditionalCosts) (pricing.PricedQuote, error) {
	return l.engine.Quote(items, costs), nil
}

const defaultItemConcurrency = 4

// PriceItems prices every item through calc concurrently. Items are
// independent, so each goroutine writes only its own slot. Items without
// geometry are not sent and price at zero.
func PriceItems(ctx context.Context, calc Calculator, items []pricing.LineItem) ([]pricing.Breakdown, error) {
	out := make([]pricing.Breakdown, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultItemConcurrency)
	for i, item := range items {
		if !item.HasGeometry() {
			continue
		}
		g.Go(func() error {
			b, err := calc.CalculateItem(ctx, item)
			if err != nil {
				return err
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
