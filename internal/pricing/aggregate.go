package pricing

import "math"

// MarginMultiplier converts a gross-margin percentage into the factor applied
// to cost: profit is margin% of the final price, not of cost. Margins outside
// (0, 100) apply no markup.
func MarginMultiplier(margin float64) float64 {
	if math.IsNaN(margin) || margin <= 0 || margin >= 100 {
		return 1
	}
	return 1 / (1 - margin/100)
}

// distribution holds the quote-wide values shared by every item.
type distribution struct {
	totalArea     float64
	costForMargin float64
	delivery      float64
	multiplier    float64
}

func newDistribution(breakdowns []Breakdown, costs AdditionalCosts) distribution {
	costs = costs.normalized()

	d := distribution{
		// Delivery is a pass-through logistics cost and is never marked up.
		costForMargin: costs.Tariff + costs.Shipping,
		delivery:      costs.Delivery,
		multiplier:    MarginMultiplier(costs.Margin),
	}
	for _, b := range breakdowns {
		d.totalArea += b.Area
	}
	return d
}

func (d distribution) ratio(b Breakdown) float64 {
	if d.totalArea == 0 {
		return 0
	}
	return b.Area / d.totalArea
}

func (d distribution) price(item LineItem, b Breakdown) PricedItem {
	ratio := d.ratio(b)
	p := PricedItem{
		Item:          item,
		Breakdown:     b,
		Ratio:         ratio,
		MarginShare:   ratio * d.costForMargin,
		DeliveryShare: ratio * d.delivery,
	}
	p.BeforeMargin = b.BaseTotal + p.MarginShare
	p.FinalPrice = p.BeforeMargin*d.multiplier + p.DeliveryShare
	return p
}

func (c AdditionalCosts) normalized() AdditionalCosts {
	return AdditionalCosts{
		Tariff:   positive(c.Tariff),
		Shipping: positive(c.Shipping),
		Delivery: positive(c.Delivery),
		Margin:   positive(c.Margin),
	}
}

func (e *Engine) breakdowns(items []LineItem) []Breakdown {
	out := make([]Breakdown, len(items))
	for i, item := range items {
		out[i] = e.PriceItem(item)
	}
	return out
}

// Aggregate rolls the quote up. GrandTotal is the sum of every item's final
// price.
func (e *Engine) Aggregate(items []LineItem, costs AdditionalCosts) QuoteTotals {
	return e.Quote(items, costs).Totals
}

// FinalPrice returns the final price of item within the quote formed by items.
// item does not need to be an element of items; its share is its area over
// the total area of items.
func (e *Engine) FinalPrice(item LineItem, items []LineItem, costs AdditionalCosts) float64 {
	d := newDistribution(e.breakdowns(items), costs)
	return d.price(item, e.PriceItem(item)).FinalPrice
}

// MetricsForType sums the items of systemType. Shares of tariff, shipping and
// delivery are still proportional to the whole quote area.
func (e *Engine) MetricsForType(items []LineItem, systemType SystemType, costs AdditionalCosts) TypeMetrics {
	bs := e.breakdowns(items)
	d := newDistribution(bs, costs)

	m := TypeMetrics{SystemType: systemType}
	for i, item := range items {
		if item.SystemType != systemType {
			continue
		}
		m.add(d.price(item, bs[i]))
	}
	return m
}

// Quote evaluates the whole quote: per-item distribution, totals and
// per-type metrics for every family present, in SystemTypes order.
func (e *Engine) Quote(items []LineItem, costs AdditionalCosts) PricedQuote {
	bs := e.breakdowns(items)
	d := newDistribution(bs, costs)

	q := PricedQuote{
		Items:            make([]PricedItem, 0, len(items)),
		TotalArea:        d.totalArea,
		MarginMultiplier: d.multiplier,
		Costs:            costs.normalized(),
	}

	byType := make(map[SystemType]*TypeMetrics)
	for i, item := range items {
		p := d.price(item, bs[i])
		q.Items = append(q.Items, p)

		q.Totals.TotalSystemCost += p.Breakdown.SystemCost
		q.Totals.TotalGlassCost += p.Breakdown.GlassCost
		q.Totals.TotalLaborCost += p.Breakdown.LaborCost
		q.Totals.GrandTotal += p.FinalPrice

		m, ok := byType[item.SystemType]
		if !ok {
			m = &TypeMetrics{SystemType: item.SystemType}
			byType[item.SystemType] = m
		}
		m.add(p)
	}

	for _, t := range SystemTypes {
		if m, ok := byType[t]; ok {
			q.ByType = append(q.ByType, *m)
		}
	}
	return q
}

func (m *TypeMetrics) add(p PricedItem) {
	m.ItemCount++
	m.Quantity += quantityOf(p.Item)
	m.Area += p.Breakdown.Area
	m.SystemCost += p.Breakdown.SystemCost
	m.GlassCost += p.Breakdown.GlassCost
	m.LaborCost += p.Breakdown.LaborCost
	m.BaseTotal += p.Breakdown.BaseTotal
	m.FinalTotal += p.FinalPrice
}
