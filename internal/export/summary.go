// Package export renders priced quotes for customers: a plain-text summary
// and an xlsx sheet.
package export

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Simplici0/alu.works/internal/pricing"
	"github.com/Simplici0/alu.works/internal/quote"
)

const dateLayout = "2006-01-02"

// Summary is everything an export shows. Amounts are already rounded to cents.
type Summary struct {
	QuoteID    int64
	Date       string
	Client     quote.Client
	Lines      []Line
	ByType     []pricing.TypeMetrics
	Costs      pricing.AdditionalCosts
	Totals     pricing.QuoteTotals
	TaxPercent float64
	Tax        float64
	Total      float64
}

// Line is one priced item.
type Line struct {
	Number      int
	Description string
	Size        string
	Quantity    int
	Area        float64
	UnitPrice   float64
	FinalPrice  float64
}

// NewSummary rounds a priced quote into export form. taxPercent adds a flat
// tax line on top of the grand total when positive.
func NewSummary(q quote.Quote, priced pricing.PricedQuote, taxPercent float64) Summary {
	s := Summary{
		QuoteID:    q.ID,
		Client:     q.Client,
		Costs:      q.AdditionalCosts,
		TaxPercent: taxPercent,
		Totals: pricing.QuoteTotals{
			TotalSystemCost: pricing.RoundCents(priced.Totals.TotalSystemCost),
			TotalGlassCost:  pricing.RoundCents(priced.Totals.TotalGlassCost),
			TotalLaborCost:  pricing.RoundCents(priced.Totals.TotalLaborCost),
			GrandTotal:      pricing.RoundCents(priced.Totals.GrandTotal),
		},
	}
	if !q.Date.IsZero() {
		s.Date = q.Date.Format(dateLayout)
	}

	for _, p := range priced.Items {
		qty := p.Item.Quantity
		if qty < 1 {
			qty = 1
		}
		s.Lines = append(s.Lines, Line{
			Number:      p.Item.ItemNumber,
			Description: describe(p.Item),
			Size:        fmt.Sprintf("%g x %g in", p.Item.Dimensions.Width, p.Item.Dimensions.Height),
			Quantity:    qty,
			Area:        pricing.RoundCents(p.Breakdown.Area),
			UnitPrice:   pricing.RoundCents(p.FinalPrice / float64(qty)),
			FinalPrice:  pricing.RoundCents(p.FinalPrice),
		})
	}

	for _, m := range priced.ByType {
		if m.ItemCount == 0 {
			continue
		}
		m.FinalTotal = pricing.RoundCents(m.FinalTotal)
		m.Area = pricing.RoundCents(m.Area)
		s.ByType = append(s.ByType, m)
	}

	s.Tax = pricing.FlatTax(s.Totals.GrandTotal, taxPercent)
	s.Total = pricing.RoundCents(s.Totals.GrandTotal + s.Tax)
	return s
}

// Text renders the summary as plain text.
func Text(s Summary) string {
	var b strings.Builder

	if s.QuoteID > 0 {
		fmt.Fprintf(&b, "Quote #%d\n", s.QuoteID)
	} else {
		b.WriteString("Quote\n")
	}
	if s.Date != "" {
		fmt.Fprintf(&b, "Date: %s\n", s.Date)
	}
	if s.Client.Name != "" {
		fmt.Fprintf(&b, "Client: %s\n", s.Client.Name)
	}
	if s.Client.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", s.Client.Address)
	}

	b.WriteString("\nItems:\n")
	if len(s.Lines) == 0 {
		b.WriteString("- none\n")
	}
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "%d. %s, %s, qty %d: %s\n", l.Number, l.Description, l.Size, l.Quantity, Money(l.FinalPrice))
	}

	if len(s.ByType) > 0 {
		b.WriteString("\nBy system:\n")
		for _, m := range s.ByType {
			fmt.Fprintf(&b, "- %s (%d items, %d units, %s sq ft): %s\n",
				m.SystemType, m.ItemCount, m.Quantity, humanize.FormatFloat("#,###.##", m.Area), Money(m.FinalTotal))
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Delivery: %s\n", Money(s.Costs.Delivery))
	fmt.Fprintf(&b, "Subtotal: %s\n", Money(s.Totals.GrandTotal))
	if s.Tax > 0 {
		fmt.Fprintf(&b, "Tax (%g%%): %s\n", s.TaxPercent, Money(s.Tax))
	}
	fmt.Fprintf(&b, "Total: %s\n", Money(s.Total))
	return b.String()
}

// Money formats an amount with thousands separators and two decimals.
func Money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", pricing.RoundCents(v))
}

func describe(item pricing.LineItem) string {
	parts := []string{string(item.SystemType)}
	for _, p := range []string{item.Brand, item.SystemModel, item.OpeningType} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
