package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/alu.works/internal/catalog"
	"github.com/Simplici0/alu.works/internal/pricing"
	"github.com/Simplici0/alu.works/internal/quote"
)

// sampleSummary prices two 1 sqft windows at 56 each with 20 of tariff and
// shipping, 8 of delivery and a 20% margin: 173 before a 10% tax.
func sampleSummary() Summary {
	c := catalog.New(catalog.Tables{
		SystemRates: map[string]map[string]map[string]float64{
			"Acme": {"W1": {"Fixed": 40}},
		},
		LaborRates:  map[string]float64{"Fixed": 4},
		GlassPrices: map[string]float64{"Clear": 12},
	})
	engine := pricing.NewEngine(c)

	item := func(id string, n int) pricing.LineItem {
		return pricing.LineItem{
			ID:          id,
			ItemNumber:  n,
			SystemType:  pricing.SystemWindows,
			Brand:       "Acme",
			SystemModel: "W1",
			OpeningType: "Fixed",
			Dimensions:  pricing.Dimensions{Width: 12, Height: 12},
			Quantity:    1,
			GlassType:   "Clear",
		}
	}
	q := quote.Quote{
		ID:              7,
		Items:           []pricing.LineItem{item("a", 1), item("b", 2)},
		AdditionalCosts: pricing.AdditionalCosts{Tariff: 10, Shipping: 10, Delivery: 8, Margin: 20},
		Client:          quote.Client{Name: "Rivera Homes", Address: "12 Palm Ave"},
		Date:            time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
	}
	return NewSummary(q, q.Price(engine), 10)
}

func TestNewSummary(t *testing.T) {
	s := sampleSummary()

	if len(s.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(s.Lines))
	}
	if s.Lines[0].FinalPrice != 86.5 || s.Lines[0].UnitPrice != 86.5 {
		t.Fatalf("unexpected first line: %+v", s.Lines[0])
	}
	if len(s.ByType) != 1 || s.ByType[0].SystemType != pricing.SystemWindows {
		t.Fatalf("expected only the windows subtotal, got %+v", s.ByType)
	}
	if s.Totals.GrandTotal != 173 || s.Tax != 17.3 || s.Total != 190.3 {
		t.Fatalf("unexpected totals: grand=%v tax=%v total=%v", s.Totals.GrandTotal, s.Tax, s.Total)
	}
}

func TestText(t *testing.T) {
	body := Text(sampleSummary())

	for _, expected := range []string{
		"Quote #7",
		"Date: 2025-03-04",
		"Client: Rivera Homes",
		"1. Windows Acme W1 Fixed, 12 x 12 in, qty 1: $86.50",
		"- Windows (2 items, 2 units, 2.00 sq ft): $173.00",
		"Delivery: $8.00",
		"Tax (10%): $17.30",
		"Total: $190.30",
	} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q, got:\n%s", expected, body)
		}
	}
}

func TestTextCountsItemsAndUnitsSeparately(t *testing.T) {
	s := sampleSummary()
	s.ByType = []pricing.TypeMetrics{{
		SystemType: pricing.SystemWindows,
		ItemCount:  2,
		Quantity:   5,
		Area:       5,
		FinalTotal: 300,
	}}

	body := Text(s)
	if !strings.Contains(body, "- Windows (2 items, 5 units, 5.00 sq ft): $300.00") {
		t.Fatalf("expected item count and unit count in system line, got:\n%s", body)
	}
}

func TestTextOmitsTaxWhenDisabled(t *testing.T) {
	s := sampleSummary()
	s.Tax = 0
	s.Total = s.Totals.GrandTotal

	body := Text(s)
	if strings.Contains(body, "Tax") {
		t.Fatalf("expected no tax line, got:\n%s", body)
	}
	if !strings.Contains(body, "Total: $173.00") {
		t.Fatalf("expected untaxed total, got:\n%s", body)
	}
}

func TestMoney(t *testing.T) {
	cases := map[float64]string{
		0:          "$0.00",
		1234.5:     "$1,234.50",
		1000000.01: "$1,000,000.01",
		2.005:      "$2.01",
	}
	for in, want := range cases {
		if got := Money(in); got != want {
			t.Fatalf("Money(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sampleSummary())
	if err != nil {
		t.Fatalf("XLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Quote" {
		t.Fatalf("expected a single Quote sheet, got %v", sheets)
	}

	raw := excelize.Options{RawCellValue: true}
	checks := map[string]string{
		"A1":  "Quote #7",
		"B6":  "Windows Acme W1 Fixed",
		"G6":  "86.5",
		"G7":  "86.5",
		"F9":  "Windows:",
		"F10": "Subtotal:",
		"F11": "Tax (10%):",
		"G11": "17.3",
		"F12": "Total:",
		"G12": "190.3",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue("Quote", cell, raw)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != want {
			t.Fatalf("cell %s = %q, want %q", cell, got, want)
		}
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	if got := sanitizeExcelCell("=SUM(A1)"); got != "'=SUM(A1)" {
		t.Fatalf("expected formula to be escaped, got %q", got)
	}
	if got := sanitizeExcelCell("Windows"); got != "Windows" {
		t.Fatalf("expected plain text unchanged, got %q", got)
	}
}
