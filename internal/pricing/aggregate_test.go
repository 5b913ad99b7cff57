package pricing

import (
	"math"
	"testing"
)

// newFlatEngine prices one square foot of fixed window at exactly 100.
func newFlatEngine() *Engine {
	return NewEngine(fixtureRates{
		system: map[string]float64{"Fixed": 84},
		labor:  map[string]float64{"Fixed": 4},
		glass:  12,
	})
}

func squareFootWindow(id string, qty int) LineItem {
	return LineItem{
		ID:         id,
		SystemType: SystemWindows,
		Dimensions: Dimensions{Width: 12, Height: 12},
		Quantity:   qty,
		Panels:     []Panel{{Width: 12, OperationType: "Fixed"}},
	}
}

func TestMarginMultiplier(t *testing.T) {
	nearlyEqual(t, "zero", MarginMultiplier(0), 1)
	nearlyEqual(t, "twenty", MarginMultiplier(20), 1.25)
	nearlyEqual(t, "hundred", MarginMultiplier(100), 1)
	nearlyEqual(t, "above", MarginMultiplier(150), 1)
	nearlyEqual(t, "negative", MarginMultiplier(-5), 1)
	nearlyEqual(t, "nan", MarginMultiplier(math.NaN()), 1)
}

func TestFinalPrice_GrossMargin(t *testing.T) {
	e := newFlatEngine()
	item := squareFootWindow("a", 1)
	items := []LineItem{item}

	nearlyEqual(t, "baseTotal", e.PriceItem(item).BaseTotal, 100)

	got := e.FinalPrice(item, items, AdditionalCosts{Margin: 20})
	nearlyEqual(t, "finalPrice", got, 125)
}

func TestAggregate_DegenerateMarginStaysFinite(t *testing.T) {
	e := newFlatEngine()
	items := []LineItem{squareFootWindow("a", 1)}

	totals := e.Aggregate(items, AdditionalCosts{Tariff: 10, Margin: 100})

	if math.IsNaN(totals.GrandTotal) || math.IsInf(totals.GrandTotal, 0) {
		t.Fatalf("grand total must be finite, got %v", totals.GrandTotal)
	}
	nearlyEqual(t, "grandTotal", totals.GrandTotal, 110)
}

func TestAggregate_ConservationAndProportionality(t *testing.T) {
	e := newFlatEngine()
	items := []LineItem{squareFootWindow("a", 1), squareFootWindow("b", 1)}
	costs := AdditionalCosts{Tariff: 100, Shipping: 50, Delivery: 30, Margin: 25}

	q := e.Quote(items, costs)

	if len(q.Items) != 2 {
		t.Fatalf("expected 2 priced items, got %d", len(q.Items))
	}
	a, b := q.Items[0], q.Items[1]
	nearlyEqual(t, "ratio a", a.Ratio, 0.5)
	nearlyEqual(t, "margin share", a.MarginShare, b.MarginShare)
	nearlyEqual(t, "delivery share", a.DeliveryShare, b.DeliveryShare)
	nearlyEqual(t, "final a", a.FinalPrice, (100+75)/0.75+15)

	sum := 0.0
	for _, it := range q.Items {
		sum += it.FinalPrice
	}
	if !EqualCents(sum, q.Totals.GrandTotal) {
		t.Fatalf("sum of final prices %v != grand total %v", sum, q.Totals.GrandTotal)
	}
	nearlyEqual(t, "aggregate", e.Aggregate(items, costs).GrandTotal, q.Totals.GrandTotal)
}

func TestAggregate_DeliveryIsNotMarkedUp(t *testing.T) {
	e := newFlatEngine()
	items := []LineItem{squareFootWindow("a", 1)}

	totals := e.Aggregate(items, AdditionalCosts{Delivery: 40, Margin: 20})
	nearlyEqual(t, "grandTotal", totals.GrandTotal, 125+40)
}

func TestAggregate_Idempotent(t *testing.T) {
	e := newFixtureEngine()
	items := []LineItem{
		squareFootWindow("a", 2),
		{ID: "b", SystemType: SystemSlidingDoors, Dimensions: Dimensions{Width: 144, Height: 96}, OpeningType: "OXXXO", Quantity: 1},
	}
	costs := AdditionalCosts{Tariff: 12.5, Shipping: 80, Delivery: 45, Margin: 33}

	first := e.Aggregate(items, costs)
	for i := 0; i < 5; i++ {
		if got := e.Aggregate(items, costs); got != first {
			t.Fatalf("iteration %d: %+v != %+v", i, got, first)
		}
	}
}

func TestAggregate_ZeroAreaHasNoNaN(t *testing.T) {
	e := newFixtureEngine()
	items := []LineItem{{ID: "a", SystemType: SystemWindows, Quantity: 1}}

	q := e.Quote(items, AdditionalCosts{Tariff: 100, Shipping: 10, Delivery: 5, Margin: 30})

	if q.Items[0].Ratio != 0 || q.Totals.GrandTotal != 0 {
		t.Fatalf("expected zero ratio and total, got %+v", q)
	}
}

func TestMetricsForType_UsesWholeQuoteArea(t *testing.T) {
	e := newFixtureEngine()
	items := []LineItem{
		squareFootWindow("w1", 1),
		{ID: "s1", SystemType: SystemSlidingDoors, Dimensions: Dimensions{Width: 144, Height: 96}, OpeningType: "OXXXO", Quantity: 1},
		squareFootWindow("w2", 3),
	}
	costs := AdditionalCosts{Tariff: 200, Shipping: 100, Delivery: 60, Margin: 15}

	windows := e.MetricsForType(items, SystemWindows, costs)
	sliding := e.MetricsForType(items, SystemSlidingDoors, costs)

	if windows.ItemCount != 2 || windows.Quantity != 4 {
		t.Fatalf("unexpected window counts: %+v", windows)
	}
	nearlyEqual(t, "window area", windows.Area, 4)

	want := 0.0
	for _, it := range items {
		if it.SystemType == SystemWindows {
			want += e.FinalPrice(it, items, costs)
		}
	}
	nearlyEqual(t, "window final", windows.FinalTotal, want)

	grand := e.Aggregate(items, costs).GrandTotal
	if !EqualCents(windows.FinalTotal+sliding.FinalTotal, grand) {
		t.Fatalf("type totals %v + %v != grand total %v", windows.FinalTotal, sliding.FinalTotal, grand)
	}

	// A subset evaluated alone would get the whole tariff; within the quote it
	// only gets its area share.
	alone := e.Aggregate([]LineItem{items[0], items[2]}, costs).GrandTotal
	if windows.FinalTotal >= alone {
		t.Fatalf("expected whole-quote ratios to lower the window share: %v >= %v", windows.FinalTotal, alone)
	}
}

func TestQuote_ByTypeFollowsFamilyOrder(t *testing.T) {
	e := newFixtureEngine()
	items := []LineItem{
		{ID: "s1", SystemType: SystemSlidingDoors, Dimensions: Dimensions{Width: 144, Height: 96}, OpeningType: "OXXXO", Quantity: 1},
		squareFootWindow("w1", 1),
	}

	q := e.Quote(items, AdditionalCosts{})

	if len(q.ByType) != 2 || q.ByType[0].SystemType != SystemWindows || q.ByType[1].SystemType != SystemSlidingDoors {
		t.Fatalf("unexpected type order: %+v", q.ByType)
	}
	if q.Items[0].Item.ID != "s1" {
		t.Fatalf("items must keep input order, got %q first", q.Items[0].Item.ID)
	}
}

func TestCentsHelpers(t *testing.T) {
	if !EqualCents(0.1+0.2, 0.3) {
		t.Fatalf("expected 0.1+0.2 to equal 0.3 to the cent")
	}
	if EqualCents(10.004, 10.006) {
		t.Fatalf("expected 10.004 and 10.006 to differ to the cent")
	}
	nearlyEqual(t, "round", RoundCents(1026.005), 1026.01)
	nearlyEqual(t, "nan", RoundCents(math.NaN()), 0)
	nearlyEqual(t, "tax", FlatTax(1000, 8.25), 82.5)
	nearlyEqual(t, "no tax", FlatTax(1000, 0), 0)
}
