// Package pricing computes manufacturing cost for aluminum window and door
// line items and rolls a quote up into final prices.
package pricing

import (
	"math"
	"strings"
)

const (
	squareInchesPerSqFt = 144.0
	mosquitoNetFlatCost = 100.0

	operationFixed   = "Fixed"
	operationSliding = "Sliding"

	doorPivot        = "Pivot Door"
	laborPivot       = "Pivot"
	laborHingedDoors = "Hinged Left Open In"
)

// Rates resolves per-unit rates for the engine. Implementations must never
// fail; missing entries resolve to documented fallbacks.
type Rates interface {
	// SystemRate returns the system cost per square foot. key is the operation
	// type for windows and entrance doors, or the panel pattern for sliding
	// systems.
	SystemRate(systemType, brand, model, key string) float64
	// LaborRate returns the labor cost per square foot for an operation type.
	LaborRate(operationType string) float64
	// GlassRate returns the glass cost per square foot. attached is the price
	// picked from the glass catalog, if any.
	GlassRate(glassType string, attached *float64) float64
}

// Engine prices line items and quotes against an injected rate source.
type Engine struct {
	rates Rates
}

// NewEngine returns an engine backed by rates.
func NewEngine(rates Rates) *Engine {
	return &Engine{rates: rates}
}

// PriceItem computes the cost breakdown of one line item, scaled by quantity.
// Unknown system types and incomplete geometry price at zero.
func (e *Engine) PriceItem(item LineItem) Breakdown {
	if !item.HasGeometry() {
		return Breakdown{}
	}

	var b Breakdown
	switch item.SystemType {
	case SystemWindows:
		b = e.priceWindows(item)
	case SystemEntranceDoors:
		b = e.priceEntranceDoors(item)
	case SystemSlidingDoors:
		b = e.priceSlidingDoors(item)
	default:
		return Breakdown{}
	}

	return b.scale(float64(quantityOf(item)))
}

func (e *Engine) priceWindows(item LineItem) Breakdown {
	panels := item.Panels
	if len(panels) == 0 {
		panels = []Panel{{Width: item.Dimensions.Width, OperationType: item.OpeningType}}
	}

	glassRate := e.rates.GlassRate(item.GlassType, item.GlassUnitPrice)

	var b Breakdown
	for _, p := range panels {
		area := areaSqFt(p.Width, item.Dimensions.Height)
		systemRate := e.rates.SystemRate(string(SystemWindows), item.Brand, item.SystemModel, p.OperationType)

		b.SystemCost += systemRate * area
		b.GlassCost += glassRate * area
		b.LaborCost += e.rates.LaborRate(p.OperationType) * area
		b.Area += area

		if p.OperationType != operationFixed && p.HasMosquitoNet {
			b.SystemCost += mosquitoNetFlatCost
		}
	}
	b.BaseTotal = b.SystemCost + b.GlassCost + b.LaborCost
	return b
}

func (e *Engine) priceEntranceDoors(item LineItem) Breakdown {
	width, height := item.Dimensions.Width, item.Dimensions.Height
	doorArea := areaSqFt(width, height)

	fixedArea := 0.0
	assemblyWidth := width
	for _, sl := range []*Sidelight{item.LeftSidelight, item.RightSidelight} {
		if sl == nil || !sl.Enabled {
			continue
		}
		fixedArea += areaSqFt(sl.Width, height)
		assemblyWidth += positive(sl.Width)
	}
	// The transom spans the door plus any enabled sidelights.
	if item.Transom != nil && item.Transom.Enabled {
		fixedArea += areaSqFt(assemblyWidth, item.Transom.Height)
	}

	doorRate := e.rates.SystemRate(string(SystemEntranceDoors), item.Brand, item.SystemModel, item.OpeningType)
	fixedRate := 0.0
	if fixedArea > 0 {
		fixedRate = e.rates.SystemRate(string(SystemEntranceDoors), item.Brand, item.SystemModel, operationFixed)
	}
	glassRate := e.rates.GlassRate(item.GlassType, item.GlassUnitPrice)

	laborKey := laborHingedDoors
	if item.OpeningType == doorPivot {
		laborKey = laborPivot
	}

	total := doorArea + fixedArea
	b := Breakdown{
		SystemCost: doorRate*doorArea + fixedRate*fixedArea,
		GlassCost:  glassRate * total,
		// One rate for the whole assembly: hardware labor does not grow with
		// the number of sidelights.
		LaborCost: e.rates.LaborRate(laborKey) * total,
		Area:      total,
	}
	b.BaseTotal = b.SystemCost + b.GlassCost + b.LaborCost
	return b
}

func (e *Engine) priceSlidingDoors(item LineItem) Breakdown {
	area := areaSqFt(item.Dimensions.Width, item.Dimensions.Height)
	pattern := item.OpeningType

	fixed, sliding := CountPattern(pattern)
	fixedLabor := e.rates.LaborRate(operationFixed)
	slidingLabor := e.rates.LaborRate(operationSliding)
	laborRate := slidingLabor
	if n := fixed + sliding; n > 0 {
		laborRate = (float64(fixed)*fixedLabor + float64(sliding)*slidingLabor) / float64(n)
	}

	b := Breakdown{
		SystemCost: e.rates.SystemRate(string(SystemSlidingDoors), item.Brand, item.SystemModel, pattern) * area,
		GlassCost:  e.rates.GlassRate(item.GlassType, item.GlassUnitPrice) * area,
		LaborCost:  laborRate * area,
		Area:       area,
	}
	b.BaseTotal = b.SystemCost + b.GlassCost + b.LaborCost
	return b
}

// CountPattern counts fixed ('O') and sliding ('X') panels in a panel pattern
// code. Other characters are ignored.
func CountPattern(pattern string) (fixed, sliding int) {
	for _, r := range strings.ToUpper(pattern) {
		switch r {
		case 'O':
			fixed++
		case 'X':
			sliding++
		}
	}
	return fixed, sliding
}

func (b Breakdown) scale(qty float64) Breakdown {
	return Breakdown{
		SystemCost: b.SystemCost * qty,
		GlassCost:  b.GlassCost * qty,
		LaborCost:  b.LaborCost * qty,
		BaseTotal:  b.BaseTotal * qty,
		Area:       b.Area * qty,
	}
}

func areaSqFt(width, height float64) float64 {
	return positive(width) * positive(height) / squareInchesPerSqFt
}

// quantityOf treats an unset quantity as a single unit.
func quantityOf(item LineItem) int {
	if item.Quantity < 1 {
		return 1
	}
	return item.Quantity
}

func positive(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
