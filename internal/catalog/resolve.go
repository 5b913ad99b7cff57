package catalog

import (
	"math"
	"strings"
)

const (
	systemWindows       = "Windows"
	systemEntranceDoors = "EntranceDoors"
	systemSlidingDoors  = "SlidingDoors"

	hingedPrefix = "Hinged"
)

type systemQuery struct {
	SystemType string
	Brand      string
	Model      string
	Key        string
}

type glassQuery struct {
	GlassType string
	Attached  *float64
}

// Resolvers report ok=false to pass the query down the chain.
type (
	systemResolver func(systemQuery) (float64, bool)
	laborResolver  func(operationType string) (float64, bool)
	glassResolver  func(glassQuery) (float64, bool)
)

func (t Tables) systemEntry(q systemQuery) (float64, bool) {
	rate, ok := t.SystemRates[q.Brand][q.Model][q.Key]
	if !ok || !validRate(rate) {
		return 0, false
	}
	return rate, true
}

func windowsFallback(q systemQuery) (float64, bool) {
	if q.SystemType != systemWindows {
		return 0, false
	}
	if rate, ok := windowRates[q.Key]; ok {
		return rate, true
	}
	return defaultWindowRate, true
}

func entranceDoorsFallback(q systemQuery) (float64, bool) {
	if q.SystemType != systemEntranceDoors {
		return 0, false
	}
	if rate, ok := entranceDoorRates[q.Key]; ok {
		return rate, true
	}
	return defaultDoorRate, true
}

// slidingDoorsFallback classifies the pattern by panel count and picks the
// canonical pattern of the same size whose fixed-panel count is nearest.
// Only five and six panel systems have canonical rates.
func slidingDoorsFallback(q systemQuery) (float64, bool) {
	if q.SystemType != systemSlidingDoors {
		return 0, false
	}
	p, ok := NearestCanonicalPattern(q.Key)
	if !ok {
		return 0, false
	}
	return p.Rate, true
}

func genericFallback(systemQuery) (float64, bool) {
	return GenericSystemRate, true
}

// NearestCanonicalPattern returns the canonical sliding pattern closest to
// pattern. Ties go to the pattern listed first.
func NearestCanonicalPattern(pattern string) (CanonicalPattern, bool) {
	fixed, sliding := countPattern(pattern)
	panels := fixed + sliding
	if panels != 5 && panels != 6 {
		return CanonicalPattern{}, false
	}

	var (
		best     CanonicalPattern
		bestDist = -1
	)
	for _, c := range CanonicalPatterns {
		if c.Panels() != panels {
			continue
		}
		cf, _ := countPattern(c.Pattern)
		dist := abs(cf - fixed)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best, bestDist >= 0
}

func (t Tables) laborEntry(operationType string) (float64, bool) {
	rate, ok := t.LaborRates[operationType]
	if !ok || !validRate(rate) {
		return 0, false
	}
	return rate, true
}

// hingedLabor maps every "Hinged ..." operation to the hinged rate, preferring
// a configured "Hinged" entry.
func (t Tables) hingedLabor(operationType string) (float64, bool) {
	if !strings.HasPrefix(operationType, hingedPrefix) {
		return 0, false
	}
	if rate, ok := t.LaborRates[hingedPrefix]; ok && validRate(rate) {
		return rate, true
	}
	return hingedLaborRate, true
}

func defaultLabor(operationType string) (float64, bool) {
	if rate, ok := defaultLaborRates[operationType]; ok {
		return rate, true
	}
	return DefaultLaborRate, true
}

func attachedGlass(q glassQuery) (float64, bool) {
	if q.Attached == nil || !validRate(*q.Attached) || *q.Attached == 0 {
		return 0, false
	}
	return *q.Attached, true
}

func (t Tables) glassEntry(q glassQuery) (float64, bool) {
	price, ok := t.GlassPrices[q.GlassType]
	if !ok || !validRate(price) {
		return 0, false
	}
	return price, true
}

func defaultGlass(glassQuery) (float64, bool) {
	return DefaultGlassRate, true
}

func countPattern(pattern string) (fixed, sliding int) {
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

func validRate(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
