// Package catalog resolves per-unit rates from read-only brand, labor and
// glass tables. Lookups never fail: a missing entry resolves to a documented
// fallback and is logged.
package catalog

import (
	"github.com/rs/zerolog"
)

// Tables is the raw configuration the catalog is built from.
// SystemRates is keyed brand -> model -> operation key (operation type, or
// panel pattern for sliding systems) -> cost per square foot.
type Tables struct {
	SystemRates map[string]map[string]map[string]float64 `json:"systemRates"`
	LaborRates  map[string]float64                       `json:"laborRates"`
	GlassPrices map[string]float64                       `json:"glassPrices"`
}

// Catalog is an immutable rate source. It satisfies pricing.Rates.
type Catalog struct {
	tables Tables
	logger zerolog.Logger

	systemChain []systemResolver
	laborChain  []laborResolver
	glassChain  []glassResolver
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// New builds a catalog from a private copy of t.
func New(t Tables, opts ...Option) *Catalog {
	c := &Catalog{
		tables: t.clone(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.systemChain = []systemResolver{
		c.tables.systemEntry,
		windowsFallback,
		entranceDoorsFallback,
		slidingDoorsFallback,
		genericFallback,
	}
	c.laborChain = []laborResolver{
		c.tables.laborEntry,
		c.tables.hingedLabor,
		defaultLabor,
	}
	c.glassChain = []glassResolver{
		attachedGlass,
		c.tables.glassEntry,
		defaultGlass,
	}
	return c
}

// Tables returns a copy of the configuration the catalog was built from.
func (c *Catalog) Tables() Tables {
	return c.tables.clone()
}

// SystemRate returns the system cost per square foot.
func (c *Catalog) SystemRate(systemType, brand, model, key string) float64 {
	q := systemQuery{SystemType: systemType, Brand: brand, Model: model, Key: key}
	for i, resolve := range c.systemChain {
		rate, ok := resolve(q)
		if !ok {
			continue
		}
		if i > 0 {
			c.logger.Warn().
				Str("system_type", systemType).
				Str("brand", brand).
				Str("model", model).
				Str("key", key).
				Float64("fallback_rate", rate).
				Msg("catalog entry missing, using fallback system rate")
		}
		return rate
	}
	return GenericSystemRate
}

// LaborRate returns the labor cost per square foot for an operation type.
func (c *Catalog) LaborRate(operationType string) float64 {
	for i, resolve := range c.laborChain {
		rate, ok := resolve(operationType)
		if !ok {
			continue
		}
		if i > 0 {
			c.logger.Warn().
				Str("operation_type", operationType).
				Float64("fallback_rate", rate).
				Msg("labor rate missing, using fallback")
		}
		return rate
	}
	return DefaultLaborRate
}

// GlassRate returns the glass cost per square foot. A price attached by the
// glass catalog wins over the static table.
func (c *Catalog) GlassRate(glassType string, attached *float64) float64 {
	q := glassQuery{GlassType: glassType, Attached: attached}
	for i, resolve := range c.glassChain {
		rate, ok := resolve(q)
		if !ok {
			continue
		}
		if i == len(c.glassChain)-1 {
			c.logger.Warn().
				Str("glass_type", glassType).
				Float64("fallback_rate", rate).
				Msg("glass price missing, using default")
		}
		return rate
	}
	return DefaultGlassRate
}

func (t Tables) clone() Tables {
	out := Tables{
		SystemRates: make(map[string]map[string]map[string]float64, len(t.SystemRates)),
		LaborRates:  make(map[string]float64, len(t.LaborRates)),
		GlassPrices: make(map[string]float64, len(t.GlassPrices)),
	}
	for brand, models := range t.SystemRates {
		m := make(map[string]map[string]float64, len(models))
		for model, keys := range models {
			k := make(map[string]float64, len(keys))
			for key, rate := range keys {
				k[key] = rate
			}
			m[model] = k
		}
		out.SystemRates[brand] = m
	}
	for op, rate := range t.LaborRates {
		out.LaborRates[op] = rate
	}
	for glass, price := range t.GlassPrices {
		out.GlassPrices[glass] = price
	}
	return out
}
