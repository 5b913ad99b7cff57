package catalog

// Fallback rates in USD per square foot.
const (
	GenericSystemRate = 32.0
	DefaultLaborRate  = 5.0
	DefaultGlassRate  = 12.0

	defaultWindowRate = 30.0
	defaultDoorRate   = 70.0
	hingedLaborRate   = 20.0
)

var windowRates = map[string]float64{
	"Fixed":       25,
	"Tilt & Turn": 40,
	"Casement":    32,
	"Awning":      30,
	"Tilt Only":   37,
}

var entranceDoorRates = map[string]float64{
	"Single Door": 70,
	"Double Door": 75,
	"Pivot Door":  85,
	"Fixed":       32,
}

// Any "Hinged ..." operation resolves to the hinged rate.
var defaultLaborRates = map[string]float64{
	"Fixed":       4,
	"Tilt & Turn": 5,
	"Casement":    5,
	"Awning":      5,
	"Tilt Only":   5,
	"Hinged":      hingedLaborRate,
	"Pivot":       25,
	"Sliding":     10,
}

// Static per-glass-type table used when the glass catalog attaches no price.
var defaultGlassPrices = map[string]float64{
	"Clear":            12.00,
	"Low-E":            15.50,
	"Tempered":         14.00,
	"Laminated":        18.00,
	"Tempered Low-E":   17.50,
	"Laminated Low-E":  21.00,
	"Frosted":          16.00,
	"Tinted":           14.50,
	"Insulated Low-E":  22.00,
	"Hurricane Impact": 28.00,
}

// CanonicalPattern is a documented sliding layout with its fallback rate.
type CanonicalPattern struct {
	Pattern string
	Rate    float64
}

// Panels returns the number of panels in the layout.
func (c CanonicalPattern) Panels() int {
	fixed, sliding := countPattern(c.Pattern)
	return fixed + sliding
}

// CanonicalPatterns are the sliding layouts with documented fallback rates.
var CanonicalPatterns = []CanonicalPattern{
	{Pattern: "OXXXO", Rate: 33.5},
	{Pattern: "XXOXX", Rate: 34.0},
	{Pattern: "OXOXO", Rate: 33.0},
	{Pattern: "XXXXX", Rate: 35.0},
	{Pattern: "OXXXXO", Rate: 34.5},
	{Pattern: "XXXOXX", Rate: 35.5},
	{Pattern: "OOXXOO", Rate: 33.0},
}

// Defaults returns a copy of the built-in labor and glass tables with no
// system rates. Callers may modify it freely.
func Defaults() Tables {
	return Tables{
		LaborRates:  defaultLaborRates,
		GlassPrices: defaultGlassPrices,
	}.clone()
}
