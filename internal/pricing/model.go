package pricing

// SystemType identifies the product family of a line item.
type SystemType string

const (
	SystemWindows       SystemType = "Windows"
	SystemEntranceDoors SystemType = "EntranceDoors"
	SystemSlidingDoors  SystemType = "SlidingDoors"
)

// SystemTypes lists the known families in display order.
var SystemTypes = []SystemType{SystemWindows, SystemEntranceDoors, SystemSlidingDoors}

// Valid reports whether t is one of the known families.
func (t SystemType) Valid() bool {
	switch t {
	case SystemWindows, SystemEntranceDoors, SystemSlidingDoors:
		return true
	}
	return false
}

// Dimensions are measured in inches.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Finish describes the frame coating.
type Finish struct {
	Type     string `json:"type"`
	Color    string `json:"color"`
	RALColor string `json:"ralColor,omitempty"`
}

// Panel is one sash of a window or sliding system. Width is in inches and is
// taken as entered; it is never reconciled against the item width.
type Panel struct {
	Width          float64 `json:"width"`
	OperationType  string  `json:"operationType"`
	Direction      string  `json:"direction,omitempty"`
	HasMosquitoNet bool    `json:"hasMosquitoNet,omitempty"`
}

// Sidelight is an optional fixed lite beside or above an entrance door.
// Sidelights use Width, transoms use Height.
type Sidelight struct {
	Enabled bool    `json:"enabled"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
}

// LineItem is one configured product in a quote. Items are replaced wholesale
// on edit.
type LineItem struct {
	ID          string     `json:"id"`
	ItemNumber  int        `json:"itemNumber"`
	SystemType  SystemType `json:"systemType"`
	Brand       string     `json:"brand"`
	SystemModel string     `json:"systemModel"`
	Dimensions  Dimensions `json:"dimensions"`
	Quantity    int        `json:"quantity"`
	GlassType   string     `json:"glassType"`
	// GlassUnitPrice is the price attached by the glass catalog when the rep
	// picked a priced glass option. It wins over the static glass table.
	GlassUnitPrice *float64   `json:"glassUnitPrice,omitempty"`
	Finish         Finish     `json:"finish"`
	Panels         []Panel    `json:"panels,omitempty"`
	LeftSidelight  *Sidelight `json:"leftSidelight,omitempty"`
	RightSidelight *Sidelight `json:"rightSidelight,omitempty"`
	Transom        *Sidelight `json:"transom,omitempty"`
	OpeningType    string     `json:"openingType"`
	Notes          string     `json:"notes,omitempty"`
	Location       string     `json:"location,omitempty"`
}

// HasGeometry reports whether both dimensions are set. Items without geometry
// price at zero.
func (i LineItem) HasGeometry() bool {
	return positive(i.Dimensions.Width) > 0 && positive(i.Dimensions.Height) > 0
}

// AdditionalCosts are quote-level amounts shared across items. Margin is a
// gross-margin percentage in [0, 100).
type AdditionalCosts struct {
	Tariff   float64 `json:"tariff"`
	Shipping float64 `json:"shipping"`
	Delivery float64 `json:"delivery"`
	Margin   float64 `json:"margin"`
}

// Breakdown is the manufacturing cost of one line item, already multiplied by
// its quantity.
type Breakdown struct {
	SystemCost float64 `json:"systemCost"`
	GlassCost  float64 `json:"glassCost"`
	LaborCost  float64 `json:"laborCost"`
	BaseTotal  float64 `json:"baseTotal"`
	Area       float64 `json:"area"`
}

// QuoteTotals are the quote-level roll-ups.
type QuoteTotals struct {
	TotalSystemCost float64 `json:"totalSystemCost"`
	TotalGlassCost  float64 `json:"totalGlassCost"`
	TotalLaborCost  float64 `json:"totalLaborCost"`
	GrandTotal      float64 `json:"grandTotal"`
}

// TypeMetrics roll up the items of one family. FinalTotal uses ratios taken
// over the whole quote area.
type TypeMetrics struct {
	SystemType SystemType `json:"systemType"`
	ItemCount  int        `json:"itemCount"`
	Quantity   int        `json:"quantity"`
	Area       float64    `json:"area"`
	SystemCost float64    `json:"systemCost"`
	GlassCost  float64    `json:"glassCost"`
	LaborCost  float64    `json:"laborCost"`
	BaseTotal  float64    `json:"baseTotal"`
	FinalTotal float64    `json:"finalTotal"`
}

// PricedItem carries every intermediate value of the distribution for one
// line item.
type PricedItem struct {
	Item          LineItem  `json:"item"`
	Breakdown     Breakdown `json:"breakdown"`
	Ratio         float64   `json:"ratio"`
	MarginShare   float64   `json:"marginShare"`
	DeliveryShare float64   `json:"deliveryShare"`
	BeforeMargin  float64   `json:"beforeMargin"`
	FinalPrice    float64   `json:"finalPrice"`
}

// PricedQuote is a full evaluation of a quote, items in input order.
type PricedQuote struct {
	Items            []PricedItem    `json:"items"`
	Totals           QuoteTotals     `json:"totals"`
	ByType           []TypeMetrics   `json:"byType"`
	TotalArea        float64         `json:"totalArea"`
	MarginMultiplier float64         `json:"marginMultiplier"`
	Costs            AdditionalCosts `json:"additionalCosts"`
}
