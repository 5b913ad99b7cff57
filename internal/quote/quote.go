package quote

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Simplici0/alu.works/internal/pricing"
)

// Client is the customer a quote is prepared for.
type Client struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Quote is the persisted form of a quote. Totals are not part of it; they are
// recomputed from Items and AdditionalCosts.
type Quote struct {
	ID              int64                   `json:"id,omitempty"`
	Items           []pricing.LineItem      `json:"items"`
	AdditionalCosts pricing.AdditionalCosts `json:"additionalCosts"`
	Client          Client                  `json:"clientInfo"`
	Date            time.Time               `json:"date"`
	UpdatedAt       time.Time               `json:"updatedAt,omitempty"`
}

// Price evaluates the quote with engine.
func (q Quote) Price(engine *pricing.Engine) pricing.PricedQuote {
	return engine.Quote(q.Items, q.AdditionalCosts)
}

// ValidateCosts checks user-entered additional costs. A margin of exactly 100
// is accepted and applies no markup.
func ValidateCosts(c pricing.AdditionalCosts) error {
	var problems []string
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"tariff", c.Tariff},
		{"shipping", c.Shipping},
		{"delivery", c.Delivery},
		{"margin", c.Margin},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			problems = append(problems, fmt.Sprintf("%s must be a number greater than or equal to 0", f.name))
		}
	}
	if c.Margin > 100 {
		problems = append(problems, "margin must be between 0 and 100")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ValidateItem checks the fields a line item needs before it is committed.
// Incomplete geometry is allowed and prices at zero.
func ValidateItem(item pricing.LineItem) error {
	if !item.SystemType.Valid() {
		return fmt.Errorf("unknown system type %q", item.SystemType)
	}
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if item.Dimensions.Width < 0 || item.Dimensions.Height < 0 {
		return errors.New("dimensions must not be negative")
	}
	for i, p := range item.Panels {
		if p.Width < 0 {
			return fmt.Errorf("panel %d width must not be negative", i+1)
		}
	}
	return nil
}
