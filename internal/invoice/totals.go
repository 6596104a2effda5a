// Package invoice derives invoice totals and numbers.
package invoice

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"agency-portal/internal/models"
)

var (
	ErrNoItems        = errors.New("invoice needs at least one line item")
	ErrInvalidItem    = errors.New("invalid line item")
	ErrInvalidTaxRate = errors.New("tax rate must be between 0 and 100 with at most two decimals")
)

// Money is held in integer cents while totals are derived so that sums of
// two-decimal amounts stay exact. Rounding is half away from zero.
type cents int64

func toCents(v float64) cents {
	return cents(math.Round(v * 100))
}

func (c cents) float() float64 {
	return float64(c) / 100
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// LineAmount is quantity × rate rounded to the cent.
func LineAmount(quantity, rate float64) float64 {
	return lineCents(quantity, rate).float()
}

func lineCents(quantity, rate float64) cents {
	return cents(math.Round(quantity * rate * 100))
}

// Compute returns the items with their amounts filled in and the derived
// subtotal, tax and total.
func Compute(items []models.InvoiceItem, taxRate float64) ([]models.InvoiceItem, Totals) {
	out := make([]models.InvoiceItem, len(items))
	var subtotal cents
	for i, item := range items {
		amount := lineCents(item.Quantity, item.Rate)
		item.Amount = amount.float()
		out[i] = item
		subtotal += amount
	}

	tax := cents(math.Round(float64(subtotal) * taxRate / 100))
	return out, Totals{
		Subtotal: subtotal.float(),
		Tax:      tax.float(),
		Total:    (subtotal + tax).float(),
	}
}

// Apply recomputes every derived field of inv in place. Caller supplied
// amounts and totals are discarded.
func Apply(inv *models.Invoice) {
	items, totals := Compute(inv.Items, inv.TaxRate)
	inv.Items = items
	inv.Subtotal = totals.Subtotal
	inv.Tax = totals.Tax
	inv.Total = totals.Total
}

func Validate(items []models.InvoiceItem, taxRate float64) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	for i, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return fmt.Errorf("%w: item %d has no description", ErrInvalidItem, i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidItem, i+1)
		}
		if item.Rate < 0 {
			return fmt.Errorf("%w: item %d rate cannot be negative", ErrInvalidItem, i+1)
		}
	}
	if taxRate < 0 || taxRate > 100 || !twoDecimals(taxRate) {
		return ErrInvalidTaxRate
	}
	return nil
}

// twoDecimals reports whether v survives storage as NUMERIC(5,2) unchanged.
func twoDecimals(v float64) bool {
	scaled := v * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

// FormatAmount renders v with two decimals and thousands separators,
// e.g. 1234.5 -> "1,234.50".
func FormatAmount(v float64) string {
	c := toCents(v)
	neg := c < 0
	if neg {
		c = -c
	}
	whole := fmt.Sprintf("%d", int64(c)/100)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := fmt.Sprintf("%s.%02d", b.String(), int64(c)%100)
	if neg {
		return "-" + out
	}
	return out
}
