package services

import (
	"math"

	"github.com/shopspring/decimal"
)

// Extras sums the surcharges of the entry's selected choices. Selections that
// do not name an existing group/choice contribute nothing.
func Extras(e CartEntry) int64 {
	var extras int64
	for _, group := range e.Options {
		label, ok := e.SelectedOptions[group.Name]
		if !ok || label == "" {
			continue
		}
		choice, ok := group.Choice(label)
		if !ok || choice.PriceCents < 0 {
			continue
		}
		extras = addCents(extras, choice.PriceCents)
	}
	return extras
}

// LineTotal is (base + extras) * quantity, saturating at math.MaxInt64.
func LineTotal(e CartEntry) int64 {
	unit := addCents(max(e.BasePriceCents, 0), Extras(e))
	qty := int64(max(e.Quantity, 0))
	if qty != 0 && unit > math.MaxInt64/qty {
		return math.MaxInt64
	}
	return unit * qty
}

func CartTotal(entries []CartEntry) int64 {
	var total int64
	for _, e := range entries {
		total = addCents(total, LineTotal(e))
	}
	return total
}

// addCents adds two non-negative amounts without wrapping.
func addCents(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// OptionSummary lists "Group: Label" for every selection that resolves to a choice.
func OptionSummary(e CartEntry) []string {
	var lines []string
	for _, group := range e.Options {
		label := e.SelectedOptions[group.Name]
		if label == "" {
			continue
		}
		if _, ok := group.Choice(label); ok {
			lines = append(lines, group.Name+": "+label)
		}
	}
	return lines
}

// FormatPrice renders cents as dollars with two fractional digits ("$15.00").
func FormatPrice(cents int64) string {
	if cents < 0 {
		cents = 0
	}
	return "$" + decimal.New(cents, -2).StringFixed(2)
}
