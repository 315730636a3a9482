package services

import (
	"math"
	"testing"

	"menu-telegram/models"
)

var sizeGroup = models.OptionGroup{
	Name:    "Size",
	Choices: []models.Choice{{Label: "Small"}, {Label: "Large", PriceCents: 200}},
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		entry     CartEntry
		want      int64
		formatted string
	}{
		{
			name:      "no options",
			entry:     CartEntry{BasePriceCents: 500, Quantity: 3},
			want:      1500,
			formatted: "$15.00",
		},
		{
			name: "large surcharge",
			entry: CartEntry{
				BasePriceCents:  800,
				Quantity:        2,
				Options:         []models.OptionGroup{sizeGroup},
				SelectedOptions: map[string]string{"Size": "Large"},
			},
			want:      2000,
			formatted: "$20.00",
		},
		{
			name: "unknown choice is no preference",
			entry: CartEntry{
				BasePriceCents:  800,
				Quantity:        1,
				Options:         []models.OptionGroup{sizeGroup},
				SelectedOptions: map[string]string{"Size": "Huge", "Milk": "Oat"},
			},
			want:      800,
			formatted: "$8.00",
		},
		{
			name: "negative surcharge ignored",
			entry: CartEntry{
				BasePriceCents:  100,
				Quantity:        1,
				Options:         []models.OptionGroup{{Name: "Promo", Choices: []models.Choice{{Label: "X", PriceCents: -50}}}},
				SelectedOptions: map[string]string{"Promo": "X"},
			},
			want:      100,
			formatted: "$1.00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(tt.entry)
			if got != tt.want {
				t.Errorf("LineTotal = %d, want %d", got, tt.want)
			}
			if got < tt.entry.BasePriceCents*int64(tt.entry.Quantity) {
				t.Errorf("LineTotal %d below base*qty", got)
			}
			if f := FormatPrice(got); f != tt.formatted {
				t.Errorf("FormatPrice(%d) = %q, want %q", got, f, tt.formatted)
			}
		})
	}
}

func TestCartTotal(t *testing.T) {
	if got := CartTotal(nil); got != 0 {
		t.Errorf("CartTotal(nil) = %d, want 0", got)
	}
	a := CartEntry{BasePriceCents: 500, Quantity: 3}
	b := CartEntry{BasePriceCents: 800, Quantity: 2, Options: []models.OptionGroup{sizeGroup}, SelectedOptions: map[string]string{"Size": "Large"}}
	c := CartEntry{BasePriceCents: 250, Quantity: 1}
	want := int64(1500 + 2000 + 250)
	for _, order := range [][]CartEntry{{a, b, c}, {c, b, a}, {b, a, c}} {
		if got := CartTotal(order); got != want {
			t.Errorf("CartTotal = %d, want %d", got, want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{199, "$1.99"},
		{123456, "$1234.56"},
		{-10, "$0.00"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.cents); got != tt.want {
			t.Errorf("FormatPrice(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestOptionSummary(t *testing.T) {
	e := CartEntry{
		Options: []models.OptionGroup{sizeGroup, {Name: "Milk", Choices: []models.Choice{{Label: "Oat"}}}},
		SelectedOptions: map[string]string{"Size": "Large", "Milk": "Soy"},
	}
	got := OptionSummary(e)
	if len(got) != 1 || got[0] != "Size: Large" {
		t.Errorf("OptionSummary = %v, want [Size: Large]", got)
	}
}

func TestLineTotal_SaturatesInsteadOfWrapping(t *testing.T) {
	e := CartEntry{
		BasePriceCents: math.MaxInt64 / 2,
		Quantity:       3,
		Options:        []models.OptionGroup{sizeGroup},
		SelectedOptions: map[string]string{
			"Size": "Large",
		},
	}
	if got := LineTotal(e); got != math.MaxInt64 {
		t.Errorf("LineTotal = %d, want saturation at MaxInt64", got)
	}
	if got := CartTotal([]CartEntry{e, e}); got != math.MaxInt64 {
		t.Errorf("CartTotal = %d, want saturation at MaxInt64", got)
	}
}
