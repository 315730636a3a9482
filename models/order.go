package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderItemInput is one line of POST /orders.
type OrderItemInput struct {
	MenuItemID      int64             `json:"menu_item_id"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options"`
}

type OrderInput struct {
	Name  string           `json:"name"`
	Items []OrderItemInput `json:"items"`
}

// SelectedOption is a priced selection echoed back by the server.
type SelectedOption struct {
	Group      string `json:"group"`
	Label      string `json:"label"`
	PriceCents int64  `json:"price_cents"`
}

// OrderLine is an order item as the server stores it.
type OrderLine struct {
	MenuItemID      int64             `json:"menu_item_id"`
	Name            string            `json:"name"`
	Quantity        int               `json:"quantity"`
	BasePriceCents  int64             `json:"base_price_cents"`
	Options         []SelectedOption  `json:"options,omitempty"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	LineTotalCents  int64             `json:"line_total_cents"`
}

// Order is a row of GET /orders.
type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	Name       *string     `json:"name"`
	Items      []OrderLine `json:"items"`
	TotalCents int64       `json:"total_cents"`
	Served     bool        `json:"served"`
	CreatedAt  Timestamp   `json:"created_at"`
}

// DisplayName falls back to "Order" for unnamed orders.
func (o Order) DisplayName() string {
	if o.Name == nil || *o.Name == "" {
		return "Order"
	}
	return *o.Name
}

// Timestamp accepts RFC 3339 as well as the zone-less ISO form the API emits.
// Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.Format(time.RFC3339Nano) + `"`), nil
}
