package lang

import "testing"

func TestT(t *testing.T) {
	tests := []struct {
		code, key string
		args      []interface{}
		want      string
	}{
		{En, "cart_is_empty", nil, "Cart is empty."},
		{En, "confirm_delete_item", []interface{}{"Latte"}, "Delete Latte?"},
		{"xx", "order_placed", nil, "Order placed!"},
		{En, "no_such_key", nil, "no_such_key"},
	}
	for _, tt := range tests {
		if got := T(tt.code, tt.key, tt.args...); got != tt.want {
			t.Errorf("T(%q, %q) = %q, want %q", tt.code, tt.key, got, tt.want)
		}
	}
}

func TestHas(t *testing.T) {
	if !Has("request_failed") {
		t.Error("request_failed should be in the catalog")
	}
	if Has("nope") {
		t.Error("nope should not be in the catalog")
	}
}
