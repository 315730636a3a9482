package bot

import (
	"reflect"
	"testing"

	"go.uber.org/zap"

	"menu-telegram/app"
)

func zapNop() *zap.Logger { return zap.NewNop() }

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text   string
		events []app.Event
		reply  string
		secret bool
	}{
		{text: "/start", events: []app.Event{app.Init{}}},
		{text: "/menu@menu_bot", events: []app.Event{app.Refresh{}}},
		{text: "/login a@b.c pw123", events: []app.Event{app.Login{Email: "a@b.c", Password: "pw123"}}, secret: true},
		{text: "/register a@b.c pw123", events: []app.Event{app.Register{Email: "a@b.c", Password: "pw123"}}, secret: true},
		{text: "/login a@b.c", reply: "login_usage"},
		{text: "/register a@b.c pw extra", reply: "register_usage", secret: true},
		{text: "/logout", events: []app.Event{app.Logout{}}},
		{text: "/master", events: []app.Event{app.BecomeMaster{}}},
		{text: "/order Table 4", events: []app.Event{app.PlaceOrder{Name: "Table 4"}}},
		{text: "/order", events: []app.Event{app.PlaceOrder{}}},
		{text: "/qty 3", events: []app.Event{app.SetQuantity{Quantity: 3}}},
		{text: "/qty many", reply: "qty_usage"},
		{text: "/qty 0", reply: "qty_usage"},
		{text: "/qty 1000", reply: "qty_usage"},
		{text: "/qty 99999999999999999", reply: "qty_usage"},
		{text: "/qty 999", events: []app.Event{app.SetQuantity{Quantity: 999}}},
		{text: "/item\nname: Tea\ncategory: Drinks", events: []app.Event{app.SubmitMenuForm{Raw: "name: Tea\ncategory: Drinks"}}},
		{text: "/item", reply: "item_usage"},
		{text: "/cancel", events: []app.Event{app.CloseModal{}, app.CancelEdit{}}},
		{text: "/bogus", reply: "unknown_command"},
		{text: "just chatting", reply: "unknown_command"},
	}
	for _, tt := range tests {
		got := parseCommand(tt.text)
		if !reflect.DeepEqual(got.events, tt.events) || got.reply != tt.reply || got.secret != tt.secret {
			t.Errorf("parseCommand(%q) = %+v, want events=%v reply=%q secret=%v", tt.text, got, tt.events, tt.reply, tt.secret)
		}
	}
}
