package bot

import (
	"strconv"
	"strings"

	"menu-telegram/app"
	"menu-telegram/services"
)

// command is a parsed chat message: the events to post, or a catalog key to
// reply with when the message cannot be handled.
type command struct {
	events []app.Event
	reply  string
	// secret marks messages carrying a password; the bot deletes them.
	secret bool
}

func parseCommand(text string) command {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return command{reply: "unknown_command"}
	}
	head, rest := text, ""
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		head, rest = text[:i], strings.TrimSpace(text[i+1:])
	}
	name := strings.ToLower(strings.TrimPrefix(head, "/"))
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}

	switch name {
	case "start":
		return command{events: []app.Event{app.Init{}}}
	case "menu":
		return command{events: []app.Event{app.Refresh{}}}
	case "login", "register":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return command{reply: name + "_usage", secret: len(fields) > 1}
		}
		if name == "login" {
			return command{events: []app.Event{app.Login{Email: fields[0], Password: fields[1]}}, secret: true}
		}
		return command{events: []app.Event{app.Register{Email: fields[0], Password: fields[1]}}, secret: true}
	case "logout":
		return command{events: []app.Event{app.Logout{}}}
	case "master":
		return command{events: []app.Event{app.BecomeMaster{}}}
	case "order":
		return command{events: []app.Event{app.PlaceOrder{Name: rest}}}
	case "qty":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 || n > services.MaxQuantity {
			return command{reply: "qty_usage"}
		}
		return command{events: []app.Event{app.SetQuantity{Quantity: n}}}
	case "item":
		if rest == "" {
			return command{reply: "item_usage"}
		}
		return command{events: []app.Event{app.SubmitMenuForm{Raw: rest}}}
	case "cancel":
		return command{events: []app.Event{app.CloseModal{}, app.CancelEdit{}}}
	}
	return command{reply: "unknown_command"}
}
