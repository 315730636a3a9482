package app

import (
	"fmt"
	"strconv"
	"strings"
)

// Event is anything a Session reacts to: user commands, button presses,
// poll ticks and confirmation answers.
type Event interface {
	isEvent()
}

type (
	// Init refreshes the user, loads the menu and renders everything.
	Init struct{}
	// Refresh reloads the menu and re-renders.
	Refresh struct{}

	Login struct {
		Email    string
		Password string
	}
	Register struct {
		Email    string
		Password string
	}
	Logout       struct{}
	BecomeMaster struct{}

	OpenItem struct {
		ItemID int64
	}
	// SelectChoice picks choice Choice of option group Group in the open modal.
	SelectChoice struct {
		Group  int
		Choice int
	}
	ClearChoice struct {
		Group int
	}
	AdjustQuantity struct {
		Delta int
	}
	SetQuantity struct {
		Quantity int
	}
	AddToCart  struct{}
	CloseModal struct{}

	RemoveFromCart struct {
		Index int
	}
	PlaceOrder struct {
		Name string
	}

	StartEdit struct {
		ItemID int64
	}
	CancelEdit     struct{}
	SubmitMenuForm struct {
		Raw string
	}
	DeleteItem struct {
		ItemID int64
	}
	ClearMenu struct{}

	MarkServed struct {
		OrderID int64
	}
	ClearOrders struct{}
	DeleteUser  struct {
		UserID int64
	}

	// PollOrders is posted by the poller; it reloads orders while in Master.
	PollOrders struct{}

	// Decision answers a Confirmation.
	Decision struct {
		ID       string
		Accepted bool
	}
)

func (Init) isEvent()           {}
func (Refresh) isEvent()        {}
func (Login) isEvent()          {}
func (Register) isEvent()       {}
func (Logout) isEvent()         {}
func (BecomeMaster) isEvent()   {}
func (OpenItem) isEvent()       {}
func (SelectChoice) isEvent()   {}
func (ClearChoice) isEvent()    {}
func (AdjustQuantity) isEvent() {}
func (SetQuantity) isEvent()    {}
func (AddToCart) isEvent()      {}
func (CloseModal) isEvent()     {}
func (RemoveFromCart) isEvent() {}
func (PlaceOrder) isEvent()     {}
func (StartEdit) isEvent()      {}
func (CancelEdit) isEvent()     {}
func (SubmitMenuForm) isEvent() {}
func (DeleteItem) isEvent()     {}
func (ClearMenu) isEvent()      {}
func (MarkServed) isEvent()     {}
func (ClearOrders) isEvent()    {}
func (DeleteUser) isEvent()     {}
func (PollOrders) isEvent()     {}
func (Decision) isEvent()       {}

// Action encodes a button event as callback data. Telegram limits callback
// data to 64 bytes, so actions carry ids and indexes only.
func Action(ev Event) string {
	switch e := ev.(type) {
	case Refresh:
		return "refresh"
	case Logout:
		return "logout"
	case BecomeMaster:
		return "master"
	case OpenItem:
		return fmt.Sprintf("open:%d", e.ItemID)
	case SelectChoice:
		return fmt.Sprintf("opt:%d:%d", e.Group, e.Choice)
	case ClearChoice:
		return fmt.Sprintf("noopt:%d", e.Group)
	case AdjustQuantity:
		return fmt.Sprintf("qty:%+d", e.Delta)
	case AddToCart:
		return "add"
	case CloseModal:
		return "close"
	case RemoveFromCart:
		return fmt.Sprintf("rm:%d", e.Index)
	case StartEdit:
		return fmt.Sprintf("edit:%d", e.ItemID)
	case CancelEdit:
		return "canceledit"
	case DeleteItem:
		return fmt.Sprintf("del:%d", e.ItemID)
	case ClearMenu:
		return "clearmenu"
	case MarkServed:
		return fmt.Sprintf("served:%d", e.OrderID)
	case ClearOrders:
		return "clearorders"
	case DeleteUser:
		return fmt.Sprintf("deluser:%d", e.UserID)
	case Decision:
		answer := "n"
		if e.Accepted {
			answer = "y"
		}
		return "decide:" + e.ID + ":" + answer
	}
	return ""
}

// ParseAction decodes callback data produced by Action.
func ParseAction(data string) (Event, error) {
	name, arg, _ := strings.Cut(data, ":")
	switch name {
	case "refresh":
		return Refresh{}, nil
	case "logout":
		return Logout{}, nil
	case "master":
		return BecomeMaster{}, nil
	case "add":
		return AddToCart{}, nil
	case "close":
		return CloseModal{}, nil
	case "canceledit":
		return CancelEdit{}, nil
	case "clearmenu":
		return ClearMenu{}, nil
	case "clearorders":
		return ClearOrders{}, nil
	case "open":
		id, err := parseID(arg)
		return OpenItem{ItemID: id}, err
	case "edit":
		id, err := parseID(arg)
		return StartEdit{ItemID: id}, err
	case "del":
		id, err := parseID(arg)
		return DeleteItem{ItemID: id}, err
	case "served":
		id, err := parseID(arg)
		return MarkServed{OrderID: id}, err
	case "deluser":
		id, err := parseID(arg)
		return DeleteUser{UserID: id}, err
	case "rm":
		i, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid action %q: %w", data, err)
		}
		return RemoveFromCart{Index: i}, nil
	case "noopt":
		g, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid action %q: %w", data, err)
		}
		return ClearChoice{Group: g}, nil
	case "opt":
		gs, cs, ok := strings.Cut(arg, ":")
		g, err1 := strconv.Atoi(gs)
		c, err2 := strconv.Atoi(cs)
		if !ok || err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid action %q", data)
		}
		return SelectChoice{Group: g, Choice: c}, nil
	case "qty":
		d, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid action %q: %w", data, err)
		}
		return AdjustQuantity{Delta: d}, nil
	case "decide":
		id, answer, ok := strings.Cut(arg, ":")
		if !ok || id == "" || (answer != "y" && answer != "n") {
			return nil, fmt.Errorf("invalid action %q", data)
		}
		return Decision{ID: id, Accepted: answer == "y"}, nil
	}
	return nil, fmt.Errorf("unknown action %q", data)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}
