package models

// MenuItem is a menu entry as served by GET /menu.
type MenuItem struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Category    string        `json:"category"`
	PriceCents  int64         `json:"price_cents"`
	ImageURL    *string       `json:"image_url,omitempty"`
	Options     []OptionGroup `json:"options,omitempty"`
}

// OptionGroup is a named set of mutually exclusive choices.
type OptionGroup struct {
	Name     string   `json:"name"`
	Required bool     `json:"required"`
	Choices  []Choice `json:"choices"`
}

type Choice struct {
	Label      string `json:"label"`
	PriceCents int64  `json:"price_cents"`
}

// MenuItemInput is the body of POST /menu and PUT /menu/{id}.
type MenuItemInput struct {
	Name        string        `json:"name"`
	Category    string        `json:"category"`
	PriceCents  int64         `json:"price_cents"`
	Description *string       `json:"description"`
	ImageURL    *string       `json:"image_url,omitempty"`
	Options     []OptionGroup `json:"options"`
}

// DescriptionText returns the description or "" when unset.
func (m MenuItem) DescriptionText() string {
	if m.Description == nil {
		return ""
	}
	return *m.Description
}

// Group returns the option group with the given name.
func (m MenuItem) Group(name string) (OptionGroup, bool) {
	for _, g := range m.Options {
		if g.Name == name {
			return g, true
		}
	}
	return OptionGroup{}, false
}

// Choice returns the choice with the given label.
func (g OptionGroup) Choice(label string) (Choice, bool) {
	for _, c := range g.Choices {
		if c.Label == label {
			return c, true
		}
	}
	return Choice{}, false
}
