package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"menu-telegram/lang"
	"menu-telegram/models"
	"menu-telegram/services"
)

// ParseMenuForm reads "key: value" lines into a menu item payload.
// Everything after "options:" (same line and below) is the options JSON.
func ParseMenuForm(raw string) (models.MenuItemInput, error) {
	var in models.MenuItemInput
	var optionsRaw string
	var price string
	seenPrice := false

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return in, services.NewValidation(lang.T(lang.En, "form_field_unknown", line))
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "name":
			in.Name = value
		case "category":
			in.Category = value
		case "price_cents", "price":
			price, seenPrice = value, true
		case "description":
			if value != "" {
				in.Description = &value
			}
		case "image_url":
			if value != "" {
				in.ImageURL = &value
			}
		case "options":
			optionsRaw = strings.TrimSpace(value + "\n" + strings.Join(lines[i+1:], "\n"))
		default:
			return in, services.NewValidation(lang.T(lang.En, "form_field_unknown", key))
		}
		if key == "options" {
			break
		}
	}

	if optionsRaw != "" {
		if err := json.Unmarshal([]byte(optionsRaw), &in.Options); err != nil {
			return in, services.NewValidation(lang.T(lang.En, "options_json_invalid"))
		}
	}
	if in.Name == "" {
		return in, services.NewValidation(lang.T(lang.En, "form_name_required"))
	}
	if in.Category == "" {
		return in, services.NewValidation(lang.T(lang.En, "form_category_required"))
	}
	cents, err := strconv.ParseInt(price, 10, 64)
	if !seenPrice || err != nil || cents < 0 {
		return in, services.NewValidation(lang.T(lang.En, "form_price_invalid"))
	}
	in.PriceCents = cents
	return in, nil
}

// FormatMenuForm renders item in the format ParseMenuForm reads.
func FormatMenuForm(item models.MenuItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", item.Name)
	fmt.Fprintf(&b, "category: %s\n", item.Category)
	fmt.Fprintf(&b, "price_cents: %d\n", item.PriceCents)
	fmt.Fprintf(&b, "description: %s\n", item.DescriptionText())
	if item.ImageURL != nil {
		fmt.Fprintf(&b, "image_url: %s\n", *item.ImageURL)
	}
	if len(item.Options) > 0 {
		opts, err := json.MarshalIndent(item.Options, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "options: %s\n", opts)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
