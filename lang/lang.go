// Package lang holds the user-facing message catalog.
package lang

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

const En = "en"

//go:embed messages.yaml
var catalogYAML []byte

var catalog map[string]map[string]string

func init() {
	if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
		panic(fmt.Sprintf("lang: parse messages.yaml: %v", err))
	}
}

// T returns the message for key in the given language, formatted with args.
// Unknown languages fall back to English; unknown keys return the key itself.
func T(code, key string, args ...interface{}) string {
	msgs, ok := catalog[code]
	if !ok {
		msgs = catalog[En]
	}
	s, ok := msgs[key]
	if !ok {
		if s, ok = catalog[En][key]; !ok {
			return key
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

// Has reports whether key exists in the English catalog.
func Has(key string) bool {
	_, ok := catalog[En][key]
	return ok
}
