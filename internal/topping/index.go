// Package topping derives the topping projection from pizza records and
// propagates topping renames and deletes back to every pizza that uses them.
package topping

import (
	"strings"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
)

// Topping is a derived view over Pizza.Toppings. It is never stored.
type Topping struct {
	Name  string `json:"name"`
	Usage int    `json:"usage"`
}

// Key trims and case-folds a topping name for comparison
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BuildIndex flattens the toppings of every pizza into a list of unique
// toppings with usage counts. Names are grouped case-insensitively and the
// first-seen casing is kept as the display name. Blank entries are skipped.
// The result is in first-seen order; callers sort.
func BuildIndex(pizzas []models.Pizza) []Topping {
	index := make([]Topping, 0)
	positions := make(map[string]int)
	for _, pizza := range pizzas {
		for _, raw := range pizza.Toppings {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if i, ok := positions[key]; ok {
				index[i].Usage++
				continue
			}
			positions[key] = len(index)
			index = append(index, Topping{Name: name, Usage: 1})
		}
	}
	return index
}

// Contains reports whether toppings holds name, ignoring case and surrounding space
func Contains(toppings []string, name string) bool {
	key := Key(name)
	if key == "" {
		return false
	}
	for _, t := range toppings {
		if Key(t) == key {
			return true
		}
	}
	return false
}

// Find returns the index entry whose key matches name
func Find(index []Topping, name string) (Topping, bool) {
	key := Key(name)
	for _, t := range index {
		if Key(t.Name) == key {
			return t, true
		}
	}
	return Topping{}, false
}
