package topping

import (
	"testing"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/stretchr/testify/assert"
)

func examplePizzas() []models.Pizza {
	return []models.Pizza{
		{ID: 1, Name: "Hawaii", Toppings: []string{"Mozzarella", "Ham"}},
		{ID: 2, Name: "Olive", Toppings: []string{"ham", "Olives"}},
	}
}

func TestBuildIndex(t *testing.T) {
	testCases := []struct {
		name     string
		pizzas   []models.Pizza
		expected []Topping
	}{
		{
			name:   "groups case-insensitively keeping first-seen casing",
			pizzas: examplePizzas(),
			expected: []Topping{
				{Name: "Mozzarella", Usage: 1},
				{Name: "Ham", Usage: 2},
				{Name: "Olives", Usage: 1},
			},
		},
		{
			name: "trims and skips blank entries",
			pizzas: []models.Pizza{
				{ID: 1, Toppings: []string{"  Basil ", "", "   "}},
				{ID: 2, Toppings: []string{"basil"}},
			},
			expected: []Topping{{Name: "Basil", Usage: 2}},
		},
		{
			name:     "pizzas without toppings",
			pizzas:   []models.Pizza{{ID: 1}, {ID: 2, Toppings: []string{}}},
			expected: []Topping{},
		},
		{
			name:     "no pizzas",
			pizzas:   nil,
			expected: []Topping{},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildIndex(tt.pizzas))
		})
	}
}

func TestBuildIndexUsageMatchesPizzaCount(t *testing.T) {
	pizzas := []models.Pizza{
		{ID: 1, Toppings: []string{"Tomato Sauce", "Mozzarella", "Basil"}},
		{ID: 2, Toppings: []string{"tomato sauce", "MOZZARELLA", "Pepperoni"}},
		{ID: 3, Toppings: []string{"Tomato Sauce ", "Olives"}},
	}

	for _, top := range BuildIndex(pizzas) {
		count := 0
		for _, p := range pizzas {
			if Contains(p.Toppings, top.Name) {
				count++
			}
		}
		assert.Equal(t, count, top.Usage, "usage of %s", top.Name)
	}
}

func TestBuildIndexIsIdempotent(t *testing.T) {
	pizzas := examplePizzas()
	first := BuildIndex(pizzas)
	second := BuildIndex(pizzas)
	assert.Equal(t, first, second)
	// the input is not modified
	assert.Equal(t, examplePizzas(), pizzas)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"Extra Cheese"}, " extra cheese "))
	assert.False(t, Contains([]string{"Extra Cheese"}, "Cheese"))
	assert.False(t, Contains([]string{""}, ""))
}

func TestFind(t *testing.T) {
	index := BuildIndex(examplePizzas())

	top, ok := Find(index, "HAM")
	assert.True(t, ok)
	assert.Equal(t, "Ham", top.Name)

	_, ok = Find(index, "Pineapple")
	assert.False(t, ok)
}
