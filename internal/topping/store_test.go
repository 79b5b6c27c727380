package topping

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
)

var errUpdateRejected = errors.New("update rejected")

// memoryStore is an in-memory PizzaStore recording every update
type memoryStore struct {
	mu      sync.Mutex
	pizzas  map[int]models.Pizza
	fail    map[int]bool
	listErr error
	updates []int
}

func newMemoryStore(pizzas ...models.Pizza) *memoryStore {
	s := &memoryStore{pizzas: make(map[int]models.Pizza), fail: make(map[int]bool)}
	for _, p := range pizzas {
		s.pizzas[p.ID] = p.Clone()
	}
	return s
}

func (s *memoryStore) ListPizzas(ctx context.Context) ([]models.Pizza, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Pizza, 0, len(s.pizzas))
	for _, p := range s.pizzas {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) UpdatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, pizza.ID)
	if s.fail[pizza.ID] {
		return models.Pizza{}, errUpdateRejected
	}
	s.pizzas[pizza.ID] = pizza.Clone()
	return pizza, nil
}

func (s *memoryStore) get(id int) models.Pizza {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pizzas[id]
}

func (s *memoryStore) updatedIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := append([]int(nil), s.updates...)
	sort.Ints(ids)
	return ids
}
