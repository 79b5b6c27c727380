package topping

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// PizzaStore is the authoritative pizza collection a Coordinator writes to.
// It is satisfied by the gorm-backed pizza service and by the REST client.
type PizzaStore interface {
	// ListPizzas returns every pizza in the store
	ListPizzas(ctx context.Context) ([]models.Pizza, error)
	// UpdatePizza replaces a pizza and returns the stored version
	UpdatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error)
}

// Result describes the pizzas written by a rename or delete
type Result struct {
	// Updated holds the pizzas as returned by the store, one per successful write
	Updated []models.Pizza `json:"updated"`
	// Affected is the number of pizzas that referenced the topping(s)
	Affected int `json:"affected"`
}

// Coordinator propagates topping renames and deletes to every pizza that
// references the topping. Each pizza is written independently; a failed write
// does not undo the others.
type Coordinator struct {
	store       PizzaStore
	maxParallel int
	log         logrus.FieldLogger
}

// NewCoordinator creates a Coordinator writing to store. maxParallel caps the
// number of in-flight updates; zero or less means no cap.
func NewCoordinator(store PizzaStore, maxParallel int) *Coordinator {
	return &Coordinator{store: store, maxParallel: maxParallel, log: log}
}

// WithLogger returns the coordinator logging to l
func (c *Coordinator) WithLogger(l logrus.FieldLogger) *Coordinator {
	c.log = l
	return c
}

// CheckName validates a candidate topping name against the current index.
// exclude is the name being replaced; matching it is not a duplicate.
func CheckName(index []Topping, name, exclude string) error {
	if Key(name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if Key(name) == Key(exclude) {
		return nil
	}
	if existing, ok := Find(index, name); ok {
		return &DuplicateNameError{Name: strings.TrimSpace(name), Existing: existing.Name}
	}
	return nil
}

// Rename replaces oldName with newName in every pizza that lists it.
// newName must not collide, ignoring case, with any other current topping.
func (c *Coordinator) Rename(ctx context.Context, oldName, newName string) (*Result, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	oldKey := Key(oldName)
	if oldKey == "" {
		return nil, &ValidationError{Field: "topping", Err: ErrEmptyName}
	}

	pizzas, err := c.store.ListPizzas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pizzas: %w", err)
	}
	if err := CheckName(BuildIndex(pizzas), newName, oldName); err != nil {
		return nil, err
	}
	if strings.TrimSpace(oldName) == newName {
		return &Result{Updated: []models.Pizza{}}, nil
	}

	var pending []models.Pizza
	for _, pizza := range pizzas {
		if !Contains(pizza.Toppings, oldName) {
			continue
		}
		updated := pizza.Clone()
		for i, t := range updated.Toppings {
			if Key(t) == oldKey {
				updated.Toppings[i] = newName
			}
		}
		pending = append(pending, updated)
	}

	c.log.WithFields(logrus.Fields{
		"topping":  oldName,
		"new_name": newName,
		"affected": len(pending),
	}).Info("Renaming topping")

	return c.apply(ctx, "rename", pending)
}

// Delete removes every listed topping from each pizza that references one
func (c *Coordinator) Delete(ctx context.Context, names []string) (*Result, error) {
	keys := make(map[string]struct{}, len(names))
	for _, name := range names {
		if k := Key(name); k != "" {
			keys[k] = struct{}{}
		}
	}
	if len(keys) == 0 {
		return nil, &ValidationError{Field: "names", Err: ErrNoNames}
	}

	pizzas, err := c.store.ListPizzas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pizzas: %w", err)
	}

	var pending []models.Pizza
	for _, pizza := range pizzas {
		kept := make([]string, 0, len(pizza.Toppings))
		for _, t := range pizza.Toppings {
			if _, drop := keys[Key(t)]; !drop {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(pizza.Toppings) {
			continue
		}
		updated := pizza.Clone()
		updated.Toppings = kept
		pending = append(pending, updated)
	}

	c.log.WithFields(logrus.Fields{
		"toppings": names,
		"affected": len(pending),
	}).Info("Deleting toppings")

	return c.apply(ctx, "delete", pending)
}

// apply writes every pending pizza and waits for all of them. Failures are
// collected rather than cancelling the writes still in flight.
func (c *Coordinator) apply(ctx context.Context, op string, pending []models.Pizza) (*Result, error) {
	results := make([]*models.Pizza, len(pending))
	failed := make(map[int]error)
	var mu sync.Mutex

	var g errgroup.Group
	if c.maxParallel > 0 {
		g.SetLimit(c.maxParallel)
	}
	for i, pizza := range pending {
		g.Go(func() error {
			updated, err := c.store.UpdatePizza(ctx, pizza)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[pizza.ID] = err
				c.log.WithFields(logrus.Fields{
					"op":       op,
					"pizza_id": pizza.ID,
				}).WithError(err).Warn("Pizza update failed")
				return nil
			}
			results[i] = &updated
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{Updated: make([]models.Pizza, 0, len(pending)), Affected: len(pending)}
	succeeded := make([]int, 0, len(pending))
	for i, p := range results {
		if p != nil {
			result.Updated = append(result.Updated, *p)
			succeeded = append(succeeded, pending[i].ID)
		}
	}

	if len(failed) > 0 {
		return result, &BatchError{Op: op, Failed: failed, Succeeded: succeeded}
	}
	return result, nil
}
