package topping

import (
	"context"
	"errors"
	"testing"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenamePropagatesToEveryReferencingPizza(t *testing.T) {
	store := newMemoryStore(examplePizzas()...)
	coordinator := NewCoordinator(store, 0)

	result, err := coordinator.Rename(context.Background(), "Ham", "Smoked Ham")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Affected)
	assert.Len(t, result.Updated, 2)
	assert.Equal(t, []int{1, 2}, store.updatedIDs(), "one PUT per affected pizza")
	assert.Equal(t, []string{"Mozzarella", "Smoked Ham"}, store.get(1).Toppings)
	assert.Equal(t, []string{"Smoked Ham", "Olives"}, store.get(2).Toppings)
}

func TestRenameLeavesUnrelatedPizzasUntouched(t *testing.T) {
	store := newMemoryStore(
		models.Pizza{ID: 1, Toppings: []string{"Ham", "Basil", "ham"}},
		models.Pizza{ID: 2, Toppings: []string{"Olives"}},
		models.Pizza{ID: 3, Toppings: []string{"Hamburger"}},
	)
	coordinator := NewCoordinator(store, 1)

	_, err := coordinator.Rename(context.Background(), "ham", "Prosciutto")
	require.NoError(t, err)

	assert.Equal(t, []int{1}, store.updatedIDs())
	assert.Equal(t, []string{"Prosciutto", "Basil", "Prosciutto"}, store.get(1).Toppings,
		"every occurrence is replaced, position count kept")
	assert.Equal(t, []string{"Olives"}, store.get(2).Toppings)
	assert.Equal(t, []string{"Hamburger"}, store.get(3).Toppings)
}

func TestRenameValidation(t *testing.T) {
	testCases := []struct {
		name    string
		oldName string
		newName string
		target  error
	}{
		{name: "empty new name", oldName: "Ham", newName: "   ", target: ErrEmptyName},
		{name: "empty old name", oldName: "", newName: "Bacon", target: ErrEmptyName},
		{name: "duplicate of another topping", oldName: "Ham", newName: "olives", target: ErrDuplicateName},
		{name: "duplicate with surrounding space", oldName: "Ham", newName: " MOZZARELLA ", target: ErrDuplicateName},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore(examplePizzas()...)
			coordinator := NewCoordinator(store, 0)

			result, err := coordinator.Rename(context.Background(), tt.oldName, tt.newName)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, IsValidation(err))
			assert.Empty(t, store.updatedIDs(), "no write may happen on validation failure")
		})
	}
}

func TestRenameDuplicateErrorNamesExistingTopping(t *testing.T) {
	coordinator := NewCoordinator(newMemoryStore(examplePizzas()...), 0)

	_, err := coordinator.Rename(context.Background(), "Ham", "OLIVES")

	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Olives", dup.Existing)
}

func TestRenameCaseOnlyChangeIsAllowed(t *testing.T) {
	store := newMemoryStore(examplePizzas()...)
	coordinator := NewCoordinator(store, 0)

	_, err := coordinator.Rename(context.Background(), "Ham", "HAM")
	require.NoError(t, err)

	assert.Equal(t, []string{"HAM", "Olives"}, store.get(2).Toppings)
}

func TestRenameToSameNameWritesNothing(t *testing.T) {
	store := newMemoryStore(examplePizzas()...)
	coordinator := NewCoordinator(store, 0)

	result, err := coordinator.Rename(context.Background(), "Ham", " Ham ")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Affected)
	assert.Empty(t, store.updatedIDs())
}

func TestRenamePartialFailureIsNotRolledBack(t *testing.T) {
	store := newMemoryStore(examplePizzas()...)
	store.fail[2] = true
	coordinator := NewCoordinator(store, 0)

	result, err := coordinator.Rename(context.Background(), "Ham", "Smoked Ham")

	var batch *BatchError
	require.ErrorAs(t, err, &batch)
	assert.ErrorIs(t, err, errUpdateRejected)
	assert.Equal(t, []int{2}, batch.FailedIDs())
	assert.Equal(t, []int{1}, batch.Succeeded)
	assert.Equal(t, 2, result.Affected)
	assert.Len(t, result.Updated, 1)

	assert.Equal(t, []string{"Mozzarella", "Smoked Ham"}, store.get(1).Toppings)
	assert.Equal(t, []string{"ham", "Olives"}, store.get(2).Toppings)
	assert.Contains(t, err.Error(), "1 of 2 pizza updates failed")
}

func TestRenameSurfacesListFailure(t *testing.T) {
	store := newMemoryStore()
	store.listErr = errors.New("connection refused")
	coordinator := NewCoordinator(store, 0)

	_, err := coordinator.Rename(context.Background(), "Ham", "Bacon")

	assert.ErrorIs(t, err, store.listErr)
	assert.False(t, IsValidation(err))
}

func TestDeleteRemovesAllNamedToppings(t *testing.T) {
	store := newMemoryStore(
		models.Pizza{ID: 1, Toppings: []string{"Mozzarella", "Ham"}},
		models.Pizza{ID: 2, Toppings: []string{"ham", "Olives", "Basil"}},
		models.Pizza{ID: 3, Toppings: []string{"Basil"}},
	)
	coordinator := NewCoordinator(store, 0)

	result, err := coordinator.Delete(context.Background(), []string{"Ham", "olives"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Affected)
	assert.Equal(t, []int{1, 2}, store.updatedIDs())
	for _, p := range result.Updated {
		assert.False(t, Contains(p.Toppings, "Ham"))
		assert.False(t, Contains(p.Toppings, "Olives"))
	}
	assert.Equal(t, []string{"Mozzarella"}, store.get(1).Toppings)
	assert.Equal(t, []string{"Basil"}, store.get(2).Toppings)
	assert.Equal(t, []string{"Basil"}, store.get(3).Toppings)
}

func TestDeleteRequiresNames(t *testing.T) {
	store := newMemoryStore(examplePizzas()...)
	coordinator := NewCoordinator(store, 0)

	_, err := coordinator.Delete(context.Background(), []string{" ", ""})

	assert.ErrorIs(t, err, ErrNoNames)
	assert.Empty(t, store.updatedIDs())
}

func TestDeleteUnusedToppingWritesNothing(t *testing.T) {
	store := newMemoryStore(examplePizzas()...)
	coordinator := NewCoordinator(store, 0)

	result, err := coordinator.Delete(context.Background(), []string{"Pineapple"})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Affected)
	assert.Empty(t, store.updatedIDs())
}

func TestDeletePartialFailure(t *testing.T) {
	store := newMemoryStore(examplePizzas()...)
	store.fail[1] = true
	coordinator := NewCoordinator(store, 0)

	_, err := coordinator.Delete(context.Background(), []string{"ham"})

	var batch *BatchError
	require.ErrorAs(t, err, &batch)
	assert.Equal(t, "delete", batch.Op)
	assert.Equal(t, []int{1}, batch.FailedIDs())
	assert.Equal(t, []string{"Olives"}, store.get(2).Toppings)
}
