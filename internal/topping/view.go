package topping

import (
	"context"
	"sort"
	"strings"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
)

// Mutator applies topping changes to the pizza store. *Coordinator implements it.
type Mutator interface {
	Rename(ctx context.Context, oldName, newName string) (*Result, error)
	Delete(ctx context.Context, names []string) (*Result, error)
}

// Edit is the inline edit state of one row
type Edit struct {
	Original string
	Draft    string
	// Err is set when the last commit failed; the draft is kept
	Err error
}

// View holds the client-side state of the topping screen: the projection,
// filter text, sort mode, recent list, selection and rows being edited.
// Selected and Editing are keyed by Key(name).
type View struct {
	Toppings []Topping
	Filter   string
	Sort     SortMode
	Recent   *RecentList
	Selected map[string]string
	Editing  map[string]*Edit
}

// NewView creates an empty view with a recent list bounded by recentLimit
func NewView(recentLimit int) *View {
	return &View{
		Sort:     SortNameAsc,
		Recent:   NewRecentList(recentLimit),
		Selected: make(map[string]string),
		Editing:  make(map[string]*Edit),
	}
}

// Refresh rebuilds the projection from an authoritative pizza collection.
// Selections and edits of toppings that no longer exist are dropped.
func (v *View) Refresh(pizzas []models.Pizza) {
	v.Toppings = BuildIndex(pizzas)
	for key := range v.Selected {
		if t, ok := Find(v.Toppings, key); ok {
			v.Selected[key] = t.Name
		} else {
			delete(v.Selected, key)
		}
	}
	for key := range v.Editing {
		if _, ok := Find(v.Toppings, key); !ok {
			delete(v.Editing, key)
		}
	}
}

// Visible returns the filtered and sorted toppings
func (v *View) Visible() []Topping {
	return SortToppings(FilterToppings(v.Toppings, v.Filter), v.Sort, v.Recent)
}

// AddTopping adds a name that no pizza uses yet. It is client-local until a
// pizza references it and disappears on the next Refresh otherwise.
func (v *View) AddTopping(name string) error {
	if err := CheckName(v.Toppings, name, ""); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	v.Toppings = append(v.Toppings, Topping{Name: name})
	v.Recent.Push(name)
	return nil
}

// Toggle flips the selection of name and reports whether it is now selected
func (v *View) Toggle(name string) bool {
	key := Key(name)
	if _, ok := v.Selected[key]; ok {
		delete(v.Selected, key)
		return false
	}
	t, ok := Find(v.Toppings, name)
	if !ok {
		return false
	}
	v.Selected[key] = t.Name
	return true
}

// IsSelected reports whether name is selected
func (v *View) IsSelected(name string) bool {
	_, ok := v.Selected[Key(name)]
	return ok
}

// SelectAll selects every topping in the current filtered view
func (v *View) SelectAll() {
	for _, t := range v.Visible() {
		v.Selected[Key(t.Name)] = t.Name
	}
}

// ClearSelection deselects everything
func (v *View) ClearSelection() {
	v.Selected = make(map[string]string)
}

// SelectionSnapshot returns the selected names, sorted, as of now
func (v *View) SelectionSnapshot() []string {
	names := make([]string, 0, len(v.Selected))
	for _, name := range v.Selected {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return alphaLess(Topping{Name: names[i]}, Topping{Name: names[j]})
	})
	return names
}

// BeginEdit switches the row of name into edit mode with the current name as draft
func (v *View) BeginEdit(name string) bool {
	t, ok := Find(v.Toppings, name)
	if !ok {
		return false
	}
	v.Editing[Key(t.Name)] = &Edit{Original: t.Name, Draft: t.Name}
	return true
}

// SetDraft updates the draft of a row in edit mode and clears its error
func (v *View) SetDraft(name, draft string) bool {
	e, ok := v.Editing[Key(name)]
	if !ok {
		return false
	}
	e.Draft = draft
	e.Err = nil
	return true
}

// CancelEdit leaves edit mode without changes
func (v *View) CancelEdit(name string) {
	delete(v.Editing, Key(name))
}

// EditState returns the edit state of name's row
func (v *View) EditState(name string) (*Edit, bool) {
	e, ok := v.Editing[Key(name)]
	return e, ok
}

// CommitEdit validates the draft and renames the topping through m.
// On failure the row stays in edit mode with Err set and the draft intact.
func (v *View) CommitEdit(ctx context.Context, m Mutator, name string) (*Result, error) {
	key := Key(name)
	e, ok := v.Editing[key]
	if !ok {
		return nil, ErrNotEditing
	}
	if err := CheckName(v.Toppings, e.Draft, e.Original); err != nil {
		e.Err = err
		return nil, err
	}
	draft := strings.TrimSpace(e.Draft)
	if draft == e.Original {
		delete(v.Editing, key)
		return &Result{Updated: []models.Pizza{}}, nil
	}

	res, err := m.Rename(ctx, e.Original, draft)
	if err != nil {
		e.Err = err
		return res, err
	}
	delete(v.Editing, key)
	v.ApplyRename(e.Original, draft)
	return res, nil
}

// BulkDelete deletes the selection as of the call through m and patches the view
func (v *View) BulkDelete(ctx context.Context, m Mutator) (*Result, error) {
	names := v.SelectionSnapshot()
	if len(names) == 0 {
		return nil, &ValidationError{Field: "selection", Err: ErrNoNames}
	}
	res, err := m.Delete(ctx, names)
	if err != nil {
		// On a BatchError some pizzas were written; only Refresh shows the real state.
		return res, err
	}
	v.ApplyDelete(names)
	return res, nil
}

// ApplyRename patches the projection after a successful rename. When the new
// name already exists under another casing the usages are merged.
func (v *View) ApplyRename(oldName, newName string) {
	oldKey, newKey := Key(oldName), Key(newName)
	from := v.position(oldKey)
	if from < 0 {
		return
	}
	if to := v.position(newKey); to >= 0 && to != from {
		v.Toppings[to].Usage += v.Toppings[from].Usage
		v.Toppings = append(v.Toppings[:from], v.Toppings[from+1:]...)
	} else {
		v.Toppings[from].Name = strings.TrimSpace(newName)
	}
	v.Recent.Rename(oldName, newName)
	if _, ok := v.Selected[oldKey]; ok {
		delete(v.Selected, oldKey)
		v.Selected[newKey] = strings.TrimSpace(newName)
	}
}

// ApplyDelete patches the projection after a successful delete
func (v *View) ApplyDelete(names []string) {
	for _, name := range names {
		key := Key(name)
		if i := v.position(key); i >= 0 {
			v.Toppings = append(v.Toppings[:i], v.Toppings[i+1:]...)
		}
		v.Recent.Remove(name)
		delete(v.Selected, key)
		delete(v.Editing, key)
	}
}

func (v *View) position(key string) int {
	for i, t := range v.Toppings {
		if Key(t.Name) == key {
			return i
		}
	}
	return -1
}
