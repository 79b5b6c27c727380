package topping

// DefaultRecentLimit bounds the recent list when no limit is configured
const DefaultRecentLimit = 10

// RecentList is a bounded, most-recent-first list of topping names.
// It lives only on the client and losing it is harmless.
type RecentList struct {
	limit int
	names []string
}

// NewRecentList creates a recent list holding at most limit names
func NewRecentList(limit int) *RecentList {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &RecentList{limit: limit}
}

// Push moves name to the front, dropping an older same-key entry and
// anything beyond the limit
func (r *RecentList) Push(name string) {
	if r == nil || Key(name) == "" {
		return
	}
	r.remove(Key(name))
	r.names = append([]string{name}, r.names...)
	if len(r.names) > r.limit {
		r.names = r.names[:r.limit]
	}
}

// Rename replaces old with new in place, keeping its position
func (r *RecentList) Rename(oldName, newName string) {
	if r == nil {
		return
	}
	oldKey, newKey := Key(oldName), Key(newName)
	if r.indexOf(oldKey) < 0 {
		return
	}
	if newKey != oldKey {
		r.remove(newKey)
	}
	r.names[r.indexOf(oldKey)] = newName
}

// Remove drops name from the list
func (r *RecentList) Remove(name string) {
	if r == nil {
		return
	}
	r.remove(Key(name))
}

// Rank returns the position of name, or -1 when it is not recent
func (r *RecentList) Rank(name string) int {
	if r == nil {
		return -1
	}
	return r.indexOf(Key(name))
}

// Names returns a copy of the list, most recent first
func (r *RecentList) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}

// Len returns the number of recent names
func (r *RecentList) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

func (r *RecentList) indexOf(key string) int {
	for i, n := range r.names {
		if Key(n) == key {
			return i
		}
	}
	return -1
}

func (r *RecentList) remove(key string) {
	if i := r.indexOf(key); i >= 0 {
		r.names = append(r.names[:i], r.names[i+1:]...)
	}
}
