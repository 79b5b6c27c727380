package topping

import (
	"fmt"
	"sort"
	"strings"
)

// SortMode selects how a topping list is ordered
type SortMode string

const (
	SortNameAsc   SortMode = "name"
	SortNameDesc  SortMode = "name-desc"
	SortUsageDesc SortMode = "usage"
	SortRecent    SortMode = "recent"
)

// SortModes lists every supported mode
var SortModes = []SortMode{SortNameAsc, SortNameDesc, SortUsageDesc, SortRecent}

// ParseSortMode maps a user supplied string to a SortMode.
// An empty string yields SortNameAsc.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name", "name-asc", "asc", "az":
		return SortNameAsc, nil
	case "name-desc", "desc", "za":
		return SortNameDesc, nil
	case "usage", "popular":
		return SortUsageDesc, nil
	case "recent":
		return SortRecent, nil
	}
	return "", fmt.Errorf("unknown sort mode %q (supported: name, name-desc, usage, recent)", s)
}

// FilterToppings keeps toppings whose name contains filter, ignoring case
func FilterToppings(toppings []Topping, filter string) []Topping {
	needle := strings.ToLower(strings.TrimSpace(filter))
	out := make([]Topping, 0, len(toppings))
	for _, t := range toppings {
		if needle == "" || strings.Contains(strings.ToLower(t.Name), needle) {
			out = append(out, t)
		}
	}
	return out
}

// SortToppings returns a sorted copy of toppings; the input is left untouched.
// recent is only consulted by SortRecent and may be nil.
func SortToppings(toppings []Topping, mode SortMode, recent *RecentList) []Topping {
	out := append([]Topping(nil), toppings...)
	var less func(a, b Topping) bool
	switch mode {
	case SortNameDesc:
		less = func(a, b Topping) bool { return alphaLess(b, a) }
	case SortUsageDesc:
		less = func(a, b Topping) bool {
			if a.Usage != b.Usage {
				return a.Usage > b.Usage
			}
			return alphaLess(a, b)
		}
	case SortRecent:
		less = func(a, b Topping) bool {
			ra, rb := recent.Rank(a.Name), recent.Rank(b.Name)
			switch {
			case ra >= 0 && rb >= 0:
				return ra < rb
			case ra >= 0:
				return true
			case rb >= 0:
				return false
			}
			return alphaLess(a, b)
		}
	default:
		less = alphaLess
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func alphaLess(a, b Topping) bool {
	ka, kb := Key(a.Name), Key(b.Name)
	if ka != kb {
		return ka < kb
	}
	return a.Name < b.Name
}
