package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/sakif/inventory/internal/apperror"
	"github.com/sakif/inventory/internal/model"
)

// SortOrder selects how List orders its result.
type SortOrder string

const (
	SortNameAsc  SortOrder = "name-asc"
	SortNameDesc SortOrder = "name-desc"
	SortNewest   SortOrder = "newest"

	DefaultSortOrder = SortNameAsc
)

// sortOrders is also the cycle order used by Next.
var sortOrders = []SortOrder{SortNameAsc, SortNameDesc, SortNewest}

// SortOrders returns every supported order, default first.
func SortOrders() []SortOrder {
	return slices.Clone(sortOrders)
}

// ParseSortOrder converts a user-supplied value (flag, env var, CLI argument)
// into a SortOrder. The empty string means the default order.
func ParseSortOrder(s string) (SortOrder, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSortOrder, nil
	}
	for _, o := range sortOrders {
		if string(o) == s {
			return o, nil
		}
	}
	return "", apperror.ValidationFailed("sort",
		fmt.Sprintf("unknown sort order %q (want one of %s)", s, joinOrders()))
}

// Next returns the order that follows o, wrapping around. An unknown order
// restarts the cycle at the default.
func (o SortOrder) Next() SortOrder {
	i := slices.Index(sortOrders, o)
	if i < 0 {
		return DefaultSortOrder
	}
	return sortOrders[(i+1)%len(sortOrders)]
}

// Label is the human-readable name shown in the UI.
func (o SortOrder) Label() string {
	switch o {
	case SortNameAsc:
		return "by name (A-Z)"
	case SortNameDesc:
		return "by name (Z-A)"
	case SortNewest:
		return "by date (newest)"
	default:
		return string(o)
	}
}

func joinOrders() string {
	names := make([]string, len(sortOrders))
	for i, o := range sortOrders {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}

// Query narrows and orders the result of ItemService.List.
// The zero value lists every item in the default order.
type Query struct {
	Search string
	Sort   SortOrder
}

// Filter keeps the items whose name or description contains search,
// ignoring case. An empty (or all-space) search keeps everything.
//
// The input slice is not modified.
func Filter(items []model.Item, search string) []model.Item {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return items
	}

	matched := make([]model.Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.Description), needle) {
			matched = append(matched, item)
		}
	}
	return matched
}

// Sort orders items in place. It is stable: items that compare equal keep
// the order the store returned them in.
func Sort(items []model.Item, order SortOrder) {
	switch order {
	case SortNameDesc:
		slices.SortStableFunc(items, func(a, b model.Item) int {
			return cmp.Compare(b.Name, a.Name)
		})
	case SortNewest:
		slices.SortStableFunc(items, func(a, b model.Item) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	default:
		slices.SortStableFunc(items, func(a, b model.Item) int {
			return cmp.Compare(a.Name, b.Name)
		})
	}
}
