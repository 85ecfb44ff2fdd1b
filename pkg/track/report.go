package track

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Order selects how a report is sorted and laid out.
type Order string

const (
	OrderByName  Order = "name"
	OrderByCount Order = "count"
)

// ParseOrder converts a flag value into an Order.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(s)) {
	case OrderByName:
		return OrderByName, nil
	case OrderByCount:
		return OrderByCount, nil
	}
	return "", fmt.Errorf("unknown order %q (want %q or %q)", s, OrderByName, OrderByCount)
}

// ByName orders entries lexicographically by key.
func ByName(a, b Entry) int {
	return strings.Compare(a.Key, b.Key)
}

// ByCount orders entries by ascending count. Counts are compared as
// unsigned 64-bit values; equal counts fall back to key order.
func ByCount(a, b Entry) int {
	if c := cmp.Compare(a.Count, b.Count); c != 0 {
		return c
	}
	return ByName(a, b)
}

// Sort sorts entries in place for the given order.
func Sort(entries []Entry, order Order) {
	if order == OrderByCount {
		slices.SortFunc(entries, ByCount)
		return
	}
	slices.SortFunc(entries, ByName)
}

// Render sorts a snapshot and renders one line per entry. By-name lines read
// "key -> count", by-count lines read "count -> key".
func Render(entries []Entry, order Order) string {
	Sort(entries, order)
	var b strings.Builder
	for _, e := range entries {
		n := strconv.FormatUint(e.Count, 10)
		if order == OrderByCount {
			b.WriteString(n)
			b.WriteString(" -> ")
			b.WriteString(e.Key)
		} else {
			b.WriteString(e.Key)
			b.WriteString(" -> ")
			b.WriteString(n)
		}
		b.WriteString(LineSeparator)
	}
	return b.String()
}
