// Package list implements the shopping list state machine: an ordered
// collection of items with a quantity and a checked flag per entry, mutated
// through index-addressed operations.
//
// The three sequences are parallel by construction: every operation either
// touches all of them together or none of them, so their lengths can never
// diverge. A rejected operation leaves the list untouched.
package list

import "errors"

// ErrIndexOutOfRange is returned by positional operations whose index does
// not address an existing entry.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrEmptyItem is returned when appending an item with an empty name.
var ErrEmptyItem = errors.New("item must not be empty")

// List holds one user's shopping list. Items, Quantities and Checked always
// have the same length; Quantities[i] and Checked[i] belong to Items[i].
type List struct {
	Items      []string
	Quantities []int
	Checked    []bool
}

// New returns an empty list. The slices are allocated (not nil) so the list
// serializes as three empty JSON arrays rather than nulls.
func New() List {
	return List{Items: []string{}, Quantities: []int{}, Checked: []bool{}}
}

// Len reports the number of entries.
func (l *List) Len() int { return len(l.Items) }

func (l *List) inRange(index int) bool {
	return index >= 0 && index < len(l.Items)
}

// Append adds an entry to the end of the list, unchecked.
func (l *List) Append(item string, qty int) error {
	if item == "" {
		return ErrEmptyItem
	}
	l.Items = append(l.Items, item)
	l.Quantities = append(l.Quantities, qty)
	l.Checked = append(l.Checked, false)
	return nil
}

// SetQuantity replaces the quantity at index.
func (l *List) SetQuantity(index, value int) error {
	if !l.inRange(index) {
		return ErrIndexOutOfRange
	}
	l.Quantities[index] = value
	return nil
}

// ToggleChecked flips the checked flag at index.
func (l *List) ToggleChecked(index int) error {
	if !l.inRange(index) {
		return ErrIndexOutOfRange
	}
	l.Checked[index] = !l.Checked[index]
	return nil
}

// DeleteAt removes the entry at index from all three sequences. Entries
// after it shift down by one.
func (l *List) DeleteAt(index int) error {
	if !l.inRange(index) {
		return ErrIndexOutOfRange
	}
	l.Items = append(l.Items[:index], l.Items[index+1:]...)
	l.Quantities = append(l.Quantities[:index], l.Quantities[index+1:]...)
	l.Checked = append(l.Checked[:index], l.Checked[index+1:]...)
	return nil
}

// Clear resets the list to empty.
func (l *List) Clear() {
	l.Items = []string{}
	l.Quantities = []int{}
	l.Checked = []bool{}
}

// CheckedAsInts renders the checked flags as 0/1 integers, the form the
// HTTP API uses for the checked_items field.
func (l *List) CheckedAsInts() []int {
	out := make([]int, len(l.Checked))
	for i, c := range l.Checked {
		if c {
			out[i] = 1
		}
	}
	return out
}
