// Package selection holds the ordered, duplicate-free lists a user builds one
// item at a time (degree titles, evaluation criteria, languages, work
// experience) before submitting them with a larger form.
package selection

import (
	"errors"
	"fmt"
)

// Category discriminates the kinds of selectable items.
type Category string

const (
	CategoryTitle      Category = "titulo"
	CategoryCriterion  Category = "criterio"
	CategoryExperience Category = "experiencia"
	CategoryLanguage   Category = "idioma"
)

// Item is implemented by every selectable variant.
type Item interface {
	SelectionID() int
	Category() Category
	Label() string
	// Validate reports missing or invalid per-item input.
	Validate() error
}

var (
	// ErrDuplicate is returned when an item with the same id is already listed.
	ErrDuplicate = errors.New("duplicate selection")
	// ErrMissingInput is returned when a mandatory field of the item is empty.
	ErrMissingInput = errors.New("missing input")
	// ErrInvalidValue is returned when a field holds a value outside its allowed set.
	ErrInvalidValue = errors.New("invalid value")
)

// Error describes a rejected add. It unwraps to one of the sentinel errors.
type Error struct {
	Kind     error
	Category Category
	ID       int
	Field    string
	Value    string
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Value != "":
		return fmt.Sprintf("%s %d: %v: %s=%q", e.Category, e.ID, e.Kind, e.Field, e.Value)
	case e.Field != "":
		return fmt.Sprintf("%s %d: %v: %s", e.Category, e.ID, e.Kind, e.Field)
	default:
		return fmt.Sprintf("%s %d: %v", e.Category, e.ID, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func missing(c Category, id int, field string) error {
	return &Error{Kind: ErrMissingInput, Category: c, ID: id, Field: field}
}

func invalid(c Category, id int, field, value string) error {
	return &Error{Kind: ErrInvalidValue, Category: c, ID: id, Field: field, Value: value}
}

// List is an immutable ordered selection. Operations return a new List and
// never modify the receiver, so a List can be shared between states freely.
// The zero value is an empty list.
type List[T Item] struct {
	items []T
}

// NewList builds a list by adding items in order, stopping at the first
// rejected one.
func NewList[T Item](items ...T) (List[T], error) {
	var l List[T]
	for _, item := range items {
		var err error
		if l, err = l.Add(item); err != nil {
			return l, err
		}
	}
	return l, nil
}

// Add appends item. It fails with ErrMissingInput or ErrInvalidValue when the
// item does not validate and with ErrDuplicate when its id is already
// present; in every failure the returned list equals the receiver.
func (l List[T]) Add(item T) (List[T], error) {
	if err := item.Validate(); err != nil {
		return l, err
	}
	if l.Contains(item.SelectionID()) {
		return l, &Error{Kind: ErrDuplicate, Category: item.Category(), ID: item.SelectionID()}
	}
	items := make([]T, len(l.items), len(l.items)+1)
	copy(items, l.items)
	return List[T]{items: append(items, item)}, nil
}

// Remove drops the item with id. Removing an absent id returns the list
// unchanged.
func (l List[T]) Remove(id int) List[T] {
	if !l.Contains(id) {
		return l
	}
	items := make([]T, 0, len(l.items)-1)
	for _, item := range l.items {
		if item.SelectionID() != id {
			items = append(items, item)
		}
	}
	return List[T]{items: items}
}

// Replace swaps in item for the listed item with the same id, keeping its
// position. An absent id is appended as by Add. When item does not validate
// the returned list equals the receiver.
func (l List[T]) Replace(item T) (List[T], error) {
	if err := item.Validate(); err != nil {
		return l, err
	}
	for i, cur := range l.items {
		if cur.SelectionID() == item.SelectionID() {
			items := make([]T, len(l.items))
			copy(items, l.items)
			items[i] = item
			return List[T]{items: items}, nil
		}
	}
	return l.Add(item)
}

// Get returns the item with id.
func (l List[T]) Get(id int) (T, bool) {
	for _, item := range l.items {
		if item.SelectionID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Clear returns an empty list.
func (l List[T]) Clear() List[T] {
	return List[T]{}
}

// Contains reports whether an item with id is listed.
func (l List[T]) Contains(id int) bool {
	for _, item := range l.items {
		if item.SelectionID() == id {
			return true
		}
	}
	return false
}

// Len returns the number of listed items.
func (l List[T]) Len() int {
	return len(l.items)
}

// Payload returns the items in insertion order for inclusion in a form
// submission. The returned slice is a copy and is never nil.
func (l List[T]) Payload() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Entries returns the display projection of every item, in order.
func (l List[T]) Entries() []Entry {
	out := make([]Entry, 0, len(l.items))
	for _, item := range l.items {
		out = append(out, Describe(item))
	}
	return out
}

// Entry is the category-independent view of a selected item.
type Entry struct {
	ID       int               `json:"id"`
	Category Category          `json:"categoria"`
	Label    string            `json:"etiqueta"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type metadataProvider interface {
	Metadata() map[string]string
}

// Describe projects item to an Entry.
func Describe(item Item) Entry {
	e := Entry{
		ID:       item.SelectionID(),
		Category: item.Category(),
		Label:    item.Label(),
	}
	if mp, ok := item.(metadataProvider); ok {
		e.Metadata = mp.Metadata()
	}
	return e
}
