// Package quote holds the ordered line items of a quote and the structural
// edits a rep makes to them.
package quote

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/alu.works/internal/pricing"
)

var (
	ErrItemNotFound    = errors.New("line item not found")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Store is an ordered collection of line items. It is not safe for
// concurrent use. Prices are never cached here; callers reprice Items() on
// every read.
type Store struct {
	items []pricing.LineItem
	newID func() string
}

// NewStore returns a store holding a copy of items. Items without an id, or
// with an id already used earlier in the list, get a fresh one.
func NewStore(items []pricing.LineItem) *Store {
	s := &Store{
		items: make([]pricing.LineItem, 0, len(items)),
		newID: func() string { return uuid.NewString() },
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = cloneItem(item)
		if item.ID == "" || seen[item.ID] {
			item.ID = s.newID()
		}
		seen[item.ID] = true
		s.items = append(s.items, item)
	}
	s.Renumber()
	return s
}

// Items returns a copy of the items in order.
func (s *Store) Items() []pricing.LineItem {
	out := make([]pricing.LineItem, len(s.items))
	for i, item := range s.items {
		out[i] = cloneItem(item)
	}
	return out
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.items)
}

// Get returns the item with id.
func (s *Store) Get(id string) (pricing.LineItem, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return pricing.LineItem{}, false
	}
	return cloneItem(s.items[i]), true
}

// Add appends item and returns it as stored.
func (s *Store) Add(item pricing.LineItem) pricing.LineItem {
	item = s.prepare(item)
	item.ItemNumber = len(s.items) + 1
	s.items = append(s.items, item)
	return cloneItem(item)
}

// InsertAt places item at index, shifting later items down. It is used to put
// an edited item back where it came from.
func (s *Store) InsertAt(index int, item pricing.LineItem) (pricing.LineItem, error) {
	if index < 0 || index > len(s.items) {
		return pricing.LineItem{}, ErrIndexOutOfRange
	}
	item = s.prepare(item)

	s.items = append(s.items, pricing.LineItem{})
	copy(s.items[index+1:], s.items[index:])
	s.items[index] = item
	s.Renumber()
	return cloneItem(s.items[index]), nil
}

// Replace swaps the item sharing item.ID for item, keeping its position.
func (s *Store) Replace(item pricing.LineItem) (pricing.LineItem, error) {
	i := s.indexOf(item.ID)
	if i < 0 {
		return pricing.LineItem{}, ErrItemNotFound
	}
	item = cloneItem(item)
	item.ItemNumber = s.items[i].ItemNumber
	s.items[i] = item
	return cloneItem(item), nil
}

// Remove deletes the item with id.
func (s *Store) Remove(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.Renumber()
	return nil
}

// Move relocates the item with id to index.
func (s *Store) Move(id string, index int) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}
	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}

	item := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.items = append(s.items, pricing.LineItem{})
	copy(s.items[index+1:], s.items[index:])
	s.items[index] = item
	s.Renumber()
	return nil
}

// SetQuantity sets the quantity of the item with id. Non-positive values are
// rejected and the previous quantity is kept.
func (s *Store) SetQuantity(id string, qty int) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	s.items[i].Quantity = qty
	return nil
}

// SetQuantityText parses raw as a whole number before applying it.
func (s *Store) SetQuantityText(id, raw string) error {
	qty, err := ParseQuantity(raw)
	if err != nil {
		if s.indexOf(id) < 0 {
			return ErrItemNotFound
		}
		return err
	}
	return s.SetQuantity(id, qty)
}

// ParseQuantity accepts positive whole numbers only.
func ParseQuantity(raw string) (int, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 {
		return 0, ErrInvalidQuantity
	}
	return qty, nil
}

// Copy duplicates the item with id at the end of the list with a new id and
// the next item number.
func (s *Store) Copy(id string) (pricing.LineItem, error) {
	i := s.indexOf(id)
	if i < 0 {
		return pricing.LineItem{}, ErrItemNotFound
	}

	maxNumber := 0
	for _, item := range s.items {
		if item.ItemNumber > maxNumber {
			maxNumber = item.ItemNumber
		}
	}

	dup := cloneItem(s.items[i])
	dup.ID = s.newID()
	dup.ItemNumber = maxNumber + 1
	s.items = append(s.items, dup)
	return cloneItem(dup), nil
}

// Renumber sets every item number to its 1-based position.
func (s *Store) Renumber() {
	for i := range s.items {
		s.items[i].ItemNumber = i + 1
	}
}

func (s *Store) prepare(item pricing.LineItem) pricing.LineItem {
	item = cloneItem(item)
	if item.ID == "" || s.indexOf(item.ID) >= 0 {
		item.ID = s.newID()
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	return item
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func cloneItem(item pricing.LineItem) pricing.LineItem {
	out := item
	if item.Panels != nil {
		out.Panels = append([]pricing.Panel(nil), item.Panels...)
	}
	if item.GlassUnitPrice != nil {
		v := *item.GlassUnitPrice
		out.GlassUnitPrice = &v
	}
	out.LeftSidelight = cloneSidelight(item.LeftSidelight)
	out.RightSidelight = cloneSidelight(item.RightSidelight)
	out.Transom = cloneSidelight(item.Transom)
	return out
}

func cloneSidelight(s *pricing.Sidelight) *pricing.Sidelight {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
