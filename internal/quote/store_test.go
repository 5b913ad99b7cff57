package quote

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Simplici0/alu.works/internal/pricing"
)

func newTestStore(ids ...string) *Store {
	items := make([]pricing.LineItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, pricing.LineItem{
			ID:         id,
			SystemType: pricing.SystemWindows,
			Dimensions: pricing.Dimensions{Width: 36, Height: 72},
			Quantity:   1,
			Panels:     []pricing.Panel{{Width: 36, OperationType: "Fixed"}},
		})
	}
	s := NewStore(items)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
	return s
}

func assertOrder(t *testing.T, s *Store, want ...string) {
	t.Helper()
	items := s.Items()
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, item := range items {
		if item.ID != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, item.ID, want[i])
		}
		if item.ItemNumber != i+1 {
			t.Fatalf("position %d: item number %d, want %d", i, item.ItemNumber, i+1)
		}
	}
}

func TestNewStoreAssignsMissingAndDuplicateIDs(t *testing.T) {
	s := NewStore([]pricing.LineItem{{ID: "a"}, {}, {ID: "a"}})

	items := s.Items()
	if items[0].ID != "a" || items[1].ID == "" || items[2].ID == "a" || items[1].ID == items[2].ID {
		t.Fatalf("unexpected ids: %q %q %q", items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestAddAppendsWithNextNumber(t *testing.T) {
	s := newTestStore("a", "b")

	added := s.Add(pricing.LineItem{SystemType: pricing.SystemWindows})

	if added.ID != "new-1" || added.ItemNumber != 3 || added.Quantity != 1 {
		t.Fatalf("unexpected added item: %+v", added)
	}
	assertOrder(t, s, "a", "b", "new-1")
}

func TestInsertAtRestoresOriginalPosition(t *testing.T) {
	s := newTestStore("a", "b", "c")

	edited, _ := s.Get("b")
	if err := s.Remove("b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	edited.Notes = "edited"
	if _, err := s.InsertAt(1, edited); err != nil {
		t.Fatalf("InsertAt: %v", err)
	}

	assertOrder(t, s, "a", "b", "c")
	if got, _ := s.Get("b"); got.Notes != "edited" {
		t.Fatalf("expected edited notes, got %q", got.Notes)
	}

	if _, err := s.InsertAt(9, edited); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestRemoveRenumbers(t *testing.T) {
	s := newTestStore("a", "b", "c")

	if err := s.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	assertOrder(t, s, "b", "c")

	if err := s.Remove("missing"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestMove(t *testing.T) {
	s := newTestStore("a", "b", "c", "d")

	if err := s.Move("d", 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	assertOrder(t, s, "d", "a", "b", "c")

	if err := s.Move("d", 3); err != nil {
		t.Fatalf("Move: %v", err)
	}
	assertOrder(t, s, "a", "b", "c", "d")

	if err := s.Move("a", 4); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestReplaceKeepsPositionAndNumber(t *testing.T) {
	s := newTestStore("a", "b")

	replacement := pricing.LineItem{ID: "b", ItemNumber: 42, SystemType: pricing.SystemSlidingDoors, OpeningType: "OXXO", Quantity: 2}
	got, err := s.Replace(replacement)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got.ItemNumber != 2 || got.SystemType != pricing.SystemSlidingDoors {
		t.Fatalf("unexpected replacement: %+v", got)
	}
	assertOrder(t, s, "a", "b")
}

func TestSetQuantityRejectsInvalidInput(t *testing.T) {
	s := newTestStore("a")

	if err := s.SetQuantity("a", 4); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	for _, qty := range []int{0, -3} {
		if err := s.SetQuantity("a", qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
	for _, raw := range []string{"abc", "0", "2.5", ""} {
		if err := s.SetQuantityText("a", raw); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("raw %q: expected ErrInvalidQuantity, got %v", raw, err)
		}
	}

	if got, _ := s.Get("a"); got.Quantity != 4 {
		t.Fatalf("quantity changed to %d after rejected input", got.Quantity)
	}

	if err := s.SetQuantityText("a", " 7 "); err != nil {
		t.Fatalf("SetQuantityText: %v", err)
	}
	if got, _ := s.Get("a"); got.Quantity != 7 {
		t.Fatalf("quantity = %d, want 7", got.Quantity)
	}
	if err := s.SetQuantityText("missing", "abc"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestCopyClonesEverythingButIdentity(t *testing.T) {
	s := newTestStore("a", "b")
	price := 14.0
	original, _ := s.Get("a")
	original.GlassUnitPrice = &price
	original.Notes = "kitchen"
	if _, err := s.Replace(original); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	dup, err := s.Copy("a")
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if dup.ID == "a" || dup.ItemNumber != 3 || dup.Notes != "kitchen" || *dup.GlassUnitPrice != 14 {
		t.Fatalf("unexpected copy: %+v", dup)
	}

	// Editing the copy must not touch the original.
	dup.Panels[0].Width = 10
	*dup.GlassUnitPrice = 99
	if _, err := s.Replace(dup); err != nil {
		t.Fatalf("Replace copy: %v", err)
	}
	if got, _ := s.Get("a"); got.Panels[0].Width != 36 || *got.GlassUnitPrice != 14 {
		t.Fatalf("original changed through copy: %+v", got)
	}
}

func TestItemsReturnsIndependentCopy(t *testing.T) {
	s := newTestStore("a")

	items := s.Items()
	items[0].Panels[0].OperationType = "Casement"

	if got, _ := s.Get("a"); got.Panels[0].OperationType != "Fixed" {
		t.Fatalf("store mutated through Items(): %+v", got)
	}
}

func TestValidateCosts(t *testing.T) {
	if err := ValidateCosts(pricing.AdditionalCosts{Tariff: 1, Margin: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateCosts(pricing.AdditionalCosts{Shipping: -1}); err == nil {
		t.Fatalf("expected negative shipping to fail")
	}
	if err := ValidateCosts(pricing.AdditionalCosts{Margin: 120}); err == nil {
		t.Fatalf("expected margin above 100 to fail")
	}
}
