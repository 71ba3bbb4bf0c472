package ui

import (
	"strings"
	"testing"
)

func TestRestaurantsCursorFollowsRows(t *testing.T) {
	m := NewRestaurantsModel()
	rs := testCatalog()
	m.SetRows(rs)

	m.MoveDown()
	if m.SelectedID() != 2 {
		t.Fatalf("SelectedID = %d", m.SelectedID())
	}

	m.SetRows(rs[1:])
	if m.SelectedID() != 2 {
		t.Fatalf("cursor lost its restaurant: %d", m.SelectedID())
	}

	m.SetRows(rs[2:])
	if m.SelectedID() != 3 {
		t.Fatalf("cursor should reset to first row: %d", m.SelectedID())
	}

	m.SetRows(nil)
	if _, ok := m.Current(); ok || m.SelectedID() != 0 {
		t.Fatal("empty list has no current row")
	}
}

func TestRestaurantsNavigation(t *testing.T) {
	m := NewRestaurantsModel()
	m.SetRows(testCatalog())

	m.JumpToBottom()
	if m.SelectedID() != 3 {
		t.Fatalf("bottom = %d", m.SelectedID())
	}
	m.MoveDown()
	if m.SelectedID() != 3 {
		t.Fatal("moved past the end")
	}
	m.JumpToTop()
	m.MoveUp()
	if m.SelectedID() != 1 {
		t.Fatal("moved past the start")
	}
	if !m.MoveTo(2) || m.SelectedID() != 2 {
		t.Fatal("MoveTo failed")
	}
	if m.MoveTo(99) {
		t.Fatal("MoveTo unknown id succeeded")
	}
}

func TestRestaurantsView(t *testing.T) {
	m := NewRestaurantsModel()
	if view := m.View(80, 20, true); !strings.Contains(view, EmptyResultsMessage) {
		t.Fatalf("empty view:\n%s", view)
	}

	rs := testCatalog()
	d := 0.04
	rs[1].Distance = &d
	m.SetRows(rs)
	view := m.View(80, 20, true)
	for _, want := range []string{"Far Diner", "Near Cafe", "40 m", "Dining dollars: Yes", "Discount: 10% off"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
