package viewport

import (
	"testing"

	"campuseats/internal/geo"
	"campuseats/internal/model"
)

var (
	posFive  = geo.Position{Lat: 42.3400, Lng: -71.0890}
	posSeven = geo.Position{Lat: 42.3420, Lng: -71.0850}
)

func TestIdleState(t *testing.T) {
	s := New().State()
	if s.Center != nil || s.Zoom != OverviewZoom || s.Selected != 0 || s.OpenPopup != 0 {
		t.Fatalf("idle state = %+v", s)
	}
}

func TestSelectFromMarkerOpensPopupAfterTransition(t *testing.T) {
	c := New()
	tr, ok := c.SelectFromMarker(5, posFive)
	if !ok {
		t.Fatal("SelectFromMarker rejected id 5")
	}

	s := c.State()
	if s.Center == nil || *s.Center != posFive || s.Zoom != CloseUpZoom {
		t.Fatalf("state after marker = %+v", s)
	}
	if s.OpenPopup != 0 {
		t.Fatalf("popup opened before transition completed: %d", s.OpenPopup)
	}
	if !c.Pending() {
		t.Fatal("expected pending popup")
	}

	if !c.CompleteTransition(tr.Token) {
		t.Fatal("CompleteTransition rejected current token")
	}
	if got := c.State().OpenPopup; got != 5 {
		t.Fatalf("OpenPopup = %d, want 5", got)
	}
	if c.Pending() {
		t.Fatal("pending should be cleared")
	}
}

func TestSupersededPopupIsDiscarded(t *testing.T) {
	c := New()
	first, _ := c.SelectFromMarker(5, posFive)
	second, _ := c.SelectFromMarker(7, posSeven)

	if c.CompleteTransition(first.Token) {
		t.Fatal("stale token should be rejected")
	}
	if got := c.State().OpenPopup; got == 5 {
		t.Fatal("stale popup 5 was opened")
	}
	if !c.CompleteTransition(second.Token) {
		t.Fatal("current token rejected")
	}
	if got := c.State().OpenPopup; got != 7 {
		t.Fatalf("OpenPopup = %d, want 7", got)
	}

	// Late delivery of the first token must not reopen 5.
	c.CompleteTransition(first.Token)
	if got := c.State().OpenPopup; got != 7 {
		t.Fatalf("OpenPopup = %d after late stale token, want 7", got)
	}
}

func TestSeeOnMapClearsSelection(t *testing.T) {
	for _, prior := range []int64{0, 5, 9} {
		c := New()
		if prior != 0 {
			c.SelectFromList(prior)
		}
		tr, ok := c.SeeOnMap(5, posFive)
		if !ok {
			t.Fatal("SeeOnMap rejected id")
		}
		if !tr.FocusMap {
			t.Error("SeeOnMap should focus the map")
		}
		s := c.State()
		if s.Selected != 0 {
			t.Errorf("prior %d: Selected = %d, want 0", prior, s.Selected)
		}
		if s.Zoom != CloseUpZoom || s.Center == nil || *s.Center != posFive {
			t.Errorf("prior %d: viewport = %+v", prior, s)
		}
		c.CompleteTransition(tr.Token)
		if got := c.State().OpenPopup; got != 5 {
			t.Errorf("prior %d: OpenPopup = %d, want 5", prior, got)
		}
	}
}

func TestSelectFromListKeepsViewport(t *testing.T) {
	c := New()
	tr, _ := c.SelectFromMarker(5, posFive)
	c.CompleteTransition(tr.Token)

	c.SelectFromList(7)
	s := c.State()
	if s.Selected != 7 {
		t.Fatalf("Selected = %d, want 7", s.Selected)
	}
	if *s.Center != posFive || s.Zoom != CloseUpZoom || s.OpenPopup != 5 {
		t.Fatalf("viewport changed: %+v", s)
	}
}

func TestRecenterToUser(t *testing.T) {
	c := New()
	tr, _ := c.SelectFromMarker(5, posFive)
	c.CompleteTransition(tr.Token)
	c.SelectFromList(5)

	user := model.UserLocation{Latitude: 42.3382, Longitude: -71.0877}
	rt := c.RecenterToUser(user)
	s := c.State()
	if *s.Center != user.Position() || s.Zoom != OverviewZoom {
		t.Fatalf("viewport = %+v", s)
	}
	if s.Selected != 5 || s.OpenPopup != 5 {
		t.Fatalf("selection or popup changed: %+v", s)
	}
	if rt.Popup != 0 {
		t.Fatalf("recenter scheduled popup %d", rt.Popup)
	}
	if !c.CompleteTransition(rt.Token) {
		t.Fatal("recenter token rejected")
	}
	if got := c.State().OpenPopup; got != 5 {
		t.Fatalf("OpenPopup = %d, want 5", got)
	}
}

func TestRecenterSupersedesPendingPopup(t *testing.T) {
	c := New()
	tr, _ := c.SelectFromMarker(5, posFive)
	c.RecenterToUser(model.UserLocation{Latitude: 42.3382, Longitude: -71.0877})
	if c.CompleteTransition(tr.Token) {
		t.Fatal("marker token should be superseded by recenter")
	}
	if got := c.State().OpenPopup; got != 0 {
		t.Fatalf("OpenPopup = %d, want 0", got)
	}
}

func TestInvalidIDsAreIgnored(t *testing.T) {
	c := New()
	before := c.State()

	if c.SelectFromList(0) || c.SelectFromList(-3) {
		t.Error("SelectFromList accepted a non-positive id")
	}
	if _, ok := c.SelectFromMarker(0, posFive); ok {
		t.Error("SelectFromMarker accepted id 0")
	}
	if _, ok := c.SeeOnMap(-1, posFive); ok {
		t.Error("SeeOnMap accepted id -1")
	}
	if after := c.State(); after != before {
		t.Fatalf("state changed: %+v -> %+v", before, after)
	}

	c.Restrict([]int64{5})
	if _, ok := c.SelectFromMarker(7, posSeven); ok {
		t.Error("SelectFromMarker accepted id outside the marker set")
	}
	if _, ok := c.SelectFromMarker(5, posFive); !ok {
		t.Error("SelectFromMarker rejected id in the marker set")
	}
	c.Restrict(nil)
	if !c.SelectFromList(7) {
		t.Error("unrestricted controller rejected id 7")
	}
}

func TestStateReturnsCopy(t *testing.T) {
	c := New()
	c.SelectFromMarker(5, posFive)
	s := c.State()
	s.Center.Lat = 0
	if c.State().Center.Lat != posFive.Lat {
		t.Fatal("State() exposed internal center")
	}
}

func TestPendingPopupFilteredOutStaysClosed(t *testing.T) {
	c := New()
	c.Restrict([]int64{5, 6})
	tr, ok := c.SelectFromMarker(5, posFive)
	if !ok {
		t.Fatal("SelectFromMarker(5) rejected")
	}
	c.Restrict([]int64{6})
	if !c.CompleteTransition(tr.Token) {
		t.Fatal("latest token reported stale")
	}
	if s := c.State(); s.OpenPopup != 0 {
		t.Fatalf("OpenPopup = %d, want 0", s.OpenPopup)
	}
	if c.Pending() {
		t.Fatal("transition still pending")
	}
}
