package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"campuseats/internal/geo"
	"campuseats/internal/location"
	"campuseats/internal/model"
	"campuseats/internal/viewport"

	tea "github.com/charmbracelet/bubbletea"
)

var campus = model.UserLocation{Latitude: 42.3382, Longitude: -71.0877, Accuracy: 20}

func testCatalog() []model.Restaurant {
	return []model.Restaurant{
		{ID: 1, Name: "Far Diner", Cuisine: "Diner", Location: geo.Position{Lat: 42.3601, Lng: -71.0942}, AcceptsAltPayment: true, Discount: model.DiscountNone},
		{ID: 2, Name: "Near Cafe", Cuisine: "Cafe", Location: geo.Position{Lat: 42.3385, Lng: -71.0880}, AcceptsAltPayment: true, Discount: "10% off"},
		{ID: 3, Name: "Mid Grill", Cuisine: "Grill", Location: geo.Position{Lat: 42.3450, Lng: -71.0900}, AcceptsAltPayment: false, Discount: "Free drink"},
	}
}

type stubGeocoder struct {
	address string
	err     error
}

func (s stubGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return s.address, s.err
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and every command it produces, feeding messages back into
// the model. Only usable when no tea.Tick is involved.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		next, nc := m.Update(msg)
		m = next.(Model)
		queue = append(queue, nc)
	}
	return m
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		m = drain(t, next.(Model), cmd)
	}
	return m
}

// step applies msgs and discards the resulting commands.
func step(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = send(t, m, keyMsg(k))
	}
	return m
}

func newLoaded(t *testing.T, opts Options) Model {
	t.Helper()
	m := New(nil, opts)
	return send(t, m,
		tea.WindowSizeMsg{Width: 200, Height: 40},
		model.CatalogLoadedMsg{Restaurants: testCatalog()},
	)
}

func listedIDs(m Model) []int64 {
	ids := make([]int64, len(m.restaurants.rows))
	for i, r := range m.restaurants.rows {
		ids[i] = r.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFiltersDriveListAndMarkers(t *testing.T) {
	m := newLoaded(t, Options{})

	if got := listedIDs(m); !equalIDs(got, []int64{1, 2, 3}) {
		t.Fatalf("initial ids = %v", got)
	}

	m = press(t, m, "a")
	if got := listedIDs(m); !equalIDs(got, []int64{1, 2}) {
		t.Fatalf("alt payment ids = %v", got)
	}
	if len(m.mapView.markers) != 2 {
		t.Fatalf("markers = %d, want 2", len(m.mapView.markers))
	}
	if m.controller.SelectFromList(3) {
		t.Fatal("filtered-out restaurant should not be selectable")
	}

	m = press(t, m, "d")
	if got := listedIDs(m); !equalIDs(got, []int64{2}) {
		t.Fatalf("alt payment + discount ids = %v", got)
	}

	m = press(t, m, "a", "d")
	if got := listedIDs(m); !equalIDs(got, []int64{1, 2, 3}) {
		t.Fatalf("cleared ids = %v", got)
	}
}

func TestNearestWithoutLocationKeepsCatalogOrder(t *testing.T) {
	m := newLoaded(t, Options{})
	m = send(t, m, model.LocationAcquiredMsg{Err: location.ErrLocationUnavailable})

	m = press(t, m, "n")
	if !m.filters.ByProximity {
		t.Fatal("toggle should still flip")
	}
	if got := listedIDs(m); !equalIDs(got, []int64{1, 2, 3}) {
		t.Fatalf("ids = %v", got)
	}
	if m.derived.Sorted {
		t.Fatal("result should not be sorted without a location")
	}
	if m.addressText() != locationUnavailableText {
		t.Fatalf("address = %q", m.addressText())
	}
}

func TestLocationResolvesAddressAndSortsNearest(t *testing.T) {
	m := newLoaded(t, Options{
		Locator:  location.StaticLocator{Location: campus},
		Geocoder: stubGeocoder{address: "360, Huntington Avenue, Fenway, Boston"},
	})
	if m.addressText() == locationUnavailableText || !strings.Contains(m.addressText(), fetchingLocationText) {
		t.Fatalf("before acquisition address = %q", m.addressText())
	}

	m = send(t, m, model.LocationAcquiredMsg{Location: campus})
	if m.address != "360, Huntington Avenue, Fenway, Boston" {
		t.Fatalf("address = %q", m.address)
	}
	s := m.controller.State()
	if s.Center == nil || *s.Center != campus.Position() || s.Zoom != viewport.OverviewZoom {
		t.Fatalf("state after location = %+v", s)
	}

	m = press(t, m, "n")
	if got := listedIDs(m); !equalIDs(got, []int64{2, 3, 1}) {
		t.Fatalf("nearest ids = %v", got)
	}
	for _, r := range m.restaurants.rows {
		if r.Distance == nil {
			t.Fatalf("%s has no distance", r.Name)
		}
	}
}

func TestAddressFallsBackToCoordinates(t *testing.T) {
	m := newLoaded(t, Options{Geocoder: stubGeocoder{err: location.ErrAddressResolutionFailed}})
	m = send(t, m, model.LocationAcquiredMsg{Location: campus})
	if m.address != "Lat: 42.34, Lng: -71.09" {
		t.Fatalf("address = %q", m.address)
	}
	if m.error != "" {
		t.Fatalf("address failure surfaced as error: %q", m.error)
	}
}

func TestAddressShowsCoordinatesWhileResolving(t *testing.T) {
	m := newLoaded(t, Options{})
	m = step(m, model.LocationAcquiredMsg{Location: campus})
	if m.address != "" {
		t.Fatalf("address resolved without running the command: %q", m.address)
	}
	if got := m.addressText(); got != "Lat: 42.34, Lng: -71.09" {
		t.Fatalf("address line = %q", got)
	}
}

func TestStaleAddressIgnored(t *testing.T) {
	m := newLoaded(t, Options{})
	m = send(t, m, model.LocationAcquiredMsg{Location: campus})
	m.address = ""

	other := model.UserLocation{Latitude: 1, Longitude: 1, Accuracy: 5}
	m = send(t, m, model.AddressResolvedMsg{Location: other, Address: "Elsewhere"})
	if m.address != "" {
		t.Fatalf("stale address applied: %q", m.address)
	}
}

func TestMarkerPopupOpensOnlyForLatestTransition(t *testing.T) {
	m := newLoaded(t, Options{FlyDuration: time.Second})

	m = step(m, keyMsg("m"))
	first := m.mapView.flight.token
	s := m.controller.State()
	if s.Center == nil || *s.Center != testCatalog()[0].Location || s.Zoom != viewport.CloseUpZoom {
		t.Fatalf("state after marker = %+v", s)
	}
	if s.OpenPopup != 0 {
		t.Fatal("popup opened before transition completed")
	}

	m = step(m, keyMsg("j"), keyMsg("m"))
	second := m.mapView.flight.token
	if second == first {
		t.Fatal("second fly-to reused the token")
	}

	m = step(m, flyDoneMsg{token: first})
	if got := m.controller.State().OpenPopup; got != 0 {
		t.Fatalf("stale completion opened popup %d", got)
	}
	if cmd := m.mapView.Update(flyFrameMsg{token: first, frame: 1}); cmd != nil {
		t.Fatal("stale frame should be dropped")
	}

	m = step(m, flyDoneMsg{token: second})
	if got := m.controller.State().OpenPopup; got != 2 {
		t.Fatalf("OpenPopup = %d, want 2", got)
	}
	if m.mapView.Popup() != 2 {
		t.Fatalf("map popup = %d, want 2", m.mapView.Popup())
	}
}

func TestPendingPopupFilteredOutDuringFlightStaysClosed(t *testing.T) {
	m := newLoaded(t, Options{FlyDuration: time.Second})

	m = step(m, keyMsg("j"), keyMsg("j"), keyMsg("m"))
	token := m.mapView.flight.token
	m = step(m, keyMsg("a"))
	m = step(m, flyDoneMsg{token: token})

	if got := m.controller.State().OpenPopup; got != 0 {
		t.Fatalf("OpenPopup = %d for a restaurant that is no longer listed", got)
	}
	if got := m.mapView.Popup(); got != 0 {
		t.Fatalf("map popup = %d, want 0", got)
	}
	if m.controller.Pending() {
		t.Fatal("completed transition still pending")
	}
}

func TestMapSelectOnOpenPopupShowsDetail(t *testing.T) {
	m := newLoaded(t, Options{})
	m = press(t, m, "tab", "j", "enter")
	if got := m.controller.State().OpenPopup; got != 2 {
		t.Fatalf("OpenPopup = %d, want 2", got)
	}
	if m.screen != model.ScreenRestaurants {
		t.Fatal("first select should only open the popup")
	}

	m = press(t, m, "enter")
	if m.screen != model.ScreenRestaurantDetail || m.restaurantDetail == nil || m.restaurantDetail.ID() != 2 {
		t.Fatalf("screen = %v detail = %+v", m.screen, m.restaurantDetail)
	}
	if s := m.controller.State(); s.Selected != 2 || s.OpenPopup != 2 {
		t.Fatalf("state = %+v", s)
	}

	m = press(t, m, "esc")
	if m.screen != model.ScreenRestaurants || m.focus != FocusMap {
		t.Fatalf("screen = %v focus = %v", m.screen, m.focus)
	}

	// A different marker under the cursor flies there instead.
	m = press(t, m, "j", "enter")
	if m.screen != model.ScreenRestaurants || m.controller.State().OpenPopup != 3 {
		t.Fatalf("screen = %v state = %+v", m.screen, m.controller.State())
	}
}

func TestMapFocusSelectsMarkerUnderCursor(t *testing.T) {
	m := newLoaded(t, Options{})
	m = press(t, m, "tab", "j", "j", "enter")
	if m.focus != FocusMap {
		t.Fatal("tab should focus the map")
	}
	if got := m.controller.State().OpenPopup; got != 3 {
		t.Fatalf("OpenPopup = %d, want 3", got)
	}

	m = press(t, m, "x")
	if got := m.controller.State().OpenPopup; got != 0 {
		t.Fatalf("OpenPopup after close = %d", got)
	}
}

func TestListSelectionOpensDetailWithoutMovingMap(t *testing.T) {
	m := newLoaded(t, Options{})
	m = press(t, m, "j", "enter")

	if m.screen != model.ScreenRestaurantDetail || m.restaurantDetail == nil || m.restaurantDetail.ID() != 2 {
		t.Fatalf("screen = %v detail = %+v", m.screen, m.restaurantDetail)
	}
	s := m.controller.State()
	if s.Selected != 2 || s.Center != nil || s.Zoom != viewport.OverviewZoom {
		t.Fatalf("state = %+v", s)
	}

	m = press(t, m, "esc")
	if m.screen != model.ScreenRestaurants || m.controller.State().Selected != 0 {
		t.Fatalf("back did not clear selection: %+v", m.controller.State())
	}
}

func TestSeeOnMapClosesDetailAndFocusesMap(t *testing.T) {
	m := newLoaded(t, Options{})
	m = press(t, m, "j", "j", "enter", "o")

	if m.screen != model.ScreenRestaurants || m.focus != FocusMap {
		t.Fatalf("screen = %v focus = %v", m.screen, m.focus)
	}
	s := m.controller.State()
	if s.Selected != 0 {
		t.Fatalf("Selected = %d, want 0", s.Selected)
	}
	if s.Center == nil || *s.Center != testCatalog()[2].Location || s.Zoom != viewport.CloseUpZoom {
		t.Fatalf("state = %+v", s)
	}
	if s.OpenPopup != 3 || m.mapView.CursorID() != 3 {
		t.Fatalf("popup = %d cursor = %d", s.OpenPopup, m.mapView.CursorID())
	}
}

func TestRecenterKeepsOpenPopup(t *testing.T) {
	m := newLoaded(t, Options{})
	m = press(t, m, "c")
	if m.info != locationUnavailableText {
		t.Fatalf("info = %q", m.info)
	}

	m = send(t, m, model.LocationAcquiredMsg{Location: campus})
	m = press(t, m, "j", "m")
	if m.controller.State().OpenPopup != 2 {
		t.Fatal("marker popup not open")
	}

	m = press(t, m, "c")
	s := m.controller.State()
	if s.OpenPopup != 2 || s.Zoom != viewport.OverviewZoom || *s.Center != campus.Position() {
		t.Fatalf("state after recenter = %+v", s)
	}
}

func TestFilteringOutOpenPopupClosesIt(t *testing.T) {
	m := newLoaded(t, Options{})
	m = press(t, m, "j", "j", "m")
	if m.controller.State().OpenPopup != 3 {
		t.Fatal("popup not open")
	}

	m = press(t, m, "a")
	if got := m.controller.State().OpenPopup; got != 0 {
		t.Fatalf("OpenPopup = %d after its restaurant was filtered out", got)
	}
}

func TestEmptyResultsView(t *testing.T) {
	m := newLoaded(t, Options{})
	m = send(t, m, model.CatalogLoadedMsg{Restaurants: testCatalog()[:1]})
	m = press(t, m, "d")

	if m.derived == nil || m.derived.Len() != 0 {
		t.Fatalf("derived = %+v", m.derived)
	}
	if view := m.View(); !strings.Contains(view, EmptyResultsMessage) {
		t.Fatalf("view missing empty state:\n%s", view)
	}
}

func TestViewBeforeCatalogLoads(t *testing.T) {
	m := send(t, New(nil, Options{}), tea.WindowSizeMsg{Width: 200, Height: 40})
	if m.derived != nil {
		t.Fatal("derived view should not exist before the catalog loads")
	}
	if view := m.View(); !strings.Contains(view, "Loading restaurants...") {
		t.Fatalf("view:\n%s", view)
	}
}

func TestFiltersPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui_prefs.json")
	m := newLoaded(t, Options{PrefsPath: path})
	m = press(t, m, "a", "n")

	prefs := loadUIPreferences(path)
	if !prefs.Filters.ByAltPayment || prefs.Filters.ByDiscount || !prefs.Filters.ByProximity {
		t.Fatalf("saved filters = %+v", prefs.Filters)
	}

	restored := New(nil, Options{PrefsPath: path})
	if restored.filters != prefs.Filters {
		t.Fatalf("restored filters = %+v", restored.filters)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newLoaded(t, Options{})
	m = press(t, m, "?")
	if !m.showingHelp {
		t.Fatal("help not shown")
	}
	m = press(t, m, "a")
	if m.filters.ByAltPayment {
		t.Fatal("keys should be swallowed while help is shown")
	}
	m = press(t, m, "esc")
	if m.showingHelp {
		t.Fatal("help not closed")
	}
}
