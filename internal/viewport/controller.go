// Package viewport keeps the map center, the selected restaurant and the open
// marker popup consistent across the list, the markers and the detail view.
package viewport

import (
	"campuseats/internal/geo"
	"campuseats/internal/model"
)

const (
	// OverviewZoom is the initial zoom and the zoom used when recentering on the user.
	OverviewZoom = 16
	// CloseUpZoom is used when flying to a single restaurant.
	CloseUpZoom = 18
)

// State is the reconciled view state. Zero ids mean "none".
type State struct {
	Center    *geo.Position
	Zoom      int
	Selected  int64
	OpenPopup int64
}

// Transition describes a fly-to the map surface must animate. Once the
// animation is done the surface reports Token back via CompleteTransition.
type Transition struct {
	Token  uint64
	Center geo.Position
	Zoom   int
	// Popup is opened when the transition completes. Zero for recenters.
	Popup int64
	// FocusMap asks the surface to bring the map into view.
	FocusMap bool
}

// Controller is the only writer of State. It is not safe for concurrent use;
// callers drive it from a single event loop.
type Controller struct {
	state State

	token        uint64
	pendingToken uint64
	pendingPopup int64

	allowed map[int64]bool
}

// New returns a controller in the idle state.
func New() *Controller {
	return &Controller{state: State{Zoom: OverviewZoom}}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	s := c.state
	if s.Center != nil {
		center := *s.Center
		s.Center = &center
	}
	return s
}

// Pending reports whether a popup-open is waiting on a transition.
func (c *Controller) Pending() bool {
	return c.pendingToken != 0
}

// Restrict limits accepted ids to the given set, typically the restaurants
// currently drawn as markers. A nil slice accepts any positive id.
func (c *Controller) Restrict(ids []int64) {
	if ids == nil {
		c.allowed = nil
		return
	}
	c.allowed = make(map[int64]bool, len(ids))
	for _, id := range ids {
		c.allowed[id] = true
	}
}

func (c *Controller) valid(id int64) bool {
	if id <= 0 {
		return false
	}
	if c.allowed == nil {
		return true
	}
	return c.allowed[id]
}

// SelectFromList selects a restaurant for the detail view. The viewport is
// left alone.
func (c *Controller) SelectFromList(id int64) bool {
	if !c.valid(id) {
		return false
	}
	c.state.Selected = id
	return true
}

// ClearSelection closes the detail view.
func (c *Controller) ClearSelection() {
	c.state.Selected = 0
}

// SelectFromMarker flies to a restaurant and schedules its popup for when the
// transition completes. Any popup still waiting on an earlier transition is
// discarded.
func (c *Controller) SelectFromMarker(id int64, pos geo.Position) (Transition, bool) {
	if !c.valid(id) {
		return Transition{}, false
	}
	return c.flyTo(pos, CloseUpZoom, id, false), true
}

// SeeOnMap behaves like SelectFromMarker and then closes the detail view so
// the map takes focus.
func (c *Controller) SeeOnMap(id int64, pos geo.Position) (Transition, bool) {
	if !c.valid(id) {
		return Transition{}, false
	}
	t := c.flyTo(pos, CloseUpZoom, id, true)
	c.state.Selected = 0
	return t, true
}

// RecenterToUser flies back to the user at overview zoom. Selection and the
// currently open popup are kept; a popup still waiting on an earlier
// transition is discarded since its marker will no longer be centered.
func (c *Controller) RecenterToUser(loc model.UserLocation) Transition {
	return c.flyTo(loc.Position(), OverviewZoom, 0, false)
}

// CompleteTransition is called by the map surface when the fly-to identified
// by token has finished. It returns false for superseded tokens, which are
// ignored. The popup stays closed if its restaurant left the restricted set
// while the transition was running.
func (c *Controller) CompleteTransition(token uint64) bool {
	if token == 0 || token != c.pendingToken {
		return false
	}
	if c.pendingPopup != 0 && c.valid(c.pendingPopup) {
		c.state.OpenPopup = c.pendingPopup
	}
	c.pendingToken = 0
	c.pendingPopup = 0
	return true
}

// ClosePopup closes the open marker popup.
func (c *Controller) ClosePopup() {
	c.state.OpenPopup = 0
}

func (c *Controller) flyTo(pos geo.Position, zoom int, popup int64, focus bool) Transition {
	c.token++
	center := pos
	c.state.Center = &center
	c.state.Zoom = zoom
	if popup != 0 {
		c.state.OpenPopup = 0
	}

	c.pendingToken = c.token
	c.pendingPopup = popup

	return Transition{
		Token:    c.token,
		Center:   pos,
		Zoom:     zoom,
		Popup:    popup,
		FocusMap: focus,
	}
}
