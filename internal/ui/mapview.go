package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"campuseats/internal/geo"
	"campuseats/internal/model"
	"campuseats/internal/util"
	"campuseats/internal/viewport"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultCenter is shown until a location or a marker is flown to.
var DefaultCenter = geo.Position{Lat: 42.3382, Lng: -71.0877}

const (
	flyFrameInterval = time.Second / 30

	metersPerDegreeLat = 110540.0
	metersPerDegreeLng = 111320.0

	// One map cell stands in for 8x16 pixels of a 256px web map tile.
	cellPixelsX = 8
	cellPixelsY = 16

	gridSpacingX = 6
	gridSpacingY = 3
)

type flyFrameMsg struct {
	token uint64
	frame int
}

type flyDoneMsg struct {
	token uint64
}

type flight struct {
	token    uint64
	from, to geo.Position
	fromZoom int
	toZoom   int
	frames   int
	frame    int
}

// MapModel draws restaurants, the user and the open popup on a character grid
// and animates fly-to transitions.
type MapModel struct {
	center  geo.Position
	zoom    int
	markers []model.Restaurant
	user    *model.UserLocation
	popup   int64
	cursor  int
	flight  *flight
}

// NewMapModel creates a map centered on the campus default.
func NewMapModel() *MapModel {
	return &MapModel{center: DefaultCenter, zoom: viewport.OverviewZoom}
}

// Center returns the currently drawn center.
func (m *MapModel) Center() geo.Position { return m.center }

// Zoom returns the currently drawn zoom.
func (m *MapModel) Zoom() int { return m.zoom }

// Flying reports whether a transition is animating.
func (m *MapModel) Flying() bool { return m.flight != nil }

// SetMarkers replaces the drawn markers, keeping the marker cursor on the
// same restaurant when possible.
func (m *MapModel) SetMarkers(rs []model.Restaurant) {
	current := m.CursorID()
	m.markers = rs
	m.cursor = 0
	m.MoveCursorTo(current)
}

// SetUser sets or clears the user marker.
func (m *MapModel) SetUser(loc *model.UserLocation) { m.user = loc }

// SetPopup sets the restaurant whose popup is open. Zero closes it.
func (m *MapModel) SetPopup(id int64) { m.popup = id }

// Popup returns the open popup id.
func (m *MapModel) Popup() int64 { return m.popup }

// CursorMarker returns the marker under the map cursor.
func (m *MapModel) CursorMarker() (model.Restaurant, bool) {
	if m.cursor < 0 || m.cursor >= len(m.markers) {
		return model.Restaurant{}, false
	}
	return m.markers[m.cursor], true
}

// CursorID returns the id under the map cursor, or zero.
func (m *MapModel) CursorID() int64 {
	r, ok := m.CursorMarker()
	if !ok {
		return 0
	}
	return r.ID
}

// MoveCursor cycles through markers.
func (m *MapModel) MoveCursor(delta int) {
	n := len(m.markers)
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
}

// MoveCursorTo puts the cursor on id if it is drawn.
func (m *MapModel) MoveCursorTo(id int64) bool {
	for i, r := range m.markers {
		if r.ID == id {
			m.cursor = i
			return true
		}
	}
	return false
}

// FlyTo starts animating t over d. The returned command eventually yields a
// flyDoneMsg carrying t.Token unless a newer flight replaces this one.
func (m *MapModel) FlyTo(t viewport.Transition, d time.Duration) tea.Cmd {
	frames := int(d / flyFrameInterval)
	if frames <= 0 {
		m.center = t.Center
		m.zoom = t.Zoom
		m.flight = nil
		return flyDoneCmd(t.Token)
	}

	m.flight = &flight{
		token:    t.Token,
		from:     m.center,
		to:       t.Center,
		fromZoom: m.zoom,
		toZoom:   t.Zoom,
		frames:   frames,
	}
	return flyFrameCmd(t.Token, 1)
}

// Update advances the running flight. Frames from replaced flights are dropped.
func (m *MapModel) Update(msg flyFrameMsg) tea.Cmd {
	f := m.flight
	if f == nil || msg.token != f.token {
		return nil
	}

	f.frame = msg.frame
	if f.frame >= f.frames {
		m.center = f.to
		m.zoom = f.toZoom
		m.flight = nil
		return flyDoneCmd(msg.token)
	}

	p := easeInOut(float64(f.frame) / float64(f.frames))
	m.center = geo.Position{
		Lat: f.from.Lat + (f.to.Lat-f.from.Lat)*p,
		Lng: f.from.Lng + (f.to.Lng-f.from.Lng)*p,
	}
	if p >= 0.5 {
		m.zoom = f.toZoom
	}
	return flyFrameCmd(f.token, f.frame+1)
}

func flyFrameCmd(token uint64, frame int) tea.Cmd {
	return tea.Tick(flyFrameInterval, func(time.Time) tea.Msg {
		return flyFrameMsg{token: token, frame: frame}
	})
}

func flyDoneCmd(token uint64) tea.Cmd {
	return func() tea.Msg {
		return flyDoneMsg{token: token}
	}
}

func easeInOut(t float64) float64 {
	return t * t * (3 - 2*t)
}

func metersPerCell(lat float64, zoom int) (float64, float64) {
	mpp := 156543.03392 * math.Cos(lat*math.Pi/180) / math.Pow(2, float64(zoom))
	return mpp * cellPixelsX, mpp * cellPixelsY
}

// project maps p to a grid cell. ok is false when the cell is off the grid.
func (m *MapModel) project(p geo.Position, w, h int) (col, row int, ok bool) {
	mx, my := metersPerCell(m.center.Lat, m.zoom)
	if mx < 1e-9 || my < 1e-9 {
		return 0, 0, false
	}
	cos := math.Cos(m.center.Lat * math.Pi / 180)
	dx := (p.Lng - m.center.Lng) * metersPerDegreeLng * cos
	dy := (p.Lat - m.center.Lat) * metersPerDegreeLat
	col = w/2 + int(math.Round(dx/mx))
	row = h/2 - int(math.Round(dy/my))
	return col, row, col >= 0 && col < w && row >= 0 && row < h
}

func (m *MapModel) popupRestaurant() (model.Restaurant, bool) {
	if m.popup == 0 {
		return model.Restaurant{}, false
	}
	for _, r := range m.markers {
		if r.ID == m.popup {
			return r, true
		}
	}
	return model.Restaurant{}, false
}

// View renders the map panel.
func (m *MapModel) View(width, height int, focused bool) string {
	var popup string
	if r, ok := m.popupRestaurant(); ok {
		popup = renderPopup(r, width)
	}

	status := StatusBarStyle.Render(fmt.Sprintf("zoom %d  ·  %.4f, %.4f", m.zoom, m.center.Lat, m.center.Lng))
	gridHeight := max(3, height-lipgloss.Height(status)-lipgloss.Height(popup))
	grid := m.renderGrid(max(10, width), gridHeight, focused)

	parts := []string{grid}
	if popup != "" {
		parts = append(parts, popup)
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *MapModel) renderGrid(w, h int, focused bool) string {
	cells := make([][]string, h)
	mx, my := metersPerCell(m.center.Lat, m.zoom)
	cos := math.Cos(m.center.Lat * math.Pi / 180)

	// Anchor the dot lattice to the world so it moves when the map pans.
	ox, oy := 0, 0
	if mx > 1e-9 && my > 1e-9 {
		ox = int(math.Round(m.center.Lng * metersPerDegreeLng * cos / mx))
		oy = int(math.Round(m.center.Lat * metersPerDegreeLat / my))
	}

	dot := MapGridStyle.Render("·")
	for row := range cells {
		cells[row] = make([]string, w)
		for col := range cells[row] {
			if floorMod(col+ox, gridSpacingX) == 0 && floorMod(row-oy, gridSpacingY) == 0 {
				cells[row][col] = dot
			} else {
				cells[row][col] = " "
			}
		}
	}

	if m.user != nil {
		ucol, urow, _ := m.project(m.user.Position(), w, h)
		radius := m.user.AccuracyRadius()
		tolerance := math.Max(mx, my) / 2
		ring := AccuracyStyle.Render("∘")
		for row := 0; row < h; row++ {
			for col := 0; col < w; col++ {
				d := math.Hypot(float64(col-ucol)*mx, float64(row-urow)*my)
				if math.Abs(d-radius) <= tolerance {
					cells[row][col] = ring
				}
			}
		}
	}

	for i, r := range m.markers {
		col, row, ok := m.project(r.Location, w, h)
		if !ok {
			continue
		}
		switch {
		case focused && i == m.cursor:
			cells[row][col] = MarkerCursorStyle.Render("◆")
		case r.ID == m.popup:
			cells[row][col] = MarkerCursorStyle.Render("◆")
		default:
			cells[row][col] = MarkerStyle.Render("◆")
		}
	}

	if m.user != nil {
		if col, row, ok := m.project(m.user.Position(), w, h); ok {
			cells[row][col] = UserMarkerStyle.Render("@")
		}
	}

	lines := make([]string, h)
	for row := range cells {
		lines[row] = strings.Join(cells[row], "")
	}
	return strings.Join(lines, "\n")
}

func renderPopup(r model.Restaurant, width int) string {
	inner := max(10, width-4)
	lines := []string{
		LabelStyle.Render(util.TruncateString(r.Name, inner)),
		util.TruncateString(r.Cuisine, inner),
		util.TruncateString(fmt.Sprintf("Dining dollars: %s  ·  Discount: %s",
			util.FormatYesNo(r.AcceptsAltPayment), util.FormatDiscount(r.Discount)), inner),
	}
	if r.Distance != nil {
		lines = append(lines, util.FormatDistance(r.Distance)+" away")
	}
	lines = append(lines, HelpKeyStyle.Render("enter")+" "+HelpDescStyle.Render("view details"))
	return PopupStyle.Width(max(10, width-2)).Render(strings.Join(lines, "\n"))
}

func floorMod(a, b int) int {
	return ((a % b) + b) % b
}
