package ui

import (
	"fmt"
	"strings"

	"campuseats/internal/model"
	"campuseats/internal/util"

	"github.com/charmbracelet/lipgloss"
)

// EmptyResultsMessage is shown when the filters leave nothing to list.
const EmptyResultsMessage = "No restaurants found matching the selected criteria."

// cardHeight is the number of lines one restaurant card occupies.
const cardHeight = 3

// RestaurantsModel is the card list beside the map.
type RestaurantsModel struct {
	rows   []model.Restaurant
	cursor int
	offset int

	viewportHeight int
}

// NewRestaurantsModel creates a new restaurants model.
func NewRestaurantsModel() *RestaurantsModel {
	return &RestaurantsModel{}
}

// SetRows replaces the listed restaurants. The cursor follows the previously
// highlighted restaurant when it is still present.
func (m *RestaurantsModel) SetRows(rows []model.Restaurant) {
	current := m.SelectedID()
	m.rows = rows
	m.cursor = 0
	for i, r := range rows {
		if r.ID == current {
			m.cursor = i
			break
		}
	}
	m.clampCursor()
}

// Len returns the number of listed restaurants.
func (m *RestaurantsModel) Len() int {
	return len(m.rows)
}

// Current returns the restaurant under the cursor.
func (m *RestaurantsModel) Current() (model.Restaurant, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.Restaurant{}, false
	}
	return m.rows[m.cursor], true
}

// SelectedID returns the id under the cursor, or zero.
func (m *RestaurantsModel) SelectedID() int64 {
	r, ok := m.Current()
	if !ok {
		return 0
	}
	return r.ID
}

// MoveTo puts the cursor on id if it is listed.
func (m *RestaurantsModel) MoveTo(id int64) bool {
	for i, r := range m.rows {
		if r.ID == id {
			m.cursor = i
			m.scrollToCursor()
			return true
		}
	}
	return false
}

func (m *RestaurantsModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollToCursor()
}

func (m *RestaurantsModel) visibleCards() int {
	if m.viewportHeight <= 0 {
		return 5
	}
	return max(1, m.viewportHeight/cardHeight)
}

func (m *RestaurantsModel) scrollToCursor() {
	vc := m.visibleCards()
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+vc {
		m.offset = m.cursor - vc + 1
	}
}

// View renders the list. focused draws the cursor highlighted.
func (m *RestaurantsModel) View(width, height int, focused bool) string {
	if len(m.rows) == 0 {
		return EmptyStateStyle.Width(width).Render(EmptyResultsMessage)
	}

	m.viewportHeight = height - 1
	m.scrollToCursor()

	var cards []string
	for i := m.offset; i < len(m.rows) && i < m.offset+m.visibleCards(); i++ {
		style := NormalRowStyle
		if i == m.cursor && focused {
			style = SelectedRowStyle
		}
		cards = append(cards, renderCard(m.rows[i], width, style))
	}

	status := StatusBarStyle.Render(fmt.Sprintf("%d restaurants  ·  %d/%d", len(m.rows), m.cursor+1, len(m.rows)))

	content := strings.Join(cards, "\n")
	spacerHeight := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, status)
}

func renderCard(r model.Restaurant, width int, style lipgloss.Style) string {
	inner := max(10, width-2)

	title := util.TruncateString(r.Name, inner)
	if r.Distance != nil {
		dist := util.FormatDistance(r.Distance)
		title = util.TruncateString(r.Name, max(1, inner-len(dist)-2))
		title += strings.Repeat(" ", max(1, inner-lipgloss.Width(title)-lipgloss.Width(dist))) + dist
	}

	attrs := fmt.Sprintf("Dining dollars: %s  ·  Discount: %s",
		util.FormatYesNo(r.AcceptsAltPayment), util.FormatDiscount(r.Discount))

	lines := []string{
		style.Bold(true).Width(width).Render(" " + title),
		style.Width(width).Render(" " + util.TruncateString(r.Cuisine, inner)),
		style.Width(width).Foreground(ColorMuted).Render(" " + util.TruncateString(attrs, inner)),
	}
	return strings.Join(lines, "\n")
}

// MoveDown moves the cursor down.
func (m *RestaurantsModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
		m.scrollToCursor()
	}
}

// MoveUp moves the cursor up.
func (m *RestaurantsModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		m.scrollToCursor()
	}
}

// JumpToTop jumps to the first item.
func (m *RestaurantsModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last item.
func (m *RestaurantsModel) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
		m.scrollToCursor()
	}
}

// HalfPageDown moves down half a page.
func (m *RestaurantsModel) HalfPageDown() {
	m.cursor += max(1, m.visibleCards()/2)
	m.clampCursor()
}

// HalfPageUp moves up half a page.
func (m *RestaurantsModel) HalfPageUp() {
	m.cursor -= max(1, m.visibleCards()/2)
	m.clampCursor()
}
