package ui

import (
	"fmt"
	"strings"

	"campuseats/internal/model"
	"campuseats/internal/util"

	"github.com/charmbracelet/lipgloss"
)

// maxDetailImages is how many image references the detail view lists.
const maxDetailImages = 3

// RestaurantDetailModel represents the restaurant detail screen.
type RestaurantDetailModel struct {
	restaurant model.Restaurant
}

// NewRestaurantDetailModel creates a new restaurant detail model.
func NewRestaurantDetailModel(r model.Restaurant) *RestaurantDetailModel {
	return &RestaurantDetailModel{restaurant: r}
}

// ID returns the restaurant shown.
func (m *RestaurantDetailModel) ID() int64 {
	return m.restaurant.ID
}

// View renders the restaurant detail.
func (m *RestaurantDetailModel) View(width, height int) string {
	r := m.restaurant

	shortcuts := HelpDescStyle.Render("o see on map  h back")
	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(shortcuts)

	var sections []string

	var fields []string
	fields = append(fields, renderField("Name", r.Name))
	fields = append(fields, renderField("Cuisine", r.Cuisine))
	fields = append(fields, renderField("Accepts Dining Dollars", util.FormatYesNo(r.AcceptsAltPayment)))
	fields = append(fields, renderField("Student Discount", util.FormatDiscount(r.Discount)))
	fields = append(fields, renderField("Hours", util.FormatHours(r.Hours)))
	if r.Distance != nil {
		fields = append(fields, renderField("Distance", util.FormatDistance(r.Distance)))
	}
	sections = append(sections, strings.Join(fields, "\n"))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))
	sections = append(sections, divider)

	if len(r.Images) > 0 {
		n := min(len(r.Images), maxDetailImages)
		refs := make([]string, n)
		for i := 0; i < n; i++ {
			refs[i] = fmt.Sprintf("  [%d] %s", i+1, r.Images[i])
		}
		sections = append(sections, LabelStyle.Render("Photos:")+"\n"+NormalRowStyle.Render(strings.Join(refs, "\n")))
	}

	if len(r.Menu) > 0 {
		items := make([]string, len(r.Menu))
		for i, item := range r.Menu {
			items[i] = "  • " + item.Item
		}
		sections = append(sections, LabelStyle.Render("Popular Items:")+"\n"+NormalRowStyle.Render(strings.Join(items, "\n")))
	} else {
		sections = append(sections, HelpDescStyle.Render("No menu items listed."))
	}

	if r.MapLink != "" {
		sections = append(sections, renderField("Google Maps", r.MapLink))
	}
	sections = append(sections, HelpKeyStyle.Render("o")+" "+HelpDescStyle.Render("See on Map"))

	info := PanelStyle.
		Width(width - 4).
		Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(lipgloss.Left, header, info)
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}
