package ui

import (
	"strings"

	"campuseats/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, focus Focus, width int) string {
	switch screen {
	case model.ScreenRestaurants:
		if focus == FocusMap {
			return renderMapHelp(width)
		}
		return renderRestaurantsHelp(width)
	case model.ScreenRestaurantDetail:
		return renderRestaurantDetailHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderRestaurantsHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("enter", "details"),
		helpKey("m", "show on map"),
		helpKey("a/d/n", "filters"),
		helpKey("c", "recenter"),
		helpKey("tab", "map"),
		helpKey("?", "help"),
	}
	return renderHelpLine(keys, width)
}

func renderMapHelp(width int) string {
	keys := []string{
		helpKey("j/k", "next marker"),
		helpKey("enter", "open marker / details"),
		helpKey("x", "close popup"),
		helpKey("a/d/n", "filters"),
		helpKey("c", "recenter"),
		helpKey("tab", "list"),
	}
	return renderHelpLine(keys, width)
}

func renderRestaurantDetailHelp(width int) string {
	keys := []string{
		helpKey("h/esc", "back"),
		helpKey("o", "see on map"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("h/l", "back/select"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"h / ← / b", "Go back"},
			{"l / → / enter", "Open / select"},
			{"tab", "Switch between list and map"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"ctrl+d", "Half page down"},
			{"ctrl+u", "Half page up"},
			{"esc", "Cancel / close"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Filters"),
		helpSection([]helpItem{
			{"a", "Accepts dining dollars"},
			{"d", "Has a student discount"},
			{"n", "Nearest first (needs your location)"},
		}),
		titleSection("Map"),
		helpSection([]helpItem{
			{"m", "Fly to the highlighted restaurant and open its popup"},
			{"enter", "Open the marker under the map cursor, again for its details"},
			{"x", "Close popup"},
			{"c", "Recenter on your location"},
		}),
		titleSection("Restaurant Detail"),
		helpSection([]helpItem{
			{"o", "See on map"},
			{"b / h", "Back to list"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
