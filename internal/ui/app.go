package ui

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"campuseats/internal/db"
	"campuseats/internal/discover"
	"campuseats/internal/location"
	"campuseats/internal/model"
	"campuseats/internal/viewport"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fetchingLocationText    = "Fetching your location..."
	locationUnavailableText = "Location unavailable"

	locationTimeout = 10 * time.Second
	addressTimeout  = 10 * time.Second
)

// Focus is the panel receiving navigation keys on the restaurants screen.
type Focus int

const (
	FocusList Focus = iota
	FocusMap
)

// Options configures the root model. A nil Locator leaves the user location
// unknown; a nil Geocoder always falls back to coordinates.
type Options struct {
	Locator     location.Locator
	Geocoder    location.ReverseGeocoder
	FlyDuration time.Duration
	PrefsPath   string
}

// Model is the root Bubble Tea model.
type Model struct {
	db     *sql.DB
	opts   Options
	screen model.Screen
	focus  Focus
	gState GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool

	catalog       []model.Restaurant
	catalogLoaded bool
	filters       discover.FilterState
	derived       *discover.Result

	user     *model.UserLocation
	locating bool
	address  string

	controller       *viewport.Controller
	restaurants      *RestaurantsModel
	mapView          *MapModel
	restaurantDetail *RestaurantDetailModel
	spinner          spinner.Model

	keys  KeyMap
	prefs UIPreferences
}

// New creates a new root model.
func New(database *sql.DB, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	prefs := loadUIPreferences(opts.PrefsPath)

	return Model{
		db:          database,
		opts:        opts,
		screen:      model.ScreenRestaurants,
		focus:       FocusList,
		gState:      GStateIdle,
		filters:     prefs.Filters,
		locating:    opts.Locator != nil,
		controller:  viewport.New(),
		restaurants: NewRestaurantsModel(),
		mapView:     NewMapModel(),
		spinner:     sp,
		keys:        DefaultKeyMap(),
		prefs:       prefs,
	}
}

// Init loads the catalog and starts acquiring the user location.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.db != nil {
		cmds = append(cmds, loadCatalogCmd(m.db))
	}
	if m.opts.Locator != nil {
		cmds = append(cmds, acquireLocationCmd(m.opts.Locator), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.showingHelp {
			if msg.String() == "esc" || key.Matches(msg, m.keys.Help) {
				m.showingHelp = false
			}
			return m, nil
		}
		if key.Matches(msg, m.keys.Help) {
			m.showingHelp = true
			return m, nil
		}
		return m.handleNavMode(msg)

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil

	case model.CatalogLoadedMsg:
		m.catalog = msg.Restaurants
		m.catalogLoaded = true
		m.error = ""
		m.rederive()
		return m, nil

	case model.LocationAcquiredMsg:
		return m.handleLocation(msg)

	case model.AddressResolvedMsg:
		// Drop answers for a location that has since been replaced.
		if m.user != nil && msg.Location == *m.user {
			m.address = msg.Address
		}
		return m, nil

	case spinner.TickMsg:
		if !m.locating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case flyFrameMsg:
		return m, m.mapView.Update(msg)

	case flyDoneMsg:
		if m.controller.CompleteTransition(msg.token) {
			m.syncViewport()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleLocation(msg model.LocationAcquiredMsg) (tea.Model, tea.Cmd) {
	m.locating = false
	if msg.Err != nil {
		m.user = nil
		m.address = ""
		m.mapView.SetUser(nil)
		m.rederive()
		return m, nil
	}

	loc := msg.Location
	if loc.Accuracy <= 0 {
		loc.Accuracy = model.DefaultAccuracyMeters
	}
	m.user = &loc
	m.address = ""
	m.mapView.SetUser(m.user)
	m.rederive()

	cmds := []tea.Cmd{resolveAddressCmd(m.opts.Geocoder, loc)}
	// Center on the user only if nothing has been flown to yet.
	if m.controller.State().Center == nil {
		t := m.controller.RecenterToUser(loc)
		cmds = append(cmds, m.mapView.FlyTo(t, m.opts.FlyDuration))
	}
	return m, tea.Batch(cmds...)
}

// rederive recomputes the derived view and pushes it to the list, the map
// and the controller's marker set.
func (m *Model) rederive() {
	if !m.catalogLoaded {
		return
	}

	r := discover.Derive(m.catalog, m.filters, m.user)
	m.derived = &r
	m.restaurants.SetRows(r.Restaurants)
	m.mapView.SetMarkers(r.Restaurants)
	m.controller.Restrict(r.IDs())

	if s := m.controller.State(); s.OpenPopup != 0 {
		if _, ok := r.Find(s.OpenPopup); !ok {
			m.controller.ClosePopup()
		}
	}
	m.syncViewport()
}

func (m *Model) syncViewport() {
	m.mapView.SetPopup(m.controller.State().OpenPopup)
}

func (m *Model) persistFilters() {
	m.prefs.Filters = m.filters
	if err := saveUIPreferences(m.opts.PrefsPath, m.prefs); err != nil {
		log.Printf("saving preferences: %v", err)
	}
}

// handleNavMode handles navigation input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle "gg" state machine
	if msg.String() == "g" {
		if m.gState == GStateIdle {
			m.gState = GStateFirstG
			return m, nil
		}
		m.gState = GStateIdle
		return m.handleJumpToTop()
	}
	m.gState = GStateIdle

	switch m.screen {
	case model.ScreenRestaurants:
		return m.handleRestaurantsNav(msg)
	case model.ScreenRestaurantDetail:
		return m.handleRestaurantDetailNav(msg)
	}
	return m, nil
}

func (m Model) handleJumpToTop() (tea.Model, tea.Cmd) {
	if m.screen != model.ScreenRestaurants {
		return m, nil
	}
	if m.focus == FocusMap {
		m.mapView.MoveCursorTo(m.restaurantsFirstID())
		return m, nil
	}
	m.restaurants.JumpToTop()
	return m, nil
}

func (m Model) restaurantsFirstID() int64 {
	if m.derived == nil || m.derived.Len() == 0 {
		return 0
	}
	return m.derived.Restaurants[0].ID
}

func (m Model) handleRestaurantsNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.AltPayment):
		m.filters.ByAltPayment = !m.filters.ByAltPayment
		m.applyFilters("Dining dollars", m.filters.ByAltPayment)
		return m, nil
	case key.Matches(msg, m.keys.Discount):
		m.filters.ByDiscount = !m.filters.ByDiscount
		m.applyFilters("Student discount", m.filters.ByDiscount)
		return m, nil
	case key.Matches(msg, m.keys.Nearest):
		m.filters.ByProximity = !m.filters.ByProximity
		m.applyFilters("Nearest first", m.filters.ByProximity)
		if m.filters.ByProximity && m.user == nil {
			m.info = "Nearest first needs your location; showing catalog order"
		}
		return m, nil
	case key.Matches(msg, m.keys.Recenter):
		return m.recenter()
	case key.Matches(msg, m.keys.Focus):
		if m.focus == FocusList {
			m.focus = FocusMap
			m.mapView.MoveCursorTo(m.restaurants.SelectedID())
		} else {
			m.focus = FocusList
			m.restaurants.MoveTo(m.mapView.CursorID())
		}
		return m, nil
	}

	if m.focus == FocusMap {
		return m.handleMapNav(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.restaurants.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.restaurants.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		m.restaurants.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.restaurants.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.restaurants.HalfPageUp()
	case key.Matches(msg, m.keys.Select):
		if r, ok := m.restaurants.Current(); ok {
			m.openDetail(r)
		}
	case key.Matches(msg, m.keys.FlyTo):
		if r, ok := m.restaurants.Current(); ok {
			return m.selectMarker(r)
		}
	}
	return m, nil
}

func (m Model) handleMapNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.mapView.MoveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.mapView.MoveCursor(-1)
	case key.Matches(msg, m.keys.Select):
		r, ok := m.mapView.CursorMarker()
		if !ok {
			return m, nil
		}
		// Select on a marker whose popup is already open views its details.
		if r.ID == m.controller.State().OpenPopup {
			m.openDetail(r)
			return m, nil
		}
		return m.selectMarker(r)
	case key.Matches(msg, m.keys.FlyTo):
		if r, ok := m.mapView.CursorMarker(); ok {
			return m.selectMarker(r)
		}
	case key.Matches(msg, m.keys.ClosePopup), key.Matches(msg, m.keys.Back):
		m.controller.ClosePopup()
		m.syncViewport()
	}
	return m, nil
}

func (m Model) handleRestaurantDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.controller.ClearSelection()
		m.restaurantDetail = nil
		m.screen = model.ScreenRestaurants
	case key.Matches(msg, m.keys.SeeOnMap):
		if m.restaurantDetail == nil {
			return m, nil
		}
		r := m.restaurantDetail.restaurant
		t, ok := m.controller.SeeOnMap(r.ID, r.Location)
		if !ok {
			m.info = "Not shown on the map with the current filters"
			return m, nil
		}
		m.restaurantDetail = nil
		m.screen = model.ScreenRestaurants
		if t.FocusMap {
			m.focus = FocusMap
		}
		m.mapView.MoveCursorTo(r.ID)
		m.restaurants.MoveTo(r.ID)
		m.syncViewport()
		return m, m.mapView.FlyTo(t, m.opts.FlyDuration)
	}
	return m, nil
}

func (m *Model) openDetail(r model.Restaurant) {
	if !m.controller.SelectFromList(r.ID) {
		return
	}
	m.restaurantDetail = NewRestaurantDetailModel(r)
	m.screen = model.ScreenRestaurantDetail
}

func (m Model) selectMarker(r model.Restaurant) (tea.Model, tea.Cmd) {
	t, ok := m.controller.SelectFromMarker(r.ID, r.Location)
	if !ok {
		return m, nil
	}
	m.mapView.MoveCursorTo(r.ID)
	m.restaurants.MoveTo(r.ID)
	m.syncViewport()
	return m, m.mapView.FlyTo(t, m.opts.FlyDuration)
}

func (m Model) recenter() (tea.Model, tea.Cmd) {
	if m.user == nil {
		m.info = locationUnavailableText
		return m, nil
	}
	t := m.controller.RecenterToUser(*m.user)
	m.syncViewport()
	return m, m.mapView.FlyTo(t, m.opts.FlyDuration)
}

func (m *Model) applyFilters(label string, on bool) {
	m.rederive()
	m.persistFilters()

	state := "off"
	if on {
		state = "on"
	}
	m.info = fmt.Sprintf("%s: %s", label, state)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	var breadcrumbParts []string

	// Header and footer take two lines each.
	contentHeight := m.height - 4

	switch m.screen {
	case model.ScreenRestaurants:
		breadcrumbParts = []string{"Restaurants"}
		content = m.renderDiscover(m.width, contentHeight)
	case model.ScreenRestaurantDetail:
		breadcrumbParts = []string{"Restaurants", "Detail"}
		if m.restaurantDetail != nil {
			breadcrumbParts = []string{"Restaurants", m.restaurantDetail.restaurant.Name}
			content = m.restaurantDetail.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumbParts, m.width)
	footer := RenderHelp(m.screen, m.focus, m.width)

	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Render(content)

	parts := []string{header}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderDiscover(width, height int) string {
	filterBar := renderFilterBar(m.filters, width)
	addressLine := StatusBarStyle.Width(width).Render(m.addressText())
	bodyHeight := max(3, height-lipgloss.Height(filterBar)-lipgloss.Height(addressLine))

	mapWidth := width * 3 / 5
	listWidth := max(10, width-mapWidth-1)

	mapPanel := m.mapView.View(mapWidth, bodyHeight, m.focus == FocusMap)

	var list string
	if m.derived == nil {
		list = EmptyStateStyle.Width(listWidth).Render("Loading restaurants...")
	} else {
		list = m.restaurants.View(listWidth, bodyHeight, m.focus == FocusList)
	}

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.TrimSuffix(strings.Repeat("│\n", bodyHeight), "\n"))

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(mapWidth).Render(mapPanel),
		divider,
		list,
	)
	return lipgloss.JoinVertical(lipgloss.Left, filterBar, addressLine, body)
}

func (m Model) addressText() string {
	switch {
	case m.locating:
		return m.spinner.View() + " " + fetchingLocationText
	case m.user == nil:
		return locationUnavailableText
	case m.address == "":
		return location.CoordinateFallback(m.user.Latitude, m.user.Longitude)
	default:
		return "You are near " + m.address
	}
}

func renderFilterBar(f discover.FilterState, width int) string {
	chip := func(keyName, label string, on bool) string {
		if on {
			return ChipOnStyle.Render(keyName + " ✓ " + label)
		}
		return ChipOffStyle.Render(keyName + "   " + label)
	}
	chips := lipgloss.JoinHorizontal(lipgloss.Left,
		chip("a", "Dining dollars", f.ByAltPayment), " ",
		chip("d", "Student discount", f.ByDiscount), " ",
		chip("n", "Nearest first", f.ByProximity),
	)
	return lipgloss.NewStyle().Width(width).Padding(0, 1).Render(chips)
}

func renderHeader(breadcrumbParts []string, width int) string {
	title := HeaderStyle.Render("campuseats")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb
	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func loadCatalogCmd(database *sql.DB) tea.Cmd {
	return func() tea.Msg {
		restaurants, err := db.ListRestaurants(database)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.CatalogLoadedMsg{Restaurants: restaurants}
	}
}

func acquireLocationCmd(locator location.Locator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), locationTimeout)
		defer cancel()

		loc, err := locator.Acquire(ctx)
		if err != nil {
			log.Printf("location: %v", err)
		}
		return model.LocationAcquiredMsg{Location: loc, Err: err}
	}
}

func resolveAddressCmd(geocoder location.ReverseGeocoder, loc model.UserLocation) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), addressTimeout)
		defer cancel()

		address, err := location.DescribeLocation(ctx, geocoder, loc.Latitude, loc.Longitude)
		if err != nil {
			log.Printf("reverse geocode: %v", err)
		}
		return model.AddressResolvedMsg{Location: loc, Address: address, Err: err}
	}
}
