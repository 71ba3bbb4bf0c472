package ui

import "github.com/charmbracelet/bubbles/key"

// GState represents the state for "gg" navigation.
type GState int

const (
	GStateIdle GState = iota
	GStateFirstG
)

// KeyMap defines all keybindings.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Select       key.Binding
	Back         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
	Quit         key.Binding
	Help         key.Binding
	Focus        key.Binding
	AltPayment   key.Binding
	Discount     key.Binding
	Nearest      key.Binding
	FlyTo        key.Binding
	SeeOnMap     key.Binding
	Recenter     key.Binding
	ClosePopup   key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("l/enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "h", "left", "esc"),
			key.WithHelp("h/esc", "back"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "½ page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "½ page up"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "list/map"),
		),
		AltPayment: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "dining dollars"),
		),
		Discount: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "student discount"),
		),
		Nearest: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "nearest first"),
		),
		FlyTo: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "show marker"),
		),
		SeeOnMap: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "see on map"),
		),
		Recenter: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "recenter"),
		),
		ClosePopup: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close popup"),
		),
	}
}
