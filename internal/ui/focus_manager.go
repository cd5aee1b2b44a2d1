package ui

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// PanelType represents different UI panels
type PanelType int

const (
	ListPanel PanelType = iota
	DetailPanel
)

// String returns the panel name
func (p PanelType) String() string {
	switch p {
	case ListPanel:
		return "list"
	case DetailPanel:
		return "detail"
	default:
		return "unknown"
	}
}

// FocusManager tracks which panel receives navigation keys
type FocusManager struct {
	currentPanel PanelType
	focusRing    []PanelType
	// available reports whether a panel can take focus right now
	available func(PanelType) bool

	colorFocused   lipgloss.Color
	colorUnfocused lipgloss.Color
}

// NewFocusManager creates a focus manager starting on the list
func NewFocusManager(theme Theme, available func(PanelType) bool) *FocusManager {
	if available == nil {
		available = func(PanelType) bool { return true }
	}
	return &FocusManager{
		currentPanel:   ListPanel,
		focusRing:      []PanelType{ListPanel, DetailPanel},
		available:      available,
		colorFocused:   theme.BorderFocused,
		colorUnfocused: theme.Border,
	}
}

// SetFocus changes focus to panel when it can take focus
func (fm *FocusManager) SetFocus(panel PanelType) bool {
	if fm.currentPanel == panel || !fm.available(panel) {
		return false
	}
	fm.currentPanel = panel
	return true
}

// FocusNext moves focus to the next available panel in the ring
func (fm *FocusManager) FocusNext() bool {
	i := slices.Index(fm.focusRing, fm.currentPanel)
	for step := 1; step < len(fm.focusRing); step++ {
		if fm.SetFocus(fm.focusRing[(i+step)%len(fm.focusRing)]) {
			return true
		}
	}
	return false
}

// Validate returns focus to the list when the focused panel went away
func (fm *FocusManager) Validate() {
	if !fm.available(fm.currentPanel) {
		fm.currentPanel = ListPanel
	}
}

// GetCurrentFocus returns the currently focused panel
func (fm *FocusManager) GetCurrentFocus() PanelType {
	return fm.currentPanel
}

// IsFocused returns true if the specified panel is currently focused
func (fm *FocusManager) IsFocused(panel PanelType) bool {
	return fm.currentPanel == panel
}

// GetPanelTitle returns a styled title for a panel
func (fm *FocusManager) GetPanelTitle(panel PanelType, title string) string {
	style := lipgloss.NewStyle().Bold(true)
	if fm.IsFocused(panel) {
		return style.Foreground(fm.colorFocused).Render("● " + title)
	}
	return style.Foreground(fm.colorUnfocused).Render(title)
}
