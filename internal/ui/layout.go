package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// LayoutManager handles responsive layout calculations and panel sizing
type LayoutManager struct {
	width  int
	height int
	config LayoutConfig
}

// LayoutConfig defines the layout configuration
type LayoutConfig struct {
	ShowDetail  bool    `json:"show_detail"`
	DetailRatio float64 `json:"detail_ratio"`
	ShowHelp    bool    `json:"show_help"`
}

// DefaultLayoutConfig shows the detail pane and the help line
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		ShowDetail:  true,
		DetailRatio: 0.4,
		ShowHelp:    true,
	}
}

// ResponsiveBreakpoints define screen size breakpoints for responsive design
type ResponsiveBreakpoints struct {
	Small  int // < 80 columns
	Medium int // 80-120 columns
	Large  int // > 120 columns
}

var breakpoints = ResponsiveBreakpoints{
	Small:  80,
	Medium: 120,
	Large:  150,
}

const minDetailWidth = 30

// Fixed rows around the list
const (
	headerHeight      = 1
	tableHeaderHeight = 1
	statusHeight      = 1
)

// NewLayoutManager creates a new layout manager
func NewLayoutManager(width, height int, config LayoutConfig) *LayoutManager {
	lm := &LayoutManager{config: config}
	lm.UpdateDimensions(width, height)
	return lm
}

// UpdateDimensions updates the layout dimensions
func (lm *LayoutManager) UpdateDimensions(width, height int) {
	lm.width = max(width, 0)
	lm.height = max(height, 0)
}

// Config returns the layout configuration
func (lm *LayoutManager) Config() LayoutConfig { return lm.config }

// ToggleHelp flips the help line
func (lm *LayoutManager) ToggleHelp() {
	lm.config.ShowHelp = !lm.config.ShowHelp
}

// GetLayoutMode returns the current layout mode based on screen size
func (lm *LayoutManager) GetLayoutMode() LayoutMode {
	switch {
	case lm.width < breakpoints.Small:
		return LayoutModeCompact
	case lm.width < breakpoints.Large:
		return LayoutModeStandard
	default:
		return LayoutModeExpanded
	}
}

// detailRatio narrows the detail pane on wide screens
func (lm *LayoutManager) detailRatio() float64 {
	if lm.GetLayoutMode() == LayoutModeExpanded {
		return lm.config.DetailRatio * 0.85
	}
	return lm.config.DetailRatio
}

// CalculatePanelDimensions returns the panel sizes. The detail pane sits to
// the right of the list, or below it on compact screens, and only when
// detail is true.
func (lm *LayoutManager) CalculatePanelDimensions(detail bool) PanelDimensions {
	helpHeight := 0
	if lm.config.ShowHelp {
		helpHeight = 1
	}
	available := max(lm.height-headerHeight-tableHeaderHeight-statusHeight-helpHeight, 0)

	dims := PanelDimensions{
		Header: Dimensions{Width: lm.width, Height: headerHeight},
		Status: Dimensions{Width: lm.width, Height: statusHeight},
		Help:   Dimensions{Width: lm.width, Height: helpHeight},
		List:   Dimensions{Width: lm.width, Height: available},
	}
	if !detail || !lm.config.ShowDetail {
		dims.TableHeader = Dimensions{Width: lm.width, Height: tableHeaderHeight}
		return dims
	}

	if lm.GetLayoutMode() == LayoutModeCompact {
		detailHeight := int(float64(available) * lm.detailRatio())
		dims.List.Height = available - detailHeight
		dims.Detail = Dimensions{Width: lm.width, Height: detailHeight}
		dims.TableHeader = Dimensions{Width: lm.width, Height: tableHeaderHeight}
		return dims
	}

	detailWidth := max(int(float64(lm.width)*lm.detailRatio()), minDetailWidth)
	detailWidth = min(detailWidth, lm.width)
	dims.List.Width = lm.width - detailWidth
	dims.Detail = Dimensions{Width: detailWidth, Height: available + tableHeaderHeight}
	dims.TableHeader = Dimensions{Width: dims.List.Width, Height: tableHeaderHeight}
	return dims
}

// PanelDimensions holds dimensions for all panels
type PanelDimensions struct {
	Header      Dimensions
	TableHeader Dimensions
	List        Dimensions
	Detail      Dimensions
	Status      Dimensions
	Help        Dimensions
}

// Dimensions represents width and height
type Dimensions struct {
	Width  int
	Height int
}

// LayoutMode represents different layout modes
type LayoutMode int

const (
	LayoutModeCompact LayoutMode = iota
	LayoutModeStandard
	LayoutModeExpanded
)

// StyleManager handles consistent styling across panels
type StyleManager struct {
	theme Theme
	dark  bool
}

// Theme defines the color scheme and styling
type Theme struct {
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Accent        lipgloss.Color
	Background    lipgloss.Color
	Surface       lipgloss.Color
	Stripe        lipgloss.Color
	OnPrimary     lipgloss.Color
	OnSecondary   lipgloss.Color
	OnBackground  lipgloss.Color
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Error         lipgloss.Color
	Warning       lipgloss.Color
	Success       lipgloss.Color
	Info          lipgloss.Color
}

// Default themes
var (
	DarkTheme = Theme{
		Primary:       lipgloss.Color("63"),  // Blue
		Secondary:     lipgloss.Color("240"), // Gray
		Accent:        lipgloss.Color("205"), // Pink
		Background:    lipgloss.Color("235"), // Dark gray
		Surface:       lipgloss.Color("236"),
		Stripe:        lipgloss.Color("237"),
		OnPrimary:     lipgloss.Color("230"),
		OnSecondary:   lipgloss.Color("250"),
		OnBackground:  lipgloss.Color("255"), // White
		Border:        lipgloss.Color("241"),
		BorderFocused: lipgloss.Color("63"),
		Error:         lipgloss.Color("196"), // Red
		Warning:       lipgloss.Color("214"), // Orange
		Success:       lipgloss.Color("34"),  // Green
		Info:          lipgloss.Color("39"),  // Cyan
	}

	LightTheme = Theme{
		Primary:       lipgloss.Color("25"), // Dark blue
		Secondary:     lipgloss.Color("240"),
		Accent:        lipgloss.Color("205"),
		Background:    lipgloss.Color("255"),
		Surface:       lipgloss.Color("255"),
		Stripe:        lipgloss.Color("254"),
		OnPrimary:     lipgloss.Color("255"),
		OnSecondary:   lipgloss.Color("0"),
		OnBackground:  lipgloss.Color("0"),
		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("25"),
		Error:         lipgloss.Color("196"),
		Warning:       lipgloss.Color("214"),
		Success:       lipgloss.Color("34"),
		Info:          lipgloss.Color("39"),
	}
)

// ThemeByName returns the named theme and whether it is dark
func ThemeByName(name string) (Theme, bool) {
	if name == "light" {
		return LightTheme, false
	}
	return DarkTheme, true
}

// NewStyleManager creates a new style manager
func NewStyleManager(theme Theme, dark bool) *StyleManager {
	return &StyleManager{theme: theme, dark: dark}
}

// Dark reports whether the theme has a dark background
func (sm *StyleManager) Dark() bool { return sm.dark }

// GetPanelStyle returns the bordered style of the detail pane
func (sm *StyleManager) GetPanelStyle(focused bool) lipgloss.Style {
	style := lipgloss.NewStyle().Padding(0, 1)
	if focused {
		return style.
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(sm.theme.BorderFocused)
	}
	return style.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(sm.theme.Border)
}

// GetHeaderStyle returns the style for the header
func (sm *StyleManager) GetHeaderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Height(1).
		Background(sm.theme.Primary).
		Foreground(sm.theme.OnPrimary).
		Bold(true).
		Padding(0, 1)
}

// GetTableHeaderStyle returns the style of the column titles
func (sm *StyleManager) GetTableHeaderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Foreground(sm.theme.Primary).
		Bold(true).
		Underline(true)
}

// GetRowStyle returns the style of row index. Active rows are highlighted,
// the others striped even/odd.
func (sm *StyleManager) GetRowStyle(index int, active bool, width int) lipgloss.Style {
	style := lipgloss.NewStyle().Width(width).MaxWidth(width)
	switch {
	case active:
		return style.Background(sm.theme.Accent).Foreground(sm.theme.OnPrimary).Bold(true)
	case index%2 == 0:
		return style.Background(sm.theme.Surface).Foreground(sm.theme.OnBackground)
	default:
		return style.Background(sm.theme.Stripe).Foreground(sm.theme.OnBackground)
	}
}

// GetStatusStyle returns the style for the status bar
func (sm *StyleManager) GetStatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Height(1).
		Background(sm.theme.Secondary).
		Foreground(sm.theme.OnSecondary).
		Padding(0, 1)
}

// GetTitleStyle returns the style for panel titles
func (sm *StyleManager) GetTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(sm.theme.Primary).
		Bold(true)
}

// GetSubtleStyle returns the style for secondary text
func (sm *StyleManager) GetSubtleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(sm.theme.Secondary)
}

// GetErrorStyle returns the style for error messages
func (sm *StyleManager) GetErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(sm.theme.Error).
		Foreground(sm.theme.OnPrimary).
		Bold(true).
		Padding(0, 1)
}

// GetSuccessStyle returns the style for success messages
func (sm *StyleManager) GetSuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(sm.theme.Success).
		Foreground(sm.theme.OnPrimary).
		Bold(true).
		Padding(0, 1)
}

// GetWarningStyle returns the style for warning messages
func (sm *StyleManager) GetWarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(sm.theme.Warning).
		Foreground(sm.theme.OnPrimary).
		Bold(true).
		Padding(0, 1)
}
