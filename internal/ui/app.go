package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	detailview "github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"leadlist-tui/internal/rpc"
	"leadlist-tui/internal/source"
	"leadlist-tui/pkg/types"
)

// wheelStep is the number of lines one mouse wheel notch scrolls
const wheelStep = 3

// Options configures the application model
type Options struct {
	Title  string
	Theme  string
	List   ListConfig
	Layout LayoutConfig
}

// Model is the leads list application
type Model struct {
	term        *Terminal
	loader      *source.Loader
	list        *List[types.Lead]
	renderer    *LeadRenderer
	checked     *CheckedLeads
	detail      detailview.Model
	help        help.Model
	keys        KeyMap
	focus       *FocusManager
	layout      *LayoutManager
	styles      *StyleManager
	highlighter *Highlighter
	title       string

	width  int
	height int
	ready  bool

	// Connection state of a remote source
	node      string
	connected bool

	// Status and error handling
	statusMessage string
	statusWarning bool
	errorMessage  string
	lastUpdate    time.Time

	detailFor int
	quitting  bool
}

// NewModel creates the application over loader and attaches the list
func NewModel(loader *source.Loader, options Options) (*Model, error) {
	if options.Title == "" {
		options.Title = "Leads"
	}
	theme, dark := ThemeByName(options.Theme)
	styles := NewStyleManager(theme, dark)
	checked := NewCheckedLeads()
	renderer := NewLeadRenderer(styles, checked)
	term := NewTerminal()

	if options.List.TrailerText == "" {
		options.List.TrailerText = "Loading more leads…"
	}
	list, err := NewList[types.Lead](term, term.Document(), loader.Items(), loader, renderer, options.List)
	if err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	if err := list.Attach(); err != nil {
		return nil, fmt.Errorf("attach list: %w", err)
	}

	m := &Model{
		term:        term,
		loader:      loader,
		list:        list,
		renderer:    renderer,
		checked:     checked,
		detail:      detailview.New(0, 0),
		help:        help.New(),
		keys:        DefaultKeyMap(),
		layout:      NewLayoutManager(0, 0, options.Layout),
		styles:      styles,
		highlighter: NewHighlighter(styles.Dark()),
		title:       options.Title,
		detailFor:   -1,
	}
	m.focus = NewFocusManager(theme, func(p PanelType) bool {
		return p == ListPanel || m.showDetail()
	})
	return m, nil
}

// Init requests the first page and starts the spinner
func (m *Model) Init() tea.Cmd {
	m.loader.NeedMoreData()
	return tea.Batch(m.list.Init(), m.term.Cmd(), m.loader.Cmd())
}

// Update handles all application updates
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.relayout()

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		m.handleMouse(msg)

	case spinner.TickMsg:
		cmds = append(cmds, m.list.Update(msg))

	case source.PageLoadedMsg:
		if m.loader.Update(msg) {
			m.errorMessage = ""
		}

	case source.PageFailedMsg:
		m.loader.Update(msg)
		if err := m.loader.Err(); err != nil {
			m.errorMessage = err.Error()
		}

	case rpc.ConnectionEstablishedMsg:
		m.node = msg.Node
		m.connected = true
		m.setStatus("connected to "+msg.Node, false)

	case rpc.ConnectionLostMsg:
		m.connected = false
		m.setStatus("connection lost, reconnecting", true)
		log.Warn("connection lost", "node", msg.Node, "err", msg.Err)

	default:
		m.term.Update(msg)
	}

	m.syncDetail()
	m.focus.Validate()
	m.lastUpdate = time.Now()
	cmds = append(cmds, m.term.Cmd(), m.loader.Cmd())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.list.Detach()
		m.loader.Close()
		return tea.Quit

	case key.Matches(msg, m.keys.Focus):
		m.focus.FocusNext()

	case key.Matches(msg, m.keys.Up):
		m.moveFocused(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocused(1)
	case key.Matches(msg, m.keys.PageUp):
		m.list.MoveCursor(-m.pageRows())
	case key.Matches(msg, m.keys.PageDown):
		m.list.MoveCursor(m.pageRows())
	case key.Matches(msg, m.keys.Top):
		m.list.SetCursor(0)
	case key.Matches(msg, m.keys.Bottom):
		m.list.SetCursor(m.loader.Len() - 1)

	case key.Matches(msg, m.keys.Select):
		m.list.ToggleActive()
		m.relayout()

	case key.Matches(msg, m.keys.Check):
		lead, ok := m.loader.Items().At(m.list.Cursor())
		if !ok {
			break
		}
		if m.checked.Toggle(lead.ID) {
			m.setStatus(lead.Name+" checked", false)
		} else {
			m.setStatus(lead.Name+" unchecked", false)
		}
		m.list.Invalidate()

	case key.Matches(msg, m.keys.CheckAll):
		if m.checked.ToggleAll() {
			m.setStatus("all leads checked", false)
		} else {
			m.setStatus("all leads unchecked", false)
		}
		m.list.Invalidate()

	case key.Matches(msg, m.keys.Sort):
		sort := m.loader.Sort().Next()
		m.loader.Reload(sort)
		m.list.Reset()
		m.list.ScrollToTop()
		m.setStatus("sorted by "+sort.String(), false)
		m.relayout()

	case key.Matches(msg, m.keys.Columns):
		column := types.Columns[int(msg.String()[0]-'1')]
		shown := m.renderer.Toggle(column)
		m.list.Invalidate()
		m.list.ScrollToTop()
		if shown {
			m.setStatus(column.String()+" shown", false)
		} else {
			m.setStatus(column.String()+" hidden", false)
		}

	case key.Matches(msg, m.keys.Retry):
		m.errorMessage = ""
		m.loader.NeedMoreData()

	case key.Matches(msg, m.keys.Help):
		m.layout.ToggleHelp()
		m.relayout()
	}
	return nil
}

// moveFocused moves the cursor of the list or scrolls the detail pane
func (m *Model) moveFocused(delta int) {
	switch m.focus.GetCurrentFocus() {
	case DetailPanel:
		if delta < 0 {
			m.detail.LineUp(-delta)
		} else {
			m.detail.LineDown(delta)
		}
	default:
		m.list.MoveCursor(delta)
	}
}

func (m *Model) setStatus(message string, warning bool) {
	m.statusMessage = message
	m.statusWarning = warning
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.list.ScrollBy(-wheelStep)
	case tea.MouseButtonWheelDown:
		m.list.ScrollBy(wheelStep)
	}
}

// pageRows is the number of rows one page key moves
func (m *Model) pageRows() int {
	_, height := m.list.ScrollPane().Size()
	stride := m.list.metrics().Stride()
	return max(int(float64(height)/stride)-1, 1)
}

func (m *Model) showDetail() bool {
	return m.layout.Config().ShowDetail && m.list.Active() >= 0
}

// relayout sizes every pane and reports the change to resize subscribers,
// which is how the list learns its new container height
func (m *Model) relayout() {
	if !m.ready {
		return
	}
	m.layout.UpdateDimensions(m.width, m.height)
	dims := m.layout.CalculatePanelDimensions(m.showDetail())

	m.list.SetSize(dims.List.Width, dims.List.Height)
	m.help.Width = m.width
	m.detail.Width = max(dims.Detail.Width-4, 0)
	m.detail.Height = max(dims.Detail.Height-3, 0)
	m.term.Resize(m.width, m.height)
}

// syncDetail shows the active lead in the detail pane
func (m *Model) syncDetail() {
	active := m.list.Active()
	if active == m.detailFor {
		return
	}
	m.detailFor = active
	if active < 0 {
		m.detail.SetContent("")
		return
	}
	lead, ok := m.loader.Items().At(active)
	if !ok {
		return
	}
	m.detail.SetContent(m.highlighter.JSON(lead))
	m.detail.GotoTop()
}

// View renders the application
func (m *Model) View() string {
	if m.quitting || !m.ready {
		return ""
	}
	if !m.loader.Loaded() {
		return m.renderLoadingScreen()
	}

	dims := m.layout.CalculatePanelDimensions(m.showDetail())
	header := m.styles.GetHeaderStyle(m.width).Render(
		m.styles.GetTitleStyle().Render(m.title) + " · sorted by " + m.loader.Sort().String())

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.renderer.Header(dims.TableHeader.Width),
		m.list.View(),
	)
	if m.showDetail() {
		detail := m.renderDetail(dims.Detail)
		if m.layout.GetLayoutMode() == LayoutModeCompact {
			body = lipgloss.JoinVertical(lipgloss.Left, body, detail)
		} else {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, detail)
		}
	}

	sections := []string{header, body, m.renderStatus()}
	if m.layout.Config().ShowHelp {
		sections = append(sections, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderDetail(d Dimensions) string {
	title := ""
	if lead, ok := m.loader.Items().At(m.list.Active()); ok {
		title = lipgloss.JoinHorizontal(lipgloss.Top,
			m.focus.GetPanelTitle(DetailPanel, lead.Name),
			m.styles.GetSubtleStyle().Render(" "+lead.ID),
		)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.detail.View())
	return m.styles.GetPanelStyle(m.focus.IsFocused(DetailPanel)).
		Width(max(d.Width-2, 0)).
		Height(max(d.Height-2, 0)).
		MaxHeight(d.Height).
		Render(content)
}

func (m *Model) renderStatus() string {
	if m.errorMessage != "" {
		return m.styles.GetErrorStyle().Width(m.width).MaxWidth(m.width).
			Render(fmt.Sprintf("%s (r to retry)", m.errorMessage))
	}

	stats := m.list.Stats()
	status := fmt.Sprintf("%s · %s · memo %.0f%%", m.list.ScrollInfo(), m.loader.Status(), stats.Memo.HitRate*100)
	if m.node != "" {
		state := "offline"
		if m.connected {
			state = "online"
		}
		status += fmt.Sprintf(" · %s %s", m.node, state)
	}
	if n := m.checked.Count(m.loader.Len(), m.isLoaded); n > 0 {
		status += fmt.Sprintf(" · %d checked", n)
	}
	if m.statusMessage != "" {
		style := m.styles.GetSuccessStyle()
		if m.statusWarning {
			style = m.styles.GetWarningStyle()
		}
		status += " " + style.Render(m.statusMessage)
	}
	if latency := m.loader.Stats().AvgLatency.Round(time.Millisecond); latency > 0 {
		status += " · " + latency.String()
	}
	return m.styles.GetStatusStyle(m.width).Render(status)
}

func (m *Model) isLoaded(id string) bool {
	_, ok := m.loader.Items().Get(id)
	return ok
}

func (m *Model) renderLoadingScreen() string {
	text := m.list.spinner.View() + " Loading leads…"
	if m.errorMessage != "" {
		text = m.styles.GetErrorStyle().Render(m.errorMessage) + "\n\npress r to retry, q to quit"
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, text)
}

// List returns the leads list
func (m *Model) List() *List[types.Lead] { return m.list }

// Focus returns the focus manager
func (m *Model) Focus() *FocusManager { return m.focus }

// Terminal returns the host environment of the list
func (m *Model) Terminal() *Terminal { return m.term }
