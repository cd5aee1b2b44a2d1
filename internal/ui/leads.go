package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"leadlist-tui/pkg/types"
)

const (
	checkWidth = 3
	nameWidth  = 24
	scoreWidth = 6
)

// columnWidths are the cell widths of the optional columns. Tags take what
// is left.
var columnWidths = map[types.Column]int{
	types.ColumnFirstVisit: 12,
	types.ColumnLastVisit:  12,
	types.ColumnVisitors:   8,
	types.ColumnVisits:     7,
	types.ColumnDuration:   9,
	types.ColumnCountry:    8,
}

// LeadRenderer draws leads as table rows
type LeadRenderer struct {
	hidden  map[types.Column]bool
	checked *CheckedLeads
	styles  *StyleManager
}

// NewLeadRenderer creates a renderer with every column visible. The checkbox
// cell reflects checked.
func NewLeadRenderer(styles *StyleManager, checked *CheckedLeads) *LeadRenderer {
	return &LeadRenderer{
		hidden:  make(map[types.Column]bool),
		checked: checked,
		styles:  styles,
	}
}

// Toggle flips the visibility of c and reports whether it is now shown
func (r *LeadRenderer) Toggle(c types.Column) bool {
	r.hidden[c] = !r.hidden[c]
	return !r.hidden[c]
}

// Visible reports whether c is shown
func (r *LeadRenderer) Visible(c types.Column) bool {
	return !r.hidden[c]
}

// VisibleColumns returns the shown optional columns in display order
func (r *LeadRenderer) VisibleColumns() []types.Column {
	var columns []types.Column
	for _, c := range types.Columns {
		if r.Visible(c) {
			columns = append(columns, c)
		}
	}
	return columns
}

// Header renders the column titles
func (r *LeadRenderer) Header(width int) string {
	cells := []string{checkbox(r.checked.AllChecked()), cell("Name", nameWidth), cellRight("Score", scoreWidth)}
	for _, c := range r.VisibleColumns() {
		cells = append(cells, r.fit(c, c.String()))
	}
	return r.styles.GetTableHeaderStyle(width).Render(r.join(cells, width))
}

// RenderItem implements ItemRenderer
func (r *LeadRenderer) RenderItem(index int, lead types.Lead, width, height int, active bool) string {
	cells := []string{
		checkbox(r.checked.IsChecked(lead.ID)),
		cell(lead.Name, nameWidth),
		cellRight(strconv.Itoa(lead.Score), scoreWidth),
	}
	for _, c := range r.VisibleColumns() {
		cells = append(cells, r.fit(c, columnValue(c, lead)))
	}

	style := r.styles.GetRowStyle(index, active, width)
	row := style.Render(r.join(cells, width))
	if height > 1 {
		// extra lines of a tall row stay blank but keep the stripe
		blank := style.Render(strings.Repeat(" ", max(width, 0)))
		row += strings.Repeat("\n"+blank, height-1)
	}
	return row
}

func (r *LeadRenderer) fit(c types.Column, text string) string {
	w, ok := columnWidths[c]
	if !ok {
		return text
	}
	if c == types.ColumnVisits || c == types.ColumnVisitors {
		return cellRight(text, w)
	}
	return cell(text, w)
}

func (r *LeadRenderer) join(cells []string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(" "+strings.Join(cells, " "), width, "…"), width)
}

func columnValue(c types.Column, lead types.Lead) string {
	switch c {
	case types.ColumnFirstVisit:
		if lead.FirstVisit.IsZero() {
			return "-"
		}
		return lead.FirstVisit.Format(time.DateOnly)
	case types.ColumnLastVisit:
		if lead.LastVisit.IsZero() {
			return "-"
		}
		return lead.LastVisit.Format(time.DateOnly)
	case types.ColumnVisitors:
		return strconv.Itoa(lead.Visitors)
	case types.ColumnVisits:
		return strconv.Itoa(lead.Visits)
	case types.ColumnDuration:
		return formatDuration(lead.Duration)
	case types.ColumnCountry:
		return lead.Country
	case types.ColumnTags:
		return strings.Join(lead.Tags, ", ")
	}
	return ""
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func cell(text string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(text, width, "…"), width)
}

func cellRight(text string, width int) string {
	return runewidth.FillLeft(runewidth.Truncate(text, width, "…"), width)
}
