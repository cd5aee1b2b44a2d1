package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutModes(t *testing.T) {
	lm := NewLayoutManager(60, 20, DefaultLayoutConfig())
	assert.Equal(t, LayoutModeCompact, lm.GetLayoutMode())

	lm.UpdateDimensions(100, 20)
	assert.Equal(t, LayoutModeStandard, lm.GetLayoutMode())

	lm.UpdateDimensions(200, 20)
	assert.Equal(t, LayoutModeExpanded, lm.GetLayoutMode())
}

func TestLayoutWithoutDetail(t *testing.T) {
	lm := NewLayoutManager(100, 30, DefaultLayoutConfig())
	dims := lm.CalculatePanelDimensions(false)

	assert.Equal(t, Dimensions{Width: 100, Height: 26}, dims.List)
	assert.Equal(t, 100, dims.TableHeader.Width)
	assert.Zero(t, dims.Detail.Width)

	lm.ToggleHelp()
	dims = lm.CalculatePanelDimensions(false)
	assert.Equal(t, 27, dims.List.Height)
	assert.Zero(t, dims.Help.Height)
}

func TestLayoutDetailBesideList(t *testing.T) {
	lm := NewLayoutManager(100, 30, DefaultLayoutConfig())
	dims := lm.CalculatePanelDimensions(true)

	assert.Equal(t, 40, dims.Detail.Width)
	assert.Equal(t, 60, dims.List.Width)
	assert.Equal(t, 26, dims.List.Height)
	assert.Equal(t, 27, dims.Detail.Height, "detail spans the table header too")
	assert.Equal(t, 60, dims.TableHeader.Width)
}

func TestLayoutDetailBelowListWhenCompact(t *testing.T) {
	lm := NewLayoutManager(60, 30, DefaultLayoutConfig())
	dims := lm.CalculatePanelDimensions(true)

	assert.Equal(t, 60, dims.List.Width)
	assert.Equal(t, 10, dims.Detail.Height)
	assert.Equal(t, 16, dims.List.Height)
}

func TestLayoutDetailMinimumWidth(t *testing.T) {
	lm := NewLayoutManager(20, 30, LayoutConfig{ShowDetail: true, DetailRatio: 0.1})
	lm.UpdateDimensions(90, 30)
	dims := lm.CalculatePanelDimensions(true)
	assert.Equal(t, minDetailWidth, dims.Detail.Width)
	assert.Equal(t, 60, dims.List.Width)
}

func TestLayoutDetailDisabled(t *testing.T) {
	lm := NewLayoutManager(100, 30, LayoutConfig{DetailRatio: 0.4})
	dims := lm.CalculatePanelDimensions(true)
	assert.Zero(t, dims.Detail.Width)
	// header, table header and status line take a row each
	assert.Equal(t, 30-headerHeight-tableHeaderHeight-statusHeight, dims.List.Height)
	assert.Equal(t, 27, dims.List.Height)
}

func TestThemeByName(t *testing.T) {
	theme, dark := ThemeByName("light")
	assert.Equal(t, LightTheme, theme)
	assert.False(t, dark)

	theme, dark = ThemeByName("")
	assert.Equal(t, DarkTheme, theme)
	assert.True(t, dark)
}
