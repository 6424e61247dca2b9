package browse

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  = lipgloss.Color("39")
	colorMuted   = lipgloss.Color("240")
	colorDim     = lipgloss.Color("245")
	colorText    = lipgloss.Color("252")
	colorBright  = lipgloss.Color("15")
	colorBar     = lipgloss.Color("236")
	colorCursor  = lipgloss.Color("24")
	colorSpinner = lipgloss.Color("33")
	colorOK      = lipgloss.Color("42")
	colorError   = lipgloss.Color("196")
)

var (
	paneBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	paneHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	statusBar  = lipgloss.NewStyle().Padding(0, 1).Foreground(colorText).Background(colorBar)

	itemTitle    = lipgloss.NewStyle().Bold(true)
	itemSubtitle = lipgloss.NewStyle().Foreground(colorDim)

	fieldLabel  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Width(16)
	detailTitle = lipgloss.NewStyle().Bold(true).Foreground(colorBright).MarginBottom(1)
	divider     = lipgloss.NewStyle().Foreground(colorMuted)
	hint        = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	bodyText    = lipgloss.NewStyle().Foreground(colorText)
	okText      = lipgloss.NewStyle().Foreground(colorOK)
	errText     = lipgloss.NewStyle().Foreground(colorError)

	pickerTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(1, 0, 1, 2)
	pickerItem     = lipgloss.NewStyle().Padding(0, 0, 0, 4)
	pickerSelected = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 0, 0, 2)
	pickerHint     = lipgloss.NewStyle().Foreground(colorMuted).Padding(1, 0, 0, 2)
)

// paneStyles returns the header and border styles for a list pane; the
// focused pane is drawn in the accent color.
func paneStyles(focused bool) (header, border lipgloss.Style) {
	c := colorMuted
	if focused {
		c = colorAccent
	}
	return paneHeader.Foreground(c), paneBorder.BorderForeground(c)
}

// itemStyles returns the title and subtitle styles for one list entry.
func itemStyles(selected bool) (title, subtitle lipgloss.Style) {
	if !selected {
		return itemTitle, itemSubtitle
	}
	return itemTitle.Foreground(colorBright).Background(colorCursor),
		lipgloss.NewStyle().Foreground(colorText).Background(colorCursor)
}
