// Package browse is the interactive terminal view over one search: a site
// picker, a spinner while the pipeline runs and a split pane comparing every
// deduplicated posting with the ones that passed the criteria filter.
package browse

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/pipeline"
)

// Lines per posting in the list view (title + subtitle + blank separator).
const postingItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

// Favorites records postings the user marks. model.CriteriaStore satisfies it.
type Favorites interface {
	SaveFavorite(ctx context.Context, postingID string) (bool, error)
}

// favoriteSavedMsg is sent when an async favorite save completes.
type favoriteSavedMsg struct {
	id    string
	isNew bool
	err   error
}

type browseModel struct {
	all           []model.JobPosting
	matched       []model.JobPosting
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=all, 1=matched
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	role          string
	ready         bool

	view            viewState
	detail          model.JobPosting
	detailViewport  viewport.Model
	showDescription bool

	favorites Favorites
	notice    string
	warning   string

	wantQuit bool
}

func newBrowseModel(role string, stages pipeline.Stages, favorites Favorites) browseModel {
	return browseModel{
		all:       stages.All,
		matched:   stages.Matched,
		role:      role,
		favorites: favorites,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case favoriteSavedMsg:
		switch {
		case msg.err != nil:
			m.warning = fmt.Sprintf("failed to save posting: %v", msg.err)
			m.notice = ""
		case msg.isNew:
			m.notice = "posting saved (" + msg.id + ")"
			m.warning = ""
		default:
			m.notice = "posting already saved"
			m.warning = ""
		}
		if m.view == viewDetail {
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		m.wantQuit = false
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		m.notice, m.warning = "", ""
		return m, nil
	case "o":
		if m.detail.URL != nil {
			openURL(*m.detail.URL)
		}
		return m, nil
	case "r":
		if m.detail.Description != "" {
			m.showDescription = !m.showDescription
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	case "f":
		if m.favorites != nil {
			return m, m.saveFavoriteCmd(m.detail.ID())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m browseModel) saveFavoriteCmd(id string) tea.Cmd {
	favorites := m.favorites
	return func() tea.Msg {
		isNew, err := favorites.SaveFavorite(context.Background(), id)
		return favoriteSavedMsg{id: id, isNew: isNew, err: err}
	}
}

func (m *browseModel) moveCursor(delta int) {
	if m.activePane == 0 {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.all)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.matched)-1, 0))
	}
}

func (m *browseModel) ensureCursorVisible() {
	vp := &m.leftViewport
	cursor := m.leftCursor
	if m.activePane == 1 {
		vp = &m.rightViewport
		cursor = m.rightCursor
	}

	cursorTop := cursor * postingItemHeight
	cursorBottom := cursorTop + postingItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	postings := m.activePostings()
	if len(postings) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detail = postings[m.activeCursor()]
	m.showDescription = false
	m.notice, m.warning = "", ""
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *browseModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.leftViewport.SetContent(renderPostings(m.all, m.leftCursor, m.activePane == 0))
	m.rightViewport.SetContent(renderPostings(m.matched, m.rightCursor, m.activePane == 1))
}

func (m browseModel) activePostings() []model.JobPosting {
	if m.activePane == 0 {
		return m.all
	}
	return m.matched
}

func (m browseModel) activeCursor() int {
	if m.activePane == 0 {
		return m.leftCursor
	}
	return m.rightCursor
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	w := m.leftViewport.Width
	panes := []struct {
		title string
		body  string
	}{
		{fmt.Sprintf(" All Postings (%d)", len(m.all)), m.leftViewport.View()},
		{fmt.Sprintf(" Matched \"%s\" (%d)", m.role, len(m.matched)), m.rightViewport.View()},
	}

	var headers, bodies []string
	for i, pane := range panes {
		header, border := paneStyles(i == m.activePane)
		if i > 0 {
			headers = append(headers, " ")
			bodies = append(bodies, " ")
		}
		headers = append(headers, lipgloss.NewStyle().Width(w+2).Render(header.Render(pane.title)))
		bodies = append(bodies, border.Width(w).Render(pane.body))
	}

	status := fmt.Sprintf(" %d total | %d matched | %d filtered out    ←/→/Tab switch  ↑/↓ cursor  Enter detail  Esc back  q quit",
		len(m.all), len(m.matched), len(m.all)-len(m.matched))

	return lipgloss.JoinHorizontal(lipgloss.Top, headers...) + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, bodies...) + "\n" +
		statusBar.Width(m.width).Render(status)
}

func (m browseModel) viewDetail() string {
	_, border := paneStyles(true)
	title := detailTitle.Render("Posting Details")
	content := border.Width(m.width - 2).Render(m.detailViewport.View())

	keys := []string{}
	if m.detail.URL != nil {
		keys = append(keys, "o open URL")
	}
	if m.detail.Description != "" {
		keys = append(keys, "r desc")
	}
	if m.favorites != nil {
		keys = append(keys, "f save")
	}
	keys = append(keys, "esc/backspace back", "↑/↓ scroll", "q quit")
	return title + "\n" + content + "\n" + statusBar.Width(m.width).Render(" "+strings.Join(keys, "  "))
}

func (m browseModel) renderDetail() string {
	p := m.detail
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(fieldLabel.Render(label) + value + "\n")
	}

	addField("Title", p.Title)
	addField("Company", p.Company)
	addField("Location", p.Location)
	addField("Posting ID", p.ID())
	addField("Site", p.SourceSite)

	b.WriteByte('\n')
	addField("Salary", p.Salary)
	addField("Contract", p.ContractType)
	addField("Level", p.ExperienceLevel)
	addField("Modality", modalityLabel(p.Modality))
	addField("Published", p.PublishedAt)

	b.WriteByte('\n')
	if p.URL != nil {
		addField("URL", *p.URL)
	} else {
		addField("URL", "(link unavailable)")
	}

	if m.notice != "" {
		b.WriteByte('\n')
		b.WriteString(okText.Render("✓ "+m.notice) + "\n")
	}
	if m.warning != "" {
		b.WriteByte('\n')
		b.WriteString(errText.Render("⚠ "+m.warning) + "\n")
	}

	if p.Description != "" {
		wrapWidth := max(m.width-8, 20)
		b.WriteByte('\n')
		if m.showDescription {
			label := "── Description "
			fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
			b.WriteString(divider.Render(label+fill) + "\n\n")
			b.WriteString(bodyText.Render(wordWrap(p.Description, wrapWidth)) + "\n")
		} else {
			b.WriteString(hint.Render("  press r to read the description") + "\n")
		}
	}

	return b.String()
}

func modalityLabel(m string) string {
	switch m {
	case model.ModalityHomeOffice:
		return "Home office"
	case model.ModalityHybrid:
		return "Hybrid"
	case model.ModalityOnSite:
		return "On site"
	}
	return m
}

func renderPostings(postings []model.JobPosting, cursor int, isActive bool) string {
	if len(postings) == 0 {
		return "  (no postings)"
	}

	var b strings.Builder
	for i, p := range postings {
		selected := isActive && i == cursor
		titleSt, subtitleSt := itemStyles(selected)
		prefix := "  "
		if selected {
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(p.Title))
		b.WriteByte('\n')

		location := p.Location
		if location == "" {
			location = "n/a"
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s", p.Company, location, p.SourceSite)))
		b.WriteByte('\n')

		if i < len(postings)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// wordWrap breaks text on spaces so no line exceeds width runes, except
// single words longer than width.
func wordWrap(text string, width int) string {
	var b strings.Builder
	n := 0
	for _, w := range strings.Fields(text) {
		wl := utf8.RuneCountInString(w)
		switch {
		case n == 0:
		case n+1+wl > width:
			b.WriteByte('\n')
			n = 0
		default:
			b.WriteByte(' ')
			n++
		}
		b.WriteString(w)
		n += wl
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start"},
}

// openURL hands url to the platform's browser launcher without waiting.
func openURL(url string) {
	argv, ok := browserCommands[runtime.GOOS]
	if !ok {
		return
	}
	_ = exec.Command(argv[0], append(argv[1:], url)...).Start()
}

// RunBrowseTUI launches the split-pane view over one search's stages.
// favorites may be nil, which disables the save key. Returns wantQuit=true
// if the user pressed q/ctrl+c, false if they pressed esc to search again.
func RunBrowseTUI(role string, stages pipeline.Stages, favorites Favorites) (bool, error) {
	p := tea.NewProgram(newBrowseModel(role, stages, favorites), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(browseModel)
	return final.wantQuit, nil
}
