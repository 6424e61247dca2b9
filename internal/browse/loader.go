package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/buscajob/buscajob/internal/pipeline"
)

// ErrCancelled is returned by RunLoader when the user pressed ctrl+c.
var ErrCancelled = errors.New("cancelled")

type searchDoneMsg struct {
	stages pipeline.Stages
	err    error
}

type loaderModel struct {
	label   string
	search  func(ctx context.Context) (pipeline.Stages, error)
	ctx     context.Context
	cancel  context.CancelFunc
	spinner spinner.Model
	result  pipeline.Stages
	err     error
	done    bool
}

func newLoaderModel(ctx context.Context, label string, search func(ctx context.Context) (pipeline.Stages, error)) loaderModel {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(colorSpinner)
	return loaderModel{
		label:   label,
		search:  search,
		ctx:     ctx,
		cancel:  cancel,
		spinner: sp,
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doSearch(), m.spinner.Tick)
}

func (m loaderModel) doSearch() tea.Cmd {
	ctx, search := m.ctx, m.search
	return func() tea.Msg {
		stages, err := search(ctx)
		return searchDoneMsg{stages: stages, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		if !m.done {
			m.result = msg.stages
			m.err = msg.err
			m.done = true
		}
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Searching %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner while search runs. It renders inline (no alt
// screen) and cancels the search on ctrl+c.
func RunLoader(ctx context.Context, label string, search func(ctx context.Context) (pipeline.Stages, error)) (pipeline.Stages, error) {
	m := newLoaderModel(ctx, label, search)
	defer m.cancel()

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return pipeline.Stages{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
