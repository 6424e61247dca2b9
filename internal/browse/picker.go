package browse

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

type pickerModel struct {
	sites    []string
	checked  map[int]bool
	cursor   int
	quit     bool
	accepted bool
}

func newPickerModel(sites, preselected []string) pickerModel {
	m := pickerModel{sites: sites, checked: make(map[int]bool)}
	for i, s := range sites {
		for _, p := range preselected {
			if s == p {
				m.checked[i] = true
			}
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.sites)-1 {
				m.cursor++
			}
		case " ", "x":
			m.checked[m.cursor] = !m.checked[m.cursor]
		case "a":
			all := len(m.selected()) == len(m.sites)
			for i := range m.sites {
				m.checked[i] = !all
			}
		case "enter":
			m.accepted = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// selected returns the checked sites in display order.
func (m pickerModel) selected() []string {
	var out []string
	for i, s := range m.sites {
		if m.checked[i] {
			out = append(out, s)
		}
	}
	return out
}

func (m pickerModel) View() string {
	s := pickerTitle.Render("BuscaJob: select the sites to search")
	s += "\n"

	for i, site := range m.sites {
		box := "[ ]"
		if m.checked[i] {
			box = "[x]"
		}
		label := fmt.Sprintf("%s %s", box, site)
		if i == m.cursor {
			s += pickerSelected.Render("> "+label) + "\n"
		} else {
			s += pickerItem.Render(label) + "\n"
		}
	}

	s += pickerHint.Render("↑/↓/j/k navigate  space toggle  a all  enter search  q quit")
	return s
}

// RunSitePicker shows an interactive multi-select over sites. An empty
// selection means the default sites. ok is false when the user quit.
func RunSitePicker(sites, preselected []string) (chosen []string, ok bool, err error) {
	p := tea.NewProgram(newPickerModel(sites, preselected))
	result, err := p.Run()
	if err != nil {
		return nil, false, err
	}

	final := result.(pickerModel)
	if !final.accepted {
		return nil, false, nil
	}
	return final.selected(), true, nil
}
