package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/witgen/gen"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	sizeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateList modelState = iota
	stateFilter
	stateView
)

type browserModel struct {
	world    string
	files    *gen.Files
	names    []string
	visible  []string
	filter   textinput.Model
	view     viewport.Model
	selected int
	width    int
	height   int
	state    modelState
}

func newBrowserModel(world string, files *gen.Files) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40

	names := files.Names()
	return &browserModel{
		world:   world,
		files:   files,
		names:   names,
		visible: names,
		filter:  ti,
		view:    viewport.New(80, 20),
		state:   stateList,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-4, 1)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilter:
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				m.state = stateList
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd

		case stateView:
			switch msg.String() {
			case "esc", "backspace":
				m.state = stateList
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
		case "/":
			m.state = stateFilter
			return m, m.filter.Focus()
		case "enter":
			if len(m.visible) > 0 {
				m.open(m.visible[m.selected])
			}
		}
	}
	return m, nil
}

func (m *browserModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	if q == "" {
		m.visible = m.names
	} else {
		m.visible = m.visible[:0:0]
		for _, n := range m.names {
			if strings.Contains(strings.ToLower(n), q) {
				m.visible = append(m.visible, n)
			}
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browserModel) open(name string) {
	data, _ := m.files.Get(name)
	if strings.HasSuffix(name, ".wasm") {
		m.view.SetContent(hexDump(data))
	} else {
		m.view.SetContent(string(data))
	}
	m.view.GotoTop()
	m.state = stateView
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("witgen"))
	b.WriteString(" world ")
	b.WriteString(m.world)
	b.WriteString("\n\n")

	if m.state == stateView {
		b.WriteString(m.view.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
		return b.String()
	}

	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}
	if len(m.visible) == 0 {
		b.WriteString("No matching files.\n")
	}
	for i, name := range m.visible {
		data, _ := m.files.Get(name)
		line := fileStyle.Render(name) + " " + sizeStyle.Render(fmt.Sprintf("%d bytes", len(data)))
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + name))
			b.WriteString(" " + sizeStyle.Render(fmt.Sprintf("%d bytes", len(data))))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter open • / filter • q quit"))
	return b.String()
}

func hexDump(data []byte) string {
	var b strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := min(off+16, len(data))
		fmt.Fprintf(&b, "%08x ", off)
		for i := off; i < off+16; i++ {
			if i < end {
				fmt.Fprintf(&b, " %02x", data[i])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString("  ")
		for _, c := range data[off:end] {
			if c < 0x20 || c > 0x7e {
				c = '.'
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func runInteractive(world string, files *gen.Files) error {
	p := tea.NewProgram(newBrowserModel(world, files), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
