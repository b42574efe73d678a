package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/wippyai/foreign/config"
	"github.com/wippyai/foreign/scope"
)

type interactiveModel struct {
	err     error
	be      *backend
	scope   *scope.Scope
	dump    *listDump
	backend string
	args    []config.Arg
	input   textinput.Model
	size    uint64
	state   modelState
}

type modelState int

const (
	stateCompose modelState = iota
	stateShowList
)

type openedMsg struct {
	err error
	be  *backend
}

type builtMsg struct {
	err  error
	dump *listDump
}

func newInteractiveModel(backendName string, size uint64) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "int=42  or  tuple<u8,u8>=aabb"
	ti.Prompt = "arg: "
	ti.Width = 48
	ti.Focus()
	return &interactiveModel{
		backend: backendName,
		size:    size,
		input:   ti,
		state:   stateCompose,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.open, textinput.Blink)
}

func (m *interactiveModel) open() tea.Msg {
	be, err := openBackend(context.Background(), m.backend, m.size)
	return openedMsg{be: be, err: err}
}

func (m *interactiveModel) build() tea.Msg {
	// every build starts from a fresh generation
	if err := m.scope.Reset(); err != nil {
		return builtMsg{err: err}
	}
	d, err := buildDump(m.scope, m.args)
	if err != nil {
		return builtMsg{err: err}
	}
	d.backend = m.be.name
	d.capacity = m.size
	return builtMsg{dump: d}
}

func (m *interactiveModel) close() {
	if m.scope != nil {
		m.scope.Close()
	}
	if m.be != nil {
		m.be.Close()
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.close()
			return m, tea.Quit

		case "enter":
			switch m.state {
			case stateCompose:
				text := strings.TrimSpace(m.input.Value())
				if text == "" {
					return m, nil
				}
				arg, err := config.ParseArgFlag(text)
				if err == nil {
					_, _, err = arg.Resolve()
				}
				m.err = err
				if err == nil {
					m.args = append(m.args, arg)
					m.input.SetValue("")
				}
				return m, nil
			case stateShowList:
				m.state = stateCompose
				m.dump = nil
				m.err = nil
				return m, nil
			}

		case "ctrl+b":
			if m.state == stateCompose && m.scope != nil {
				return m, m.build
			}

		case "ctrl+d":
			if m.state == stateCompose && len(m.args) > 0 {
				m.args = m.args[:len(m.args)-1]
			}

		case "esc":
			if m.state == stateShowList {
				m.state = stateCompose
				m.dump = nil
				m.err = nil
				return m, nil
			}
			m.close()
			return m, tea.Quit
		}

	case openedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.be = msg.be
		m.scope = scope.New(msg.be.mem, msg.be.alloc)

	case builtMsg:
		m.err = msg.err
		m.dump = msg.dump
		m.state = stateShowList
		return m, nil
	}

	if m.state == stateCompose {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	if m.scope == nil {
		if m.err != nil {
			return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
		}
		return "Opening " + m.backend + " memory..."
	}

	var b strings.Builder
	r := &renderer{color: true}

	switch m.state {
	case stateCompose:
		b.WriteString(titleStyle.Render("va_list builder"))
		fmt.Fprintf(&b, " %s backend\n\n", m.backend)
		if len(m.args) == 0 {
			b.WriteString(helpStyle.Render("no arguments yet"))
			b.WriteString("\n")
		}
		for i, arg := range m.args {
			v := arg.Value
			if v == "" {
				v = arg.Hex
			}
			fmt.Fprintf(&b, "%3d  %s = %s\n", i, typeStyle.Render(arg.Type), valueStyle.Render(v))
		}
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter add • ctrl+d drop last • ctrl+b build • esc quit"))

	case stateShowList:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Build failed: %v", m.err)))
		} else {
			b.WriteString(r.dump(m.dump))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter back • ctrl+c quit"))
	}

	return b.String()
}

func runInteractive(backendName string, size uint64) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(backendName, size), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
