package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/agenticgokit/fsk/pkg/scaffold"
)

// ErrCancelled is returned when the user quits the picker without choosing.
var ErrCancelled = errors.New("selection cancelled")

// pickerKeyMap defines key bindings for the choice picker.
type pickerKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Quit  key.Binding
}

var pickerKeys = pickerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "cancel"),
	),
}

// pickerModel is the Bubble Tea model choosing one value of a choice argument.
type pickerModel struct {
	arg       scaffold.ArgumentSpec
	cursor    int
	chosen    string
	cancelled bool
}

func newPickerModel(arg scaffold.ArgumentSpec) pickerModel {
	m := pickerModel{arg: arg}
	for i, v := range arg.Allowed {
		if arg.HasDefault && v == arg.Default {
			m.cursor = i
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, pickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, pickerKeys.Down):
		if m.cursor < len(m.arg.Allowed)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, pickerKeys.Enter):
		m.chosen = m.arg.Allowed[m.cursor]
		return m, tea.Quit
	case key.Matches(keyMsg, pickerKeys.Quit):
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.chosen != "" || m.cancelled {
		return ""
	}

	var b strings.Builder
	title := m.arg.Name
	if m.arg.Description != "" {
		title = fmt.Sprintf("%s: %s", m.arg.Name, m.arg.Description)
	}
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n\n")
	for i, v := range m.arg.Allowed {
		if i == m.cursor {
			b.WriteString(CursorStyle.Render("> "))
			b.WriteString(SelectedStyle.Render(" " + v + " "))
		} else {
			b.WriteString("   " + v)
		}
		if m.arg.HasDefault && v == m.arg.Default {
			b.WriteString(MutedStyle.Render(" (default)"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(
		HelpKeyStyle.Render(pickerKeys.Up.Help().Key) + " " + pickerKeys.Up.Help().Desc + "  " +
			HelpKeyStyle.Render(pickerKeys.Down.Help().Key) + " " + pickerKeys.Down.Help().Desc + "  " +
			HelpKeyStyle.Render(pickerKeys.Enter.Help().Key) + " " + pickerKeys.Enter.Help().Desc + "  " +
			HelpKeyStyle.Render(pickerKeys.Quit.Help().Key) + " " + pickerKeys.Quit.Help().Desc))
	b.WriteString("\n")
	return b.String()
}

// IsInteractive reports whether f is a terminal.
func IsInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// MissingChoices returns the choice arguments of spec that tokens do not set.
// The migrate argument is never prompted for; migrating is always explicit.
func MissingChoices(spec scaffold.CommandSpec, tokens []string) []scaffold.ArgumentSpec {
	var out []scaffold.ArgumentSpec
	for _, arg := range spec.Arguments {
		if arg.Kind != scaffold.KindChoice || arg.Name == spec.Migrate {
			continue
		}
		if !supplied(arg, tokens) {
			out = append(out, arg)
		}
	}
	return out
}

func supplied(arg scaffold.ArgumentSpec, tokens []string) bool {
	for _, tok := range tokens {
		if tok == "--" {
			return false
		}
		name, _, _ := strings.Cut(tok, "=")
		if name == "--"+arg.Name || (arg.Short != "" && name == "-"+arg.Short) {
			return true
		}
	}
	return false
}

// PromptChoices asks for every choice argument the tokens leave unset and returns
// the tokens with a --name=value pair appended per answer.
func PromptChoices(spec scaffold.CommandSpec, tokens []string, in io.Reader, out io.Writer) ([]string, error) {
	result := append([]string(nil), tokens...)
	for _, arg := range MissingChoices(spec, tokens) {
		final, err := tea.NewProgram(newPickerModel(arg), tea.WithInput(in), tea.WithOutput(out)).Run()
		if err != nil {
			return nil, fmt.Errorf("prompt for %s: %w", arg.Name, err)
		}
		m := final.(pickerModel)
		if m.cancelled {
			return nil, ErrCancelled
		}
		result = appendChoice(result, arg.Name, m.chosen)
	}
	return result, nil
}

// appendChoice adds the flag before any "--" terminator so it is still parsed as a flag.
func appendChoice(tokens []string, name, value string) []string {
	flag := "--" + name + "=" + value
	for i, tok := range tokens {
		if tok == "--" {
			out := append([]string(nil), tokens[:i]...)
			out = append(out, flag)
			return append(out, tokens[i:]...)
		}
	}
	return append(tokens, flag)
}
