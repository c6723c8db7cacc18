package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xab-mack/smartanalyzer/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

type modelT struct {
	findings []model.Finding
	cursor   int
}

func initialModel(findings []model.Finding) modelT { return modelT{findings: findings} }

func (m modelT) Init() tea.Cmd { return nil }

func (m modelT) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.findings)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func riskStyle(r model.Risk) lipgloss.Style {
	switch r {
	case model.RiskCritical, model.RiskHigh:
		return criticalStyle
	case model.RiskMedium:
		return mediumStyle
	}
	return dimStyle
}

func (m modelT) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Findings (%d)", len(m.findings))))
	b.WriteString("\n\n")
	for i, f := range m.findings {
		line := fmt.Sprintf("%s [%s/%s] %s:%d %s",
			f.DetectorID, f.Risk, f.Confidence, f.Location.File, f.Location.StartLine, f.Title)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + riskStyle(f.Risk).Render(line))
		}
		b.WriteByte('\n')
	}
	if len(m.findings) > 0 {
		sel := m.findings[m.cursor]
		b.WriteString("\n" + dimStyle.Render(sel.Description) + "\n")
	}
	b.WriteString(dimStyle.Render("\nj/k to move, q to quit\n"))
	return b.String()
}

// Run launches the interactive findings browser.
func Run(findings []model.Finding) error {
	p := tea.NewProgram(initialModel(findings))
	_, err := p.Run()
	return err
}
