package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/assay/types"
)

// InspectModel is a Bubble Tea model for inspect views.
type InspectModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	return InspectModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewInspectResult:
		content = m.renderResult()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m InspectModel) renderResult() string {
	record, ok := m.data.(*types.ResultRecord)
	if !ok {
		return "Invalid data type for inspect_result"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Result Record"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(LabelStyle.Render(label))
		b.WriteString(ValueStyle.Render(value))
		b.WriteString("\n")
	}

	row("Version", record.Version)
	row("Rows", fmt.Sprintf("%d", record.RowsProcessed))
	if record.Metric != nil {
		row("Metric", *record.Metric)
	}
	if record.Value != nil {
		row("Value", fmt.Sprintf("%.4f", *record.Value))
	}
	row("Latency", fmt.Sprintf("%dms", record.LatencyMS))
	row("Seed", fmt.Sprintf("%d", record.Seed))

	b.WriteString(LabelStyle.Render("Status"))
	b.WriteString(StateStyle(string(record.Status)).Render(string(record.Status)))
	b.WriteString("\n")
	if record.Error != nil {
		row("Error", *record.Error)
	}

	return b.String()
}

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
