package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type progressKind string

const (
	progressStatus          progressKind = "status"
	progressCheck           progressKind = "check"
	progressPlan            progressKind = "plan" // Total holds the number of downloads
	progressDownloadStart   progressKind = "download_start"
	progressDownloadSuccess progressKind = "download_success"
	progressError           progressKind = "error"
	progressSummary         progressKind = "summary"
	progressDone            progressKind = "done"
)

// UpdateProgressMsg is an event sent by an update pass to the TUI.
type UpdateProgressMsg struct {
	Kind        progressKind
	Message     string
	ProjectName string
	ModID       int
	Version     string // display name of the file being installed
	Total       int
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// maxRecent is how many completed downloads are listed while running.
const maxRecent = 5

// UpdateModel shows a running update pass.
type UpdateModel struct {
	spinner     spinner.Model
	bar         progress.Model
	events      chan UpdateProgressMsg
	forceUpdate bool

	status      string
	checking    []string
	downloading []string
	completed   []string
	errors      []string
	summary     string
	done        bool

	totalChecked int
	totalPlanned int
	totalUpdated int
	totalErrors  int
	finished     int // downloads done or failed
}

func initialUpdateModel(forceUpdate bool) UpdateModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#f16436"))

	return UpdateModel{
		spinner:     s,
		bar:         progress.New(progress.WithSolidFill("#f16436"), progress.WithWidth(40)),
		events:      make(chan UpdateProgressMsg, 100),
		forceUpdate: forceUpdate,
		status:      "Initializing...",
	}
}

func (m UpdateModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startUpdate(), m.waitForActivity())
}

func (m UpdateModel) startUpdate() tea.Cmd {
	return func() tea.Msg {
		go func() {
			defer close(m.events)
			runUpdate(m.forceUpdate, m.events)
		}()
		return nil
	}
}

// waitForActivity turns the next event into a message; a closed channel
// means the update pass has returned.
func (m UpdateModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.events
		if !ok {
			return UpdateProgressMsg{Kind: progressDone}
		}
		return msg
	}
}

func (m UpdateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.done || msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-6, 60)
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case UpdateProgressMsg:
		if msg.Kind == progressDone {
			m.done = true
			m.status = "Finished"
			return m, tea.Quit
		}
		m.apply(msg)
		return m, m.waitForActivity()
	}
	return m, nil
}

func (m *UpdateModel) apply(msg UpdateProgressMsg) {
	switch msg.Kind {
	case progressStatus:
		m.status = msg.Message
	case progressCheck:
		m.status = fmt.Sprintf("Checking %s...", msg.ProjectName)
		m.checking = append(m.checking, msg.ProjectName)
		m.totalChecked++
	case progressPlan:
		m.totalPlanned = msg.Total
		m.checking = nil
		m.status = fmt.Sprintf("Downloading %d files...", msg.Total)
	case progressDownloadStart:
		m.checking = remove(m.checking, msg.ProjectName)
		m.downloading = append(m.downloading, downloadLabel(msg))
	case progressDownloadSuccess:
		m.downloading = remove(m.downloading, downloadLabel(msg))
		m.completed = append(m.completed, fmt.Sprintf("Updated %s to %s", msg.ProjectName, msg.Version))
		m.totalUpdated++
		m.finished++
	case progressError:
		if m.totalPlanned > 0 {
			m.finished++
		}
		m.checking = remove(m.checking, msg.ProjectName)
		m.downloading = removePrefix(m.downloading, msg.ProjectName+" (")
		m.errors = append(m.errors, fmt.Sprintf("%s: %s", msg.ProjectName, msg.Message))
		m.totalErrors++
	case progressSummary:
		m.summary = msg.Message
		m.checking = nil
	}
}

func downloadLabel(msg UpdateProgressMsg) string {
	return fmt.Sprintf("%s (%s)", msg.ProjectName, msg.Version)
}

func remove(list []string, name string) []string {
	for i, v := range list {
		if v == name {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func removePrefix(list []string, prefix string) []string {
	for i, v := range list {
		if strings.HasPrefix(v, prefix) {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// downloadFraction is the share of planned downloads that have finished,
// successfully or not.
func (m UpdateModel) downloadFraction() float64 {
	if m.totalPlanned == 0 {
		return 0
	}
	return min(float64(m.finished)/float64(m.totalPlanned), 1)
}

func (m UpdateModel) View() string {
	var b strings.Builder

	symbol := m.spinner.View()
	if m.done {
		symbol = successStyle.Render("✓")
	}
	fmt.Fprintf(&b, "\n %s %s\n", symbol, m.status)
	fmt.Fprintf(&b, "   checked %d, updated %d, errors %d\n", m.totalChecked, m.totalUpdated, m.totalErrors)
	if m.totalPlanned > 0 {
		fmt.Fprintf(&b, "   %s\n", m.bar.ViewAs(m.downloadFraction()))
	}
	b.WriteString("\n")

	writeList(&b, headingStyle.Render("Downloading:"), m.downloading)
	writeList(&b, errorStyle.Render("Errors:"), m.errors)

	completed := m.completed
	if !m.done && len(completed) > maxRecent {
		completed = completed[len(completed)-maxRecent:]
	}
	writeList(&b, successStyle.Render("Completed:"), completed)

	if m.done && m.summary != "" {
		b.WriteString(headingStyle.Render(m.summary) + "\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(heading + "\n")
	for _, item := range items {
		fmt.Fprintf(b, "  • %s\n", item)
	}
	b.WriteString("\n")
}
