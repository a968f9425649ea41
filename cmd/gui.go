package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"curseforge-mod-updater/config"
	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/db"
	"curseforge-mod-updater/logger"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// guiCmd represents the gui command
var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Launch the interactive interface to manage mods",
	Long:  `Launch an interactive TUI to view tracked CurseForge projects and install updates.`,
	Run: func(_ *cobra.Command, _ []string) {
		runGUI()
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}

const (
	statusUpToDate        = "up-to-date"
	statusUpdateAvailable = "update-available"
	statusNotInstalled    = "not-installed"
	statusIncompatible    = "incompatible"
)

// ModInfo is one row of the mod table.
type ModInfo struct {
	Name             string
	ModID            int
	ClassID          int
	InstalledVersion string
	AvailableVersion string
	AvailableFileID  int
	Status           string
	Selected         bool
	Selectable       bool
}

// Model is the state of the TUI.
type Model struct {
	mods          []ModInfo
	selectedIndex int
	loading       bool
	downloading   bool
	error         string
	message       string
	client        *curseforge.Client
	conn          *gorm.DB
	cfg           config.Config
	spinner       spinner.Model
	width         int
	height        int
}

func newGUIModel(client *curseforge.Client, conn *gorm.DB, cfg config.Config) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	return Model{
		loading: true,
		client:  client,
		conn:    conn,
		cfg:     cfg,
		spinner: s,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadMods(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case modsLoadedMsg:
		m.handleModsLoaded(msg)
	case spinner.TickMsg:
		if !m.loading && !m.downloading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case errorMsg:
		m.error = string(msg)
		m.loading = false
		m.downloading = false
	case downloadCompleteMsg:
		return m.handleDownloadComplete(msg)
	case clearMessageMsg:
		m.message = ""
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case "down", "j":
		if m.selectedIndex < len(m.mods)-1 {
			m.selectedIndex++
		}
	case " ":
		if len(m.mods) > 0 && m.mods[m.selectedIndex].Selectable {
			m.mods[m.selectedIndex].Selected = !m.mods[m.selectedIndex].Selected
		}
	case "a":
		for i := range m.mods {
			m.mods[i].Selected = m.mods[i].Selectable
		}
	case "ctrl+d":
		if !m.downloading && !m.loading {
			m.downloading = true
			return m, tea.Batch(m.downloadSelectedMods(), m.spinner.Tick)
		}
	}
	return m, nil
}

func (m *Model) handleModsLoaded(msg modsLoadedMsg) {
	m.mods = msg.mods
	m.loading = false
	sort.Slice(m.mods, func(i, j int) bool {
		return strings.ToLower(m.mods[i].Name) < strings.ToLower(m.mods[j].Name)
	})
	if m.selectedIndex >= len(m.mods) {
		m.selectedIndex = 0
	}
}

func (m Model) handleDownloadComplete(msg downloadCompleteMsg) (tea.Model, tea.Cmd) {
	m.downloading = false
	m.loading = true
	m.message = msg.message
	return m, tea.Batch(
		m.loadMods(),
		m.spinner.Tick,
		tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearMessageMsg{}
		}),
	)
}

func (m Model) View() string {
	if m.error != "" {
		return fmt.Sprintf("Error: %s\n", m.error)
	}
	if m.loading {
		return lipgloss.NewStyle().Bold(true).Render(m.spinner.View()+" Checking tracked mods...") + "\n"
	}
	if m.downloading {
		return lipgloss.NewStyle().Bold(true).Render(m.spinner.View()+" Downloading selected mods...") + "\n"
	}
	if len(m.mods) == 0 {
		return "No tracked mods. Add some with `track <modId|slug>`.\n"
	}

	var b strings.Builder
	b.WriteString(renderHeader())
	b.WriteString("\n")
	for i, mod := range m.mods {
		b.WriteString(m.renderModRow(i, mod))
		b.WriteString("\n")
	}
	b.WriteString("\n" + renderFooter())
	if m.message != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.message))
	}
	return b.String()
}

func renderHeader() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)

	return headerStyle.Render(fmt.Sprintf("  %-39s %-30s %-30s %-16s", "Mod Name", "Installed", "Available", "Status"))
}

func renderFooter() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true).
		Render("↑/k: up  ↓/j: down  space: select  a: select all  ctrl+d: download  q: quit")
}

var statusColors = map[string]string{
	statusUpdateAvailable: "11",
	statusUpToDate:        "10",
	statusNotInstalled:    "9",
	statusIncompatible:    "8",
}

func (m Model) renderModRow(index int, mod ModInfo) string {
	rowStyle := lipgloss.NewStyle().Padding(0, 1)
	if index == m.selectedIndex {
		rowStyle = rowStyle.Background(lipgloss.Color("8")).Bold(true)
	}

	color, ok := statusColors[mod.Status]
	if !ok {
		color = "7"
	}
	// Pad before colouring so escape codes don't break the columns.
	status := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(fmt.Sprintf("%-16s", mod.Status))

	indicator := " "
	if mod.Selected {
		indicator = "✓"
	} else if !mod.Selectable {
		indicator = "-"
	}

	row := fmt.Sprintf("%s %-39s %-30s %-30s %s",
		indicator,
		truncate(mod.Name, 37),
		truncate(mod.InstalledVersion, 28),
		truncate(mod.AvailableVersion, 28),
		status,
	)
	return rowStyle.Render(row)
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}

type modsLoadedMsg struct {
	mods []ModInfo
}

type errorMsg string

type downloadCompleteMsg struct {
	message string
}

type clearMessageMsg struct{}

// modStatus compares the installed file of tracked with the newest compatible
// one. available is nil when no compatible file exists.
func modStatus(tracked db.Mod, available *curseforge.FileIndex) ModInfo {
	info := ModInfo{
		Name:             tracked.Name,
		ModID:            tracked.ModID,
		ClassID:          tracked.ClassID,
		InstalledVersion: tracked.DisplayName,
	}
	if tracked.FileID == 0 {
		info.InstalledVersion = "Not installed"
	}

	switch {
	case available == nil:
		info.AvailableVersion = "-"
		info.Status = statusIncompatible
	case tracked.FileID == 0:
		info.Status = statusNotInstalled
	case tracked.FileID == int(available.FileID):
		info.Status = statusUpToDate
	default:
		info.Status = statusUpdateAvailable
	}
	if available != nil {
		info.AvailableVersion = available.Filename
		info.AvailableFileID = int(available.FileID)
		info.Selectable = info.Status != statusUpToDate
	}
	return info
}

func (m Model) loadMods() tea.Cmd {
	return func() tea.Msg {
		mods, err := m.fetchModInfos(context.Background())
		if err != nil {
			logger.Log.Errorw("Failed to fetch mods", zap.Error(err))
			return errorMsg(fmt.Sprintf("Failed to fetch mods: %v", err))
		}
		return modsLoadedMsg{mods: mods}
	}
}

func (m Model) fetchModInfos(ctx context.Context) ([]ModInfo, error) {
	tracked, err := db.TrackedMods(m.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracked mods: %w", err)
	}
	if len(tracked) == 0 {
		return nil, nil
	}

	ids := make([]curseforge.ID, len(tracked))
	for i, t := range tracked {
		ids[i] = curseforge.ID(t.ModID)
	}
	remote, err := m.client.GetMods(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get mods: %w", err)
	}
	byID := make(map[int]curseforge.Mod, len(remote))
	for _, mod := range remote {
		byID[int(mod.ID)] = mod
	}

	channel, err := m.cfg.Channel()
	if err != nil {
		channel = curseforge.ReleaseTypeRelease
	}
	infos := make([]ModInfo, 0, len(tracked))
	for _, t := range tracked {
		mod, ok := byID[t.ModID]
		if !ok {
			infos = append(infos, modStatus(t, nil))
			continue
		}
		idx := curseforge.LatestFileIndex(mod, m.cfg.MinecraftVersion, loaderFor(mod, m.cfg), channel)
		infos = append(infos, modStatus(t, idx))
	}
	return infos, nil
}

func (m Model) downloadSelectedMods() tea.Cmd {
	return func() tea.Msg {
		var selected []ModInfo
		for _, mod := range m.mods {
			if mod.Selected {
				selected = append(selected, mod)
			}
		}
		if len(selected) == 0 {
			return downloadCompleteMsg{message: "No mods selected for download"}
		}

		ctx := context.Background()
		successCount := 0
		for _, mod := range selected {
			if err := m.installSelected(ctx, mod); err != nil {
				logger.Log.Warnw("Failed to download mod", zap.String("mod", mod.Name), zap.Error(err))
				continue
			}
			successCount++
		}
		return downloadCompleteMsg{message: fmt.Sprintf("Downloaded %d/%d selected mods", successCount, len(selected))}
	}
}

func (m Model) installSelected(ctx context.Context, info ModInfo) error {
	tracked, err := db.FindMod(m.conn, info.ModID)
	if err != nil {
		return err
	}
	if tracked == nil {
		return fmt.Errorf("mod %d is no longer tracked", info.ModID)
	}

	mod, err := m.client.GetMod(ctx, curseforge.ID(info.ModID))
	if err != nil {
		return err
	}
	file, err := m.client.GetModFile(ctx, mod.ID, curseforge.ID(info.AvailableFileID))
	if err != nil {
		return err
	}
	log := logger.Log.With(zap.String("mod", mod.Name))
	return installFile(ctx, m.client, m.conn, &m.cfg, log, tracked, *mod, *file)
}

func runGUI() {
	cfg, client := bootstrap(configDir)

	p := tea.NewProgram(newGUIModel(client, db.DB, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Log.Fatalw("Failed to run GUI", zap.Error(err))
	}
}
