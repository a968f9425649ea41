package ui

import (
	"fmt"

	"curseforge-mod-updater/curseforge"

	"github.com/charmbracelet/lipgloss"
)

var releaseColors = map[curseforge.FileReleaseType]lipgloss.Color{
	curseforge.ReleaseTypeRelease: lipgloss.Color("#4ade80"),
	curseforge.ReleaseTypeBeta:    lipgloss.Color("#60a5fa"),
	curseforge.ReleaseTypeAlpha:   lipgloss.Color("#f87171"),
}

// Colorize applies the given RGB color to the text using lipgloss.
func Colorize(text string, color int) string {
	hexColor := fmt.Sprintf("#%06x", color)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
	return style.Render(text)
}

// ReleaseTag renders a file's release channel in the color CurseForge uses
// for it, e.g. a red "alpha".
func ReleaseTag(r curseforge.FileReleaseType) string {
	color, ok := releaseColors[r]
	if !ok {
		return r.String()
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(r.String())
}
