// Package cli renders taxon's terminal output: styled messages, the batch
// progress bar and the end-of-run summary.
package cli

import (
	"github.com/Veraticus/taxon/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	accent = lipgloss.Color("#7AA2F7")
	teal   = lipgloss.Color("#4ECDC4")
	amber  = lipgloss.Color("#FFE66D")
	coral  = lipgloss.Color("#FF6B6B")
	mint   = lipgloss.Color("#95E1D3")
	gray   = lipgloss.Color("#666666")
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(teal)
	WarningStyle = lipgloss.NewStyle().Foreground(amber)
	ErrorStyle   = lipgloss.NewStyle().Foreground(coral)
	InfoStyle    = lipgloss.NewStyle().Foreground(mint)
	SubtleStyle  = lipgloss.NewStyle().Foreground(gray)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// BoxStyle frames the run summary.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	TaxonIcon   = "🗂️"
	ChartIcon   = "📊"
)

// confidenceStyles colors each tier the way the review queue treats it:
// low results are the ones a person has to look at.
var confidenceStyles = map[model.Confidence]lipgloss.Style{
	model.ConfidenceHigh:   SuccessStyle,
	model.ConfidenceMedium: InfoStyle,
	model.ConfidenceLow:    WarningStyle,
}

func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle prefixes title with the app icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(TaxonIcon + " " + title)
}

// FormatConfidence renders a confidence tier in its color. Unknown tiers
// are printed as-is.
func FormatConfidence(c model.Confidence) string {
	style, ok := confidenceStyles[c]
	if !ok {
		return string(c)
	}
	return style.Render(string(c))
}

// RenderBox frames content under a title.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
