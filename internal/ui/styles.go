package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Design System Colors - Adaptive based on terminal background
var (
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorAccent    lipgloss.Color

	ColorSuccess lipgloss.Color
	ColorWarning lipgloss.Color
	ColorError   lipgloss.Color
	ColorInfo    lipgloss.Color

	ColorText       lipgloss.Color
	ColorTextMuted  lipgloss.Color
	ColorTextDim    lipgloss.Color
	ColorBorder     lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
)

// darkTheme reports whether the dark palette should be used. GLAMOUR_STYLE
// overrides terminal detection so the preview and chrome stay consistent.
func darkTheme() bool {
	switch os.Getenv("GLAMOUR_STYLE") {
	case "light":
		return false
	case "dark":
		return true
	}
	return termenv.HasDarkBackground()
}

// initializeColors sets up the palette and rebuilds the styles that use it
func initializeColors() {
	if darkTheme() {
		setDarkThemeColors()
	} else {
		setLightThemeColors()
	}
	buildStyles()
}

func setDarkThemeColors() {
	ColorPrimary = lipgloss.Color("205")
	ColorSecondary = lipgloss.Color("33")
	ColorAccent = lipgloss.Color("214")

	ColorSuccess = lipgloss.Color("10")
	ColorWarning = lipgloss.Color("11")
	ColorError = lipgloss.Color("9")
	ColorInfo = lipgloss.Color("12")

	ColorText = lipgloss.Color("252")
	ColorTextMuted = lipgloss.Color("244")
	ColorTextDim = lipgloss.Color("240")
	ColorBorder = lipgloss.Color("238")
	ColorBackground = lipgloss.Color("235")
	ColorSurface = lipgloss.Color("236")
}

func setLightThemeColors() {
	ColorPrimary = lipgloss.Color("125")
	ColorSecondary = lipgloss.Color("24")
	ColorAccent = lipgloss.Color("130")

	ColorSuccess = lipgloss.Color("22")
	ColorWarning = lipgloss.Color("136")
	ColorError = lipgloss.Color("160")
	ColorInfo = lipgloss.Color("24")

	ColorText = lipgloss.Color("232")
	ColorTextMuted = lipgloss.Color("240")
	ColorTextDim = lipgloss.Color("244")
	ColorBorder = lipgloss.Color("248")
	ColorBackground = lipgloss.Color("255")
	ColorSurface = lipgloss.Color("254")
}

// Component Styles
var (
	StyleTitle      lipgloss.Style
	StyleSubtitle   lipgloss.Style
	StyleText       lipgloss.Style
	StyleTextMuted  lipgloss.Style
	StyleTextDim    lipgloss.Style
	StyleFocused    lipgloss.Style
	StyleUnselected lipgloss.Style

	StyleSuccess lipgloss.Style
	StyleWarning lipgloss.Style
	StyleError   lipgloss.Style
	StyleInfo    lipgloss.Style

	StyleModal            lipgloss.Style
	StyleContentContainer lipgloss.Style
	StyleFormLabel        lipgloss.Style
	StyleFormLabelFocused lipgloss.Style
	StyleFilterChip       lipgloss.Style
	StyleMetadata         lipgloss.Style

	// Token highlighting in the editor preview
	StyleTokenUnfilled lipgloss.Style
	StyleBanner        lipgloss.Style
)

func init() {
	setDarkThemeColors()
	buildStyles()
}

func buildStyles() {
	StyleTitle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Padding(0, 1)
	StyleSubtitle = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).Padding(0, 1)
	StyleText = lipgloss.NewStyle().Foreground(ColorText)
	StyleTextMuted = lipgloss.NewStyle().Foreground(ColorTextMuted)
	StyleTextDim = lipgloss.NewStyle().Foreground(ColorTextDim)

	StyleFocused = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(ColorSecondary).
		Bold(true).
		Padding(0, 1)
	StyleUnselected = lipgloss.NewStyle().Foreground(ColorTextMuted).Padding(0, 1)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true).Padding(0, 1)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true).Padding(0, 1)
	StyleError = lipgloss.NewStyle().Foreground(ColorError).Bold(true).Padding(0, 1)
	StyleInfo = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true).Padding(0, 1)

	StyleModal = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 3).
		Background(ColorBackground)

	StyleContentContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	StyleFormLabel = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleFormLabelFocused = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	StyleFilterChip = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Background(ColorSurface).
		Bold(true).
		Padding(0, 1).
		MarginRight(1)

	StyleMetadata = lipgloss.NewStyle().Foreground(ColorTextDim).Padding(0, 1)

	StyleTokenUnfilled = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorWarning).
		Bold(true)

	StyleBanner = lipgloss.NewStyle().
		Foreground(ColorWarning).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorWarning).
		PaddingLeft(1)
}

func CreateHeader(titleText string) string {
	return StyleTitle.Render(titleText)
}

func CreateMetadata(text string) string {
	return StyleMetadata.Render(text)
}

// CreateFilterBar renders the active industry and level filters
func CreateFilterBar(industry, level, savedFilter string) string {
	parts := []string{
		StyleFilterChip.Render("Industry: " + industry),
		StyleFilterChip.Render("Level: " + level),
	}
	if savedFilter != "" {
		parts = append(parts, StyleFilterChip.Render("Filter: "+savedFilter))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

// CreateRemainingBadge renders the "N fields remaining" counter
func CreateRemainingBadge(n int) string {
	switch n {
	case 0:
		return StyleSuccess.Render("All fields filled")
	case 1:
		return StyleWarning.Render("1 field remaining")
	default:
		return StyleWarning.Render(fmt.Sprintf("%d fields remaining", n))
	}
}

// CreateValidationBanner lists the required fields that are still blank
func CreateValidationBanner(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	return StyleBanner.Render("Required: " + strings.Join(missing, ", "))
}

// Context-aware help creation with smart truncation
func CreateContextualHelp(essential []string, width int) string {
	text := strings.Join(essential, " • ")
	if width > 8 && len(text) > width-4 {
		text = text[:width-7] + "..."
	}
	return StyleTextDim.Render(text)
}

func CreateStatus(text string, statusType string) string {
	switch statusType {
	case "success":
		return StyleSuccess.Render(text)
	case "warning":
		return StyleWarning.Render(text)
	case "error":
		return StyleError.Render(text)
	case "info":
		return StyleInfo.Render(text)
	default:
		return StyleText.Render(text)
	}
}

// Modal centering helper
func CenterModal(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// Add consistent padding to main content (left only, no top padding)
func AddMainPadding(content string) string {
	return lipgloss.NewStyle().PaddingLeft(2).Render(content)
}
