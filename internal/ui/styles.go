package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed    = lipgloss.Color("#E63946")
	ColorGreen  = lipgloss.Color("#2A9D8F")
	ColorYellow = lipgloss.Color("#E9C46A")
	ColorOrange = lipgloss.Color("#F4A261")
	ColorGray   = lipgloss.Color("#666666")
	ColorWhite  = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorOrange)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	BadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorGreen).
			Padding(0, 1)

	AvatarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorOrange).
			Padding(0, 1).
			Align(lipgloss.Center)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)

	UserLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	TutorLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorOrange)

	QuestionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	CorrectStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	IncorrectStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	WarningTextStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	InterimTextStyle = lipgloss.NewStyle().
				Italic(true).
				Foreground(ColorGray)

	RecordingDotStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)
