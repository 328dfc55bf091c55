package panel

import "github.com/charmbracelet/lipgloss"

// ANSI palette indices so the panel follows the user's terminal theme.
var (
	darkRed     = lipgloss.Color("1")
	darkGreen   = lipgloss.Color("2")
	darkYellow  = lipgloss.Color("3")
	darkBlue    = lipgloss.Color("4")
	darkMagenta = lipgloss.Color("5")
	darkCyan    = lipgloss.Color("6")
	darkGrey    = lipgloss.Color("8")
	red         = lipgloss.Color("9")
	green       = lipgloss.Color("10")
	yellow      = lipgloss.Color("11")
	blue        = lipgloss.Color("12")
	magenta     = lipgloss.Color("13")
	cyan        = lipgloss.Color("14")
)

var (
	labelStyle    = lipgloss.NewStyle()
	bulletStyle   = lipgloss.NewStyle().Foreground(green)
	greetStyle    = lipgloss.NewStyle().Foreground(cyan)
	userStyle     = lipgloss.NewStyle().Foreground(green).Bold(true)
	upStyle       = lipgloss.NewStyle().Foreground(yellow)
	uptimeStyle   = lipgloss.NewStyle().Foreground(cyan).Bold(true)
	barLabelStyle = lipgloss.NewStyle().Foreground(green)
	emptyStyle    = lipgloss.NewStyle().Foreground(darkGrey)
	doneStyle     = lipgloss.NewStyle().Foreground(green).Bold(true)
	leftStyle     = lipgloss.NewStyle().Foreground(magenta)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// colorbarSteps is the rainbow shown above the greeting.
var colorbarSteps = []struct {
	color  lipgloss.Color
	blocks string
}{
	{darkRed, "░▒"},
	{red, "▓▒"},
	{darkYellow, "▓▒"},
	{yellow, "▓▒"},
	{darkGreen, "▓▒"},
	{green, "▓▒"},
	{darkCyan, "▓▒"},
	{cyan, "▓▒"},
	{darkBlue, "▓▒"},
	{blue, "▓▒"},
	{darkMagenta, "▓▒"},
	{magenta, "▒░"},
}

// Scheme holds the bar colors for the 90, 70, 50, 30 and lower thresholds.
type Scheme [5]lipgloss.Color

var (
	// UsageScheme turns red as a resource fills up.
	UsageScheme = Scheme{darkRed, red, yellow, darkGreen, green}
	// ChallengeScheme brightens as the challenge nears completion.
	ChallengeScheme = Scheme{green, darkGreen, darkYellow, darkCyan, cyan}
)

func (s Scheme) color(percent int) lipgloss.Color {
	switch {
	case percent >= 90:
		return s[0]
	case percent >= 70:
		return s[1]
	case percent >= 50:
		return s[2]
	case percent >= 30:
		return s[3]
	default:
		return s[4]
	}
}
