package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	SeerrPurple = lipgloss.Color("#6366F1")
	SeerrViolet = lipgloss.Color("#A78BFA")
	SlateDark   = lipgloss.Color("#111827")
	SlateLight  = lipgloss.Color("#374151")
	DimGray     = lipgloss.Color("#6B7280")
	LightGray   = lipgloss.Color("#9CA3AF")
	White       = lipgloss.Color("#F9FAFB")
	Green       = lipgloss.Color("#10B981")
	Red         = lipgloss.Color("#EF4444")
	Blue        = lipgloss.Color("#3B82F6")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(SeerrPurple).
			Bold(true).
			Padding(0, 2)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(SeerrViolet)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Blue)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SeerrPurple).
				Bold(true).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// On-screen keyboard styles
var (
	KeyStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SlateLight).
			Align(lipgloss.Center)

	KeySelectedStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SeerrPurple).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(SeerrViolet).
				Align(lipgloss.Center)

	QueryStyle = lipgloss.NewStyle().
			Foreground(White).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(SeerrViolet).
			Padding(0, 1)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(1, 2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SeerrViolet).
			Bold(true)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(SeerrViolet)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// SpinnerFrames are the frames of the status spinner
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerStyle colours the spinner
var SpinnerStyle = lipgloss.NewStyle().
	Foreground(SeerrViolet)

// RenderListRow renders a list row padded to width, highlighted when selected
func RenderListRow(text string, selected bool, width int) string {
	style := NormalItemStyle
	prefix := "  "
	if selected {
		style = SelectedItemStyle
		prefix = "▶ "
	}
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(prefix + text)
}
