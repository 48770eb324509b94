package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/seerrpad/internal/kiosk"
	"github.com/mmcdole/seerrpad/internal/nav"
	"github.com/mmcdole/seerrpad/internal/tui/styles"
)

// View renders the last engine frame
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	f := m.frame
	header := styles.HeaderStyle.Width(m.width).Render(f.Title)
	footer := renderFooter(f, m.width)

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch {
	case f.Keyboard != nil:
		body = renderKeyboard(*f.Keyboard)
	case f.Detail != nil:
		body = m.renderDetail(*f.Detail, bodyHeight)
	default:
		body = renderList(f, m.width)
	}

	body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderList draws the visible window of a list with scroll markers
func renderList(f kiosk.Frame, width int) string {
	if f.Total == 0 {
		if f.Screen == nav.ScreenMainMenu {
			return ""
		}
		return styles.DimStyle.Render("Nothing to show")
	}

	rowWidth := min(width-4, 64)
	lines := make([]string, 0, len(f.Rows)+2)
	if f.Offset > 0 {
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("▲ %d more", f.Offset)))
	}
	for _, row := range f.Rows {
		lines = append(lines, styles.RenderListRow(row.Label, row.Selected, rowWidth))
	}
	if below := f.Total - f.Offset - len(f.Rows); below > 0 {
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("▼ %d more", below)))
	}
	if f.Screen != nav.ScreenMainMenu {
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("%d / %d", f.Selected+1, f.Total)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderKeyboard draws the query line above the key grid
func renderKeyboard(kb kiosk.KeyboardView) string {
	query := kb.Query + "_"
	lines := []string{styles.QueryStyle.Width(40).Render(query), ""}

	for r, keys := range nav.Layout {
		cells := make([]string, 0, len(keys))
		for c, k := range keys {
			label := k.Label()
			style := styles.KeyStyle
			if r == kb.Row && c == kb.Col {
				style = styles.KeySelectedStyle
			}
			cells = append(cells, style.Width(max(3, len(label))).Render(label))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// renderDetail puts the poster beside the title block and overview
func (m Model) renderDetail(d kiosk.DetailView, height int) string {
	var info strings.Builder
	info.WriteString(styles.TitleStyle.Render(d.Title))
	info.WriteString("\n\n")
	field := func(label, value string) {
		info.WriteString(styles.LabelStyle.Render(label))
		info.WriteString(" ")
		info.WriteString(styles.SubtitleStyle.Render(value))
		info.WriteString("\n")
	}
	field("Type:", d.Type)
	field("Released:", d.Release)
	field("Rating:", d.Rating)
	info.WriteString("\n")
	info.WriteString(strings.Join(d.Overview, "\n"))

	text := styles.PanelStyle.Render(info.String())

	cols, rows := posterSize(m.width-lipgloss.Width(text), height)
	if cols == 0 || rows == 0 {
		return text
	}
	poster := m.posters.Render(d.PosterURL, d.Poster, cols, rows)
	if !d.PosterLoaded {
		poster = lipgloss.JoinVertical(lipgloss.Center, poster, styles.DimStyle.Render("no poster"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, poster, "  ", text)
}

// renderFooter shows the active message, or the control hint when none is live
func renderFooter(f kiosk.Frame, width int) string {
	var line string
	if f.Message != nil {
		switch f.Message.Class {
		case kiosk.MessageError:
			line = styles.ErrorStyle.Render(f.Message.Text)
		case kiosk.MessageSuccess:
			line = styles.SuccessStyle.Render(f.Message.Text)
		default:
			line = styles.InfoStyle.Render(f.Message.Text)
		}
	} else {
		line = renderHint(f.Hint)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, line)
}

// renderHint colours "KEY action" pairs separated by wide gaps
func renderHint(hint string) string {
	pairs := strings.Split(hint, "   ")
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		k, desc, ok := strings.Cut(p, " ")
		if !ok {
			out = append(out, styles.HelpDescStyle.Render(p))
			continue
		}
		out = append(out, styles.HelpKeyStyle.Render(k)+" "+styles.HelpDescStyle.Render(desc))
	}
	return strings.Join(out, "   ")
}
