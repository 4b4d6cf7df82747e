package chat

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor   = lipgloss.Color("111")
	dimColor      = lipgloss.Color("243")
	errorColor    = lipgloss.Color("203")
	selectedBg    = lipgloss.Color("237")
	readerBg      = lipgloss.Color("24")
	headerColor   = lipgloss.Color("252")
	unreadColor   = lipgloss.Color("216")
	statusColor   = lipgloss.Color("245")
	modalBorder   = lipgloss.Color("62")
	authorPalette = []lipgloss.Color{
		lipgloss.Color("111"),
		lipgloss.Color("157"),
		lipgloss.Color("216"),
		lipgloss.Color("36"),
		lipgloss.Color("183"),
		lipgloss.Color("230"),
	}
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(headerColor)
	channelStyle  = lipgloss.NewStyle()
	dimStyle      = lipgloss.NewStyle().Foreground(dimColor)
	unreadStyle   = lipgloss.NewStyle().Bold(true).Foreground(unreadColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	statusStyle   = lipgloss.NewStyle().Foreground(statusColor)
	selectedStyle = lipgloss.NewStyle().Background(selectedBg)
	readerStyle   = lipgloss.NewStyle().Background(readerBg)
	modalStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(modalBorder).
			Padding(0, 1)
)

// colorForAuthor picks a stable palette color per author.
func colorForAuthor(author string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(author))
	return authorPalette[int(h.Sum32()%uint32(len(authorPalette)))]
}
