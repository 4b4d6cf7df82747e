package chat

import (
	"os"

	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/nav"
	"golang.org/x/term"
)

// terminalSize probes stdout. Anything that is not a usable terminal gets
// the 80x24 fallback; the first WindowSizeMsg corrects it either way.
func terminalSize() (rows, cols int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return nav.DefaultRows, nav.DefaultCols
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil || rows <= 0 || cols <= 0 {
		logging.Debug("chat", "terminal size unavailable (%v), using %dx%d", err, nav.DefaultCols, nav.DefaultRows)
		return nav.DefaultRows, nav.DefaultCols
	}
	return rows, cols
}
