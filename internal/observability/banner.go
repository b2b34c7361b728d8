package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	colorReset    = "\033[0m"
	colorBold     = "\033[1m"
	colorNeonCyan = "\033[96m"
)

const banner = `
   _____       __           __________  ______
  / ___/____ _/ /__  _____ / ____/ __ \/_  __/
  \__ \/ __ ` + "`" + `/ / _ \/ ___// / __/ /_/ / / /
 ___/ / /_/ / /  __(__  )/ /_/ / ____/ / /
/____/\__,_/_/\___/____/ \____/_/     /_/
`

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func termWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// PrintBanner writes the startup banner and the knowledge base in use.
// Colour and centring are applied only on a terminal.
func PrintBanner(w io.Writer, st Status) {
	tty := isTerminal(w)
	width := 0
	if tty {
		width = termWidth(w.(*os.File))
	}

	for _, l := range strings.Split(strings.Trim(banner, "\n"), "\n") {
		padding := max((width-len(l))/2, 0)
		if tty {
			fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan, l, colorReset)
		} else {
			fmt.Fprintln(w, l)
		}
	}

	info := fmt.Sprintf("knowledge base: %s (%s)", st.KnowledgeBase, st.Source)
	if tty {
		info = colorBold + info + colorReset
	}
	fmt.Fprintf(w, "\n%s\n\n", info)
}
