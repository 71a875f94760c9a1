// Package report renders plain-text analysis reports from an inventory
// snapshot: architecture overview, network topology, security posture and
// cost guidance. Output is plain text so it can be served over HTTP as
// well as printed to a terminal.
package report

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	defaultWidth = 80
	minBoxWidth  = 60
	maxBoxWidth  = 100
)

// TerminalWidth returns the stdout column count when stdout is a TTY,
// otherwise the default report width.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w >= minBoxWidth {
			return w
		}
	}

	return defaultWidth
}

// box renders framed sections of a report at a fixed width.
type box struct {
	b     *strings.Builder
	width int
}

func newBox(b *strings.Builder, width int) *box {
	if width < minBoxWidth {
		width = minBoxWidth
	}
	if width > maxBoxWidth {
		width = maxBoxWidth
	}

	return &box{b: b, width: width}
}

func (x *box) inner() int { return x.width - 4 }

func (x *box) top()    { x.edge('┌', '┐') }
func (x *box) sep()    { x.edge('├', '┤') }
func (x *box) bottom() { x.edge('└', '┘') }

func (x *box) edge(left, right rune) {
	x.b.WriteRune(left)
	x.b.WriteString(strings.Repeat("─", x.width-2))
	x.b.WriteRune(right)
	x.b.WriteByte('\n')
}

func (x *box) line(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	text = truncate(text, x.inner())
	fmt.Fprintf(x.b, "│ %-*s │\n", x.inner(), text)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}

	return string(runes[:max-3]) + "..."
}

// shortType strips the provider prefix from a resource type, leaving just
// the service name, e.g. "virtualMachines".
func shortType(resourceType string) string {
	parts := strings.Split(resourceType, "/")
	return parts[len(parts)-1]
}

func lastSegment(id string) string {
	parts := strings.Split(id, "/")
	return parts[len(parts)-1]
}
