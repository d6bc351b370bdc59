// Package notify delivers short, non-blocking user notifications.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/tiercache/internal/domain"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(lipgloss.Color("#E5A00D")).
			Bold(true).
			Padding(0, 1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))
)

// Terminal writes one line per notification. Styling is applied only when
// the output is a terminal.
type Terminal struct {
	out    io.Writer
	styled bool
}

// NewTerminal writes to f, styling when f is a terminal.
func NewTerminal(f *os.File) *Terminal {
	return &Terminal{out: f, styled: term.IsTerminal(int(f.Fd()))}
}

// NewWriter writes plain lines to w.
func NewWriter(w io.Writer) *Terminal {
	return &Terminal{out: w}
}

func (t *Terminal) Notify(title, message string) {
	if t.styled {
		fmt.Fprintln(t.out, titleStyle.Render(title)+" "+messageStyle.Render(message))
		return
	}
	fmt.Fprintf(t.out, "%s: %s\n", title, message)
}

// Log records notifications in the application log.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(title, message string) {
	l.logger.Warn("notification", "title", title, "message", message)
}

// Multi sends every notification to each notifier in order.
type Multi []domain.Notifier

func (m Multi) Notify(title, message string) {
	for _, n := range m {
		n.Notify(title, message)
	}
}
