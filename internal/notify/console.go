package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/danmuck/evlctl/internal/tpi"
)

// Console prints gated payloads as "Command: <code>, <description>".
//
// Settings: "stream" (stdout|stderr), "color" (false disables color).
type Console struct {
	base

	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

func NewConsole(dest Destination, labels Labels) *Console {
	c := &Console{base: newBase(dest, labels)}
	out := os.Stdout
	if strings.EqualFold(strings.TrimSpace(c.settings["stream"]), "stderr") {
		out = os.Stderr
	}
	c.SetOutput(out)
	return c
}

// SetOutput redirects the console. Color is only used for terminals.
func (c *Console) SetOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = w
	c.colorize = colorEnabled(w, c.settings["color"])
}

func (c *Console) Notify(p tpi.Payload) {
	priority, ok := c.passes(p.Command)
	if !ok {
		return
	}
	line := c.Format(p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.colorize {
		line = priorityColor(priority).Sprint(line)
	}
	_, _ = fmt.Fprintln(c.out, line)
}

func (c *Console) Format(p tpi.Payload) string {
	return fmt.Sprintf("Command: %s, %s", p.Command, c.labels.Describe(p))
}

func colorEnabled(w io.Writer, setting string) bool {
	if strings.EqualFold(strings.TrimSpace(setting), "false") {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func priorityColor(p Priority) *color.Color {
	var c *color.Color
	switch {
	case p >= PriorityCritical:
		c = color.New(color.FgHiRed, color.Bold)
	case p >= PriorityHigh:
		c = color.New(color.FgRed)
	case p >= PriorityMedium:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgCyan)
	}
	// The writer was already checked; color's global NoColor only looks at stdout.
	c.EnableColor()
	return c
}
