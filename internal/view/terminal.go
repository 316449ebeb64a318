// Package view renders controller state to a terminal.
package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dgallion1/docsum/internal/controller"
)

const rule = "--------------------------------------------------"

// Terminal prints status changes and the result section as they happen.
// Alerts go to a separate writer, usually stderr.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	alert io.Writer
	last  controller.State
}

func NewTerminal(out, alert io.Writer) *Terminal {
	return &Terminal{out: out, alert: alert}
}

func (t *Terminal) Render(s controller.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.StatusText != "" && s.StatusText != t.last.StatusText {
		fmt.Fprintln(t.out, s.StatusText)
	}
	if s.ResultVisible && (!t.last.ResultVisible || s.Summary != t.last.Summary) {
		fmt.Fprintln(t.out, rule)
		io.WriteString(t.out, s.Summary)
		if !strings.HasSuffix(s.Summary, "\n") {
			fmt.Fprintln(t.out)
		}
		fmt.Fprintln(t.out, rule)
	}
	t.last = s
}

func (t *Terminal) Alert(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.alert, "! "+msg)
}
