package logging

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Warner receives user-visible, non-fatal warnings.
type Warner interface {
	Warn(msg string)
}

// ColorWarner prints "Warning: <msg>" lines, highlighted when the output
// supports color.
type ColorWarner struct {
	out   io.Writer
	label *color.Color
}

// NewColorWarner returns a warner writing to out.
func NewColorWarner(out io.Writer) *ColorWarner {
	return &ColorWarner{
		out:   out,
		label: color.New(color.FgYellow, color.Bold),
	}
}

func (w *ColorWarner) Warn(msg string) {
	fmt.Fprintf(w.out, "%s %s\n", w.label.Sprint("Warning:"), msg)
}

// Recorder collects warnings in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of the recorded warnings.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Multi fans a warning out to several sinks.
type Multi []Warner

func (m Multi) Warn(msg string) {
	for _, w := range m {
		if w != nil {
			w.Warn(msg)
		}
	}
}
