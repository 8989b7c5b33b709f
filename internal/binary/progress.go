package binary

import (
	"io"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// progress wraps an io.Reader to display a progress bar when out is a terminal.
// Returns the wrapped reader and a function to finalize the progress display.
func progress(out *os.File, reader io.Reader, size int64) (io.Reader, func()) {
	if out == nil || (!isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd())) {
		return reader, func() {}
	}

	bar := pb.
		New64(size).
		SetTemplate(
			pb.ProgressBarTemplate(
				color.New(color.FgHiBlack).Sprint(
					`   └ {{counters . }}` +
						` {{bar . "[" "=" ">" " " "]" }} {{percent . }}` +
						` {{speed . }}`,
				),
			),
		).
		SetWriter(out).
		SetRefreshRate(time.Second / 30).
		SetMaxWidth(100).
		Start()

	return bar.NewProxyReader(reader), func() { bar.Finish() }
}
