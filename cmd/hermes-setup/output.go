package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

func printStep(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", color.BlueString(" •"), color.New(color.FgHiBlack).Sprint(text))
}

func printDetail(w io.Writer, text string) {
	fmt.Fprintf(w, "   └ %s\n", text)
}

func printSuccess(w io.Writer, text string) {
	fmt.Fprintln(w, color.GreenString("     ✔ %s", text))
}

func printFailure(w io.Writer, text string) {
	fmt.Fprintln(w, color.RedString("     ✘ %s", text))
}
