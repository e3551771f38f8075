package errors

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[90m"
	colorBold   = "\033[1m"
)

// Formatter renders errors for people, optionally with ANSI colour.
type Formatter struct {
	UseColor bool
	Writer   io.Writer
	Indent   string
}

// DefaultFormatter writes to stderr, coloured when stderr is a terminal.
func DefaultFormatter() *Formatter {
	return &Formatter{
		UseColor: term.IsTerminal(int(os.Stderr.Fd())),
		Writer:   os.Stderr,
		Indent:   "  ",
	}
}

// Format renders err with the default formatter.
func Format(err error) string {
	return DefaultFormatter().Format(err)
}

// Sprint renders err without colour.
func Sprint(err error) string {
	f := &Formatter{Writer: io.Discard, Indent: "  "}
	return f.Format(err)
}

// Format renders err. NebulaErrors show code, message, context, cause and
// suggestions; other errors get a single "Error:" line.
func (f *Formatter) Format(err error) string {
	if err == nil {
		return ""
	}

	ne, ok := AsNebulaError(err)
	if !ok {
		return f.paint(colorRed, "Error: ") + err.Error()
	}

	var sb strings.Builder
	sb.WriteString(f.paint(colorRed+colorBold, "ERROR"))
	sb.WriteString(f.paint(colorRed, " ["+ne.Code+"]: "))
	sb.WriteString(ne.Message)
	sb.WriteString("\n")

	if ne.HasContext() {
		keys := make([]string, 0, len(ne.Context))
		for k := range ne.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(f.Indent)
			sb.WriteString(f.paint(colorYellow, k+": "))
			sb.WriteString(ne.Context[k])
			sb.WriteString("\n")
		}
	}

	if ne.Cause != nil {
		sb.WriteString(f.Indent)
		sb.WriteString(f.paint(colorDim, "cause: "+ne.Cause.Error()))
		sb.WriteString("\n")
	}

	if ne.HasSuggestions() {
		if ne.HasContext() || ne.Cause != nil {
			sb.WriteString("\n")
		}
		for i, s := range ne.Suggestions {
			sb.WriteString(f.Indent)
			sb.WriteString(f.paint(colorCyan, "→ "+s))
			if i < len(ne.Suggestions)-1 {
				sb.WriteString("\n")
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// Display writes the formatted error followed by a newline.
func (f *Formatter) Display(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(f.Writer, f.Format(err))
}

// Display writes err to stderr with the default formatter.
func Display(err error) {
	DefaultFormatter().Display(err)
}

func (f *Formatter) paint(color, s string) string {
	if !f.UseColor {
		return s
	}
	return color + s + colorReset
}
