// Package output provides output formatting for the green CLI.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Format represents the error output format.
type Format string

// Output format constants.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// Formatter writes command results as JSON, pretty printed unless compact.
type Formatter struct {
	compact bool
	writer  io.Writer
}

// NewFormatter creates a formatter writing to w.
func NewFormatter(w io.Writer, compact bool) *Formatter {
	return &Formatter{compact: compact, writer: w}
}

// Writer returns the output writer.
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// IsCompact reports whether output is single line JSON.
func (f *Formatter) IsCompact() bool {
	return f.compact
}

// Print marshals v and writes it like PrintRaw.
func (f *Formatter) Print(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return f.PrintRaw(data)
}

// PrintRaw writes a JSON document. A bare JSON string is written without
// its quotes so addresses and transaction ids can be piped directly.
func (f *Formatter) PrintRaw(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		trimmed = []byte("null")
	}

	var s string
	if trimmed[0] == '"' && json.Unmarshal(trimmed, &s) == nil {
		_, err := fmt.Fprintln(f.writer, s)
		return err
	}

	var buf bytes.Buffer
	var err error
	if f.compact {
		err = json.Compact(&buf, trimmed)
	} else {
		err = json.Indent(&buf, trimmed, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	buf.WriteByte('\n')

	_, err = f.writer.Write(buf.Bytes())
	return err
}

// Println writes a line of text output.
func (f *Formatter) Println(args ...any) error {
	_, err := fmt.Fprintln(f.writer, args...)
	return err
}

// DetectFormat determines the error format: text for a terminal, JSON
// otherwise, unless explicitly chosen.
func DetectFormat(w io.Writer, explicit Format) Format {
	if explicit != FormatAuto {
		return explicit
	}

	if f, ok := w.(*os.File); ok {
		if term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: Fd() returns uintptr, safe conversion for term.IsTerminal
			return FormatText
		}
	}

	return FormatJSON
}
