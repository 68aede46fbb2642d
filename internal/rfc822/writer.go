package rfc822

import (
	"io"
	"strings"
)

// Write serializes one record in field order, ending with the blank
// line that separates records. Values survive a parse round trip:
// multi-line values are emitted one line per continuation with empty
// lines written as "." and all-period lines gaining one extra period.
func Write(w io.Writer, r *Record) error {
	var b strings.Builder
	for _, f := range r.Fields() {
		writeField(&b, f)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeField(b *strings.Builder, f Field) {
	if !strings.Contains(f.Value, "\n") {
		b.WriteString(f.Name)
		b.WriteString(":")
		if f.Value != "" {
			b.WriteString(" ")
			b.WriteString(f.Value)
		}
		b.WriteString("\n")
		return
	}
	b.WriteString(f.Name)
	b.WriteString(":\n")
	for _, line := range strings.Split(f.Value, "\n") {
		b.WriteString(" ")
		b.WriteString(escapeLine(line))
		b.WriteString("\n")
	}
}

// escapeLine is the inverse of unescapeLine.
func escapeLine(line string) string {
	if line == "" {
		return "."
	}
	if strings.Count(line, ".") == len(line) {
		return line + "."
	}
	return line
}
