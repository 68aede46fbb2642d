// Package whitelist implements the legacy selection-list format: one
// regular expression per line, each choosing job identifiers, with
// blank lines and # comments skipped.
package whitelist

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"provkit/internal/rfc822"
)

// Extension is the file suffix selection lists are stored under.
const Extension = ".whitelist"

// Options configure parsing of selection-list text.
type Options struct {
	Name string
	// Origin of the whole text, usually spanning the source file.
	Origin rfc822.Origin
	// ImplicitNamespace qualifies patterns that do not carry a
	// namespace of their own.
	ImplicitNamespace string
}

// WhiteList is a named, ordered list of identifier patterns.
type WhiteList struct {
	name      string
	origin    rfc822.Origin
	namespace string
	patterns  []pattern
}

type pattern struct {
	text string
	re   *regexp.Regexp
}

// SplitPatterns returns the pattern lines of selection-list text.
func SplitPatterns(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// FromString parses selection-list text. Patterns are anchored on
// both ends; an invalid pattern fails the whole list.
func FromString(text string, opts Options) (*WhiteList, error) {
	w := &WhiteList{name: opts.Name, origin: opts.Origin, namespace: opts.ImplicitNamespace}
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		re, err := regexp.Compile("^(?:" + qualifyPattern(line, opts.ImplicitNamespace) + ")$")
		if err != nil {
			return nil, fmt.Errorf("pattern %q on line %d: %w", line, i+1, err)
		}
		w.patterns = append(w.patterns, pattern{text: line, re: re})
	}
	return w, nil
}

// FromFile parses one .whitelist file. The list is named after the
// file and its origin spans every line of it.
func FromFile(path, namespace string) (*WhiteList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	origin := rfc822.Origin{
		Source:    rfc822.FileTextSource{Filename: path},
		LineStart: 1,
		LineEnd:   CountLines(text),
	}
	return FromString(text, Options{
		Name:              strings.TrimSuffix(filepath.Base(path), Extension),
		Origin:            origin,
		ImplicitNamespace: namespace,
	})
}

// CountLines counts text lines, with or without a final newline.
func CountLines(text string) int {
	n := strings.Count(text, "\n")
	if len(text) > 0 && !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// qualifyPattern prefixes an unqualified pattern with the implicit
// namespace so that plain job names keep matching qualified ids.
func qualifyPattern(pat, namespace string) string {
	if namespace == "" || strings.Contains(pat, "::") {
		return pat
	}
	return regexp.QuoteMeta(namespace) + "::(?:" + pat + ")"
}

func (w *WhiteList) Name() string { return w.name }

func (w *WhiteList) Origin() rfc822.Origin { return w.origin }

func (w *WhiteList) Namespace() string { return w.namespace }

// Patterns returns the pattern texts as written, one per line kept.
func (w *WhiteList) Patterns() []string {
	out := make([]string, len(w.patterns))
	for i, p := range w.patterns {
		out[i] = p.text
	}
	return out
}

// Designates reports whether the qualified identifier is selected by
// any pattern in the list.
func (w *WhiteList) Designates(id string) bool {
	for _, p := range w.patterns {
		if p.re.MatchString(id) {
			return true
		}
	}
	return false
}
