// Package rfc822 parses and serializes the line-oriented record format
// used by provider content files. A record is a block of "key: value"
// fields; a line starting with a single space continues the previous
// field and a blank line ends the record.
package rfc822

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// SyntaxError describes a malformed line in record text.
type SyntaxError struct {
	Source TextSource
	Line   int
	Msg    string
}

func (e *SyntaxError) Error() string {
	src := "???"
	if e.Source != nil {
		src = e.Source.String()
	}
	return fmt.Sprintf("%s:%d: %s", src, e.Line, e.Msg)
}

// Parse reads every record from r. Origins are attributed to src,
// which may be nil for anonymous streams. On a syntax error the
// records parsed so far are discarded and a *SyntaxError is returned.
func Parse(r io.Reader, src TextSource) ([]*Record, error) {
	if src == nil {
		src = UnknownTextSource{}
	}
	p := parser{src: src}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		if err := p.feed(lineno, sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := p.endRecord(); err != nil {
		return nil, err
	}
	return p.records, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(text string, src TextSource) ([]*Record, error) {
	return Parse(strings.NewReader(text), src)
}

// parser accumulates one record at a time. key/value hold the field
// currently being collected; start/end track the record's line span.
type parser struct {
	src     TextSource
	records []*Record

	fields  []Field
	index   map[string]int
	offsets map[string]int

	key     string
	keyLine int
	value   []string

	start int
	end   int
}

func (p *parser) feed(lineno int, line string) error {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return p.endRecord()
	case strings.HasPrefix(line, " "):
		if p.key == "" {
			return &SyntaxError{Source: p.src, Line: lineno, Msg: "Unexpected multi-line value"}
		}
		p.value = append(p.value, unescapeLine(line[1:]))
		p.end = lineno
		return nil
	case strings.Contains(line, ":"):
		if err := p.commitField(); err != nil {
			return err
		}
		name, rest, _ := strings.Cut(line, ":")
		p.key = strings.TrimSpace(name)
		p.keyLine = lineno
		p.value = nil
		if first := strings.TrimSpace(rest); first != "" {
			p.value = append(p.value, first)
		}
		if p.start == 0 {
			p.start = lineno
		}
		p.end = lineno
		return nil
	default:
		return &SyntaxError{Source: p.src, Line: lineno, Msg: "Unexpected non-empty line"}
	}
}

// unescapeLine undoes the period escape on one continuation line: a
// single period stands for an empty line and N periods stand for N-1
// literal ones. Lines that are not purely periods pass through.
func unescapeLine(rest string) string {
	if rest != "" && strings.Count(rest, ".") == len(rest) {
		return rest[1:]
	}
	return rest
}

func (p *parser) commitField() error {
	if p.key == "" {
		return nil
	}
	val := strings.Join(p.value, "\n")
	if i, dup := p.index[p.key]; dup {
		return &SyntaxError{
			Source: p.src,
			Line:   p.keyLine,
			Msg: fmt.Sprintf("Record has a duplicate key %q with old value %q and new value %q",
				p.key, p.fields[i].Value, val),
		}
	}
	if p.index == nil {
		p.index = make(map[string]int)
		p.offsets = make(map[string]int)
	}
	p.index[p.key] = len(p.fields)
	p.offsets[p.key] = p.keyLine - p.start
	p.fields = append(p.fields, Field{Name: p.key, Value: val})
	p.key = ""
	p.value = nil
	return nil
}

func (p *parser) endRecord() error {
	if err := p.commitField(); err != nil {
		return err
	}
	if len(p.fields) > 0 {
		p.records = append(p.records, &Record{
			fields:  p.fields,
			index:   p.index,
			offsets: p.offsets,
			origin:  Origin{Source: p.src, LineStart: p.start, LineEnd: p.end},
		})
	}
	p.fields = nil
	p.index = nil
	p.offsets = nil
	p.start = 0
	p.end = 0
	return nil
}
