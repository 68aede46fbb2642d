package rfc822

import (
	"fmt"
	"runtime"
	"strings"
)

// TextSource identifies where a piece of record text came from.
type TextSource interface {
	fmt.Stringer
}

// FileTextSource is text that was read from a named file.
type FileTextSource struct {
	Filename string
}

func (s FileTextSource) String() string {
	return s.Filename
}

// UnknownTextSource is text with no usable provenance, such as an
// anonymous stream. All instances are equal to each other.
type UnknownTextSource struct{}

func (UnknownTextSource) String() string {
	return "???"
}

// CallerTextSource is a Go source file that constructed a record
// programmatically rather than parsing it.
type CallerTextSource struct {
	Filename string
}

func (s CallerTextSource) String() string {
	return s.Filename
}

// CompareSources orders two text sources. Sources of unrelated types
// cannot be ordered and return a non-nil error rather than a silent
// result.
func CompareSources(a, b TextSource) (int, error) {
	switch a := a.(type) {
	case FileTextSource:
		if b, ok := b.(FileTextSource); ok {
			return strings.Compare(a.Filename, b.Filename), nil
		}
	case UnknownTextSource:
		if _, ok := b.(UnknownTextSource); ok {
			return 0, nil
		}
	case CallerTextSource:
		if b, ok := b.(CallerTextSource); ok {
			return strings.Compare(a.Filename, b.Filename), nil
		}
	}
	return 0, fmt.Errorf("cannot compare text sources %T and %T", a, b)
}

// Origin points at the part of a text source that produced something.
// Line numbers are 1-based and inclusive; zero values mean the origin
// covers the whole source.
type Origin struct {
	Source    TextSource
	LineStart int
	LineEnd   int
}

func (o Origin) String() string {
	src := "???"
	if o.Source != nil {
		src = o.Source.String()
	}
	switch {
	case o.LineStart == 0 && o.LineEnd == 0:
		return src
	case o.LineStart == o.LineEnd:
		return fmt.Sprintf("%s:%d", src, o.LineStart)
	default:
		return fmt.Sprintf("%s:%d-%d", src, o.LineStart, o.LineEnd)
	}
}

// Compare orders origins by (source, line start, line end). Origins
// with unrelated sources are not comparable and return an error.
func (o Origin) Compare(other Origin) (int, error) {
	if c, err := CompareSources(o.Source, other.Source); err != nil || c != 0 {
		return c, err
	}
	if o.LineStart != other.LineStart {
		if o.LineStart < other.LineStart {
			return -1, nil
		}
		return 1, nil
	}
	if o.LineEnd != other.LineEnd {
		if o.LineEnd < other.LineEnd {
			return -1, nil
		}
		return 1, nil
	}
	return 0, nil
}

func (o Origin) Equal(other Origin) bool {
	return o == other
}

// WithOffset shifts the line span by n lines.
func (o Origin) WithOffset(n int) Origin {
	return Origin{Source: o.Source, LineStart: o.LineStart + n, LineEnd: o.LineEnd + n}
}

// JustLine collapses the span to its first line.
func (o Origin) JustLine() Origin {
	return Origin{Source: o.Source, LineStart: o.LineStart, LineEnd: o.LineStart}
}

// JustFile drops the line span, keeping only the source.
func (o Origin) JustFile() Origin {
	return Origin{Source: o.Source}
}

// CallerOrigin captures the Go file and line of the caller, for records
// and units built in code. skip counts additional stack frames to
// ascend, with 0 meaning the immediate caller of CallerOrigin.
func CallerOrigin(skip int) Origin {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Origin{Source: UnknownTextSource{}}
	}
	return Origin{Source: CallerTextSource{Filename: file}, LineStart: line, LineEnd: line}
}
