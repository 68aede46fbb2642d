package rfc822

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSourceStrings(t *testing.T) {
	assert.Equal(t, "file.txt", FileTextSource{Filename: "file.txt"}.String())
	assert.Equal(t, "???", UnknownTextSource{}.String())
	assert.Equal(t, "main.go", CallerTextSource{Filename: "main.go"}.String())
}

func TestCompareSources(t *testing.T) {
	tests := []struct {
		name    string
		a, b    TextSource
		want    int
		wantErr bool
	}{
		{"equal files", FileTextSource{"a.txt"}, FileTextSource{"a.txt"}, 0, false},
		{"file order", FileTextSource{"a.txt"}, FileTextSource{"b.txt"}, -1, false},
		{"file order reversed", FileTextSource{"b.txt"}, FileTextSource{"a.txt"}, 1, false},
		{"unknown sources are equal", UnknownTextSource{}, UnknownTextSource{}, 0, false},
		{"caller sources order", CallerTextSource{"a.go"}, CallerTextSource{"b.go"}, -1, false},
		{"file vs unknown", FileTextSource{"a.txt"}, UnknownTextSource{}, 0, true},
		{"unknown vs file", UnknownTextSource{}, FileTextSource{"a.txt"}, 0, true},
		{"file vs caller", FileTextSource{"a.txt"}, CallerTextSource{"a.go"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareSources(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOriginString(t *testing.T) {
	src := FileTextSource{Filename: "file.txt"}
	assert.Equal(t, "file.txt:10-12", Origin{Source: src, LineStart: 10, LineEnd: 12}.String())
	assert.Equal(t, "file.txt:10", Origin{Source: src, LineStart: 10, LineEnd: 10}.String())
	assert.Equal(t, "file.txt", Origin{Source: src}.String())
	assert.Equal(t, "???:1", Origin{Source: UnknownTextSource{}, LineStart: 1, LineEnd: 1}.String())
	assert.Equal(t, "???", Origin{}.String())
}

func TestOriginCompare(t *testing.T) {
	src := FileTextSource{Filename: "file.txt"}
	base := Origin{Source: src, LineStart: 10, LineEnd: 12}

	got, err := base.Compare(Origin{Source: src, LineStart: 10, LineEnd: 12})
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	got, err = base.Compare(Origin{Source: src, LineStart: 11, LineEnd: 12})
	require.NoError(t, err)
	assert.Equal(t, -1, got)

	got, err = base.Compare(Origin{Source: src, LineStart: 10, LineEnd: 11})
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = base.Compare(Origin{Source: FileTextSource{"aaa.txt"}, LineStart: 99, LineEnd: 99})
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = base.Compare(Origin{Source: UnknownTextSource{}, LineStart: 10, LineEnd: 12})
	require.Error(t, err)
}

func TestOriginEqual(t *testing.T) {
	src := FileTextSource{Filename: "file.txt"}
	assert.True(t, Origin{Source: src, LineStart: 1, LineEnd: 2}.Equal(Origin{Source: src, LineStart: 1, LineEnd: 2}))
	assert.False(t, Origin{Source: src, LineStart: 1, LineEnd: 2}.Equal(Origin{Source: src, LineStart: 1, LineEnd: 3}))
	assert.False(t, Origin{Source: src}.Equal(Origin{Source: UnknownTextSource{}}))
}

func TestOriginAdjustments(t *testing.T) {
	src := FileTextSource{Filename: "file.txt"}
	o := Origin{Source: src, LineStart: 10, LineEnd: 12}
	assert.Equal(t, Origin{Source: src, LineStart: 15, LineEnd: 17}, o.WithOffset(5))
	assert.Equal(t, Origin{Source: src, LineStart: 10, LineEnd: 10}, o.JustLine())
	assert.Equal(t, Origin{Source: src}, o.JustFile())
}

func TestCallerOrigin(t *testing.T) {
	o := CallerOrigin(0)
	src, ok := o.Source.(CallerTextSource)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(src.Filename, "origin_test.go"), "got %q", src.Filename)
	assert.Positive(t, o.LineStart)
	assert.Equal(t, o.LineStart, o.LineEnd)
}
