package provider

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefinition(t *testing.T, path, name, location string) {
	t.Helper()
	writeFile(t, path, "name: "+name+"\nversion: \"1.0\"\nlocation: "+location+"\n")
}

func TestScan(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	locA := t.TempDir()
	locB := t.TempDir()

	writeDefinition(t, filepath.Join(dirA, "bravo.provider"), "2014.com.example:bravo", locA)
	writeDefinition(t, filepath.Join(dirB, "alpha.provider"), "2014.com.example:alpha", locB)
	writeFile(t, filepath.Join(dirA, "broken.provider"), "name: [\n")
	writeFile(t, filepath.Join(dirA, "notes.txt"), "not a definition\n")

	providers, problems := Scan([]string{dirA, dirB, filepath.Join(dirA, "missing")}, WithSecure(true))

	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Error(), "broken.provider")

	require.Len(t, providers, 2)
	assert.Equal(t, "2014.com.example:alpha", providers[0].Name())
	assert.Equal(t, "2014.com.example:bravo", providers[1].Name())
	assert.True(t, providers[0].Secure())
}

func TestDefaultSearchPath(t *testing.T) {
	path := DefaultSearchPath()
	require.NotEmpty(t, path)
	for _, dir := range path {
		assert.True(t, filepath.IsAbs(dir))
	}
}
