package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provkit/internal/provider"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newProvider(t *testing.T, root string) *provider.Provider {
	t.Helper()
	p, err := provider.New(provider.Definition{
		Name:     "2014.com.example:tests",
		Version:  "1.0",
		Location: root,
	})
	require.NoError(t, err)
	return p
}

// testProvider has a job, a test plan, a data file and one broken
// unit file, so a sync touches every table.
func testProvider(t *testing.T) *provider.Provider {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "units", "test.pxu"),
		"id: smoke\nplugin: shell\ncommand: true\n"+
			"\n"+
			"unit: test plan\nid: main\nname: Main\ninclude: smoke\n")
	writeFile(t, filepath.Join(root, "units", "broken.pxu"), "id: dup\nid: dup\n")
	writeFile(t, filepath.Join(root, "data", "blob.bin"), "data\n")
	return newProvider(t, root)
}

func openCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSyncProvider(t *testing.T) {
	c := openCatalog(t)
	p := testProvider(t)

	res, err := c.SyncProvider(p)
	require.NoError(t, err)
	assert.False(t, res.Unchanged)
	assert.Equal(t, 4, res.Units) // job, test plan, two file units
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 1, res.Problems)

	providers, err := c.Providers()
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, "2014.com.example:tests", providers[0].Name)
	assert.Equal(t, "2014.com.example", providers[0].Namespace)
	assert.Equal(t, "1.0", providers[0].Version)
	assert.NotEmpty(t, providers[0].Hash)

	units, err := c.Units(UnitFilter{})
	require.NoError(t, err)
	assert.Len(t, units, 4)

	jobs, err := c.Units(UnitFilter{Kind: "job"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "2014.com.example::smoke", jobs[0].UnitID)
	assert.Equal(t, "smoke", jobs[0].PartialID)
	assert.False(t, jobs[0].Virtual)
	assert.Contains(t, jobs[0].Definition, "id: smoke\n")
	assert.Contains(t, jobs[0].Definition, "command: true\n")

	byID, err := c.Units(UnitFilter{UnitID: "2014.com.example::smoke"})
	require.NoError(t, err)
	assert.Len(t, byID, 1)

	byProvider, err := c.Units(UnitFilter{Provider: "2014.com.example:tests"})
	require.NoError(t, err)
	assert.Len(t, byProvider, 4)
	none, err := c.Units(UnitFilter{Provider: "2014.com.example:other"})
	require.NoError(t, err)
	assert.Empty(t, none)

	root := p.Definition().Location
	files, err := c.Files("2014.com.example:tests")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "data", "blob.bin"), files[0].Path)
	assert.Equal(t, "data", files[0].Role)
	assert.Equal(t, filepath.Join(root, "units", "test.pxu"), files[1].Path)
	assert.Equal(t, "unit-source", files[1].Role)

	problems, err := c.Problems("2014.com.example:tests")
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "broken.pxu")
}

func TestSyncProviderUnchanged(t *testing.T) {
	c := openCatalog(t)
	p := testProvider(t)

	first, err := c.SyncProvider(p)
	require.NoError(t, err)
	require.False(t, first.Unchanged)

	second, err := c.SyncProvider(p)
	require.NoError(t, err)
	assert.True(t, second.Unchanged)
	assert.Equal(t, first.ProviderID, second.ProviderID)
	assert.Equal(t, first.Units, second.Units)
}

func TestSyncProviderReplacesSnapshot(t *testing.T) {
	c := openCatalog(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "units", "a.pxu"), "id: one\nplugin: shell\ncommand: true\n")
	p := newProvider(t, root)

	_, err := c.SyncProvider(p)
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "units", "b.pxu"), "id: two\nplugin: shell\ncommand: true\n")
	p.Load(provider.DefaultLoadOptions())

	res, err := c.SyncProvider(p)
	require.NoError(t, err)
	assert.False(t, res.Unchanged)

	jobs, err := c.Units(UnitFilter{Kind: "job"})
	require.NoError(t, err)
	assert.Len(t, jobs, 2) // replaced, not appended
}

func TestDeleteProvider(t *testing.T) {
	c := openCatalog(t)
	p := testProvider(t)
	_, err := c.SyncProvider(p)
	require.NoError(t, err)

	require.NoError(t, c.DeleteProvider(p.Name()))

	providers, err := c.Providers()
	require.NoError(t, err)
	assert.Empty(t, providers)

	units, err := c.Units(UnitFilter{})
	require.NoError(t, err)
	assert.Empty(t, units)

	assert.ErrorIs(t, c.DeleteProvider(p.Name()), ErrNotFound)
}

func TestMeta(t *testing.T) {
	c := openCatalog(t)

	v, err := c.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, c.SetMeta("schema_version", "1"))
	require.NoError(t, c.SetMeta("schema_version", "2"))

	v, err = c.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}
