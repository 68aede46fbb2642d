package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provkit/internal/unit"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeExec(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	require.NoError(t, os.Chmod(path, 0o755))
}

func newTestProvider(t *testing.T, def Definition, opts ...Option) *Provider {
	t.Helper()
	p, err := New(def, opts...)
	require.NoError(t, err)
	return p
}

// scaffoldTree builds a full provider tree exercising every
// classification rule.
func scaffoldTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "units", "smoke.pxu"), "id: smoke\nplugin: shell\ncommand: true\n")
	writeFile(t, filepath.Join(root, "units", "nested", "extra.txt"), "id: extra\n")
	writeFile(t, filepath.Join(root, "units", "notes.rst"), "notes\n")
	writeFile(t, filepath.Join(root, "jobs", "legacy.txt.in"), "id: legacy\n")
	writeFile(t, filepath.Join(root, "whitelists", "default.whitelist"), "smoke\n")
	writeFile(t, filepath.Join(root, "whitelists", "readme.txt"), "not a whitelist\n")
	writeFile(t, filepath.Join(root, "data", "config.json"), "{}\n")
	writeExec(t, filepath.Join(root, "bin", "probe"), "#!/bin/sh\necho ok\n")
	writeExec(t, filepath.Join(root, "bin", "tool"), string([]byte{0x7f, 'E', 'L', 'F'}))
	writeFile(t, filepath.Join(root, "bin", "notes.txt"), "not executable\n")
	writeExec(t, filepath.Join(root, "build", "bin", "built"), string([]byte{0x7f, 'E', 'L', 'F'}))
	writeExec(t, filepath.Join(root, "build", "bin", "stray"), "#!/bin/sh\n")
	writeFile(t, filepath.Join(root, "build", "mo", "de.mo"), "mo\n")
	writeFile(t, filepath.Join(root, "build", "obj.o"), "obj\n")
	writeFile(t, filepath.Join(root, "po", "provider.pot"), "template\n")
	writeFile(t, filepath.Join(root, "po", "de.po"), "translation\n")
	writeFile(t, filepath.Join(root, "po", "POTFILES.in"), "src/main.c\n")
	writeFile(t, filepath.Join(root, "po", "other.txt"), "stray\n")
	writeFile(t, filepath.Join(root, "src", "main.c"), "int main() {}\n")
	writeFile(t, filepath.Join(root, "src", "EXECUTABLES"), "built\n")
	writeFile(t, filepath.Join(root, "COPYING"), "license\n")
	writeFile(t, filepath.Join(root, "README.md"), "readme\n")
	writeFile(t, filepath.Join(root, "manage.py"), "#!/usr/bin/env python3\n")
	writeFile(t, filepath.Join(root, ".gitignore"), "build/\n")
	writeFile(t, filepath.Join(root, ".git", "config"), "[core]\n")
	writeFile(t, filepath.Join(root, "random.bin"), "leftover\n")
	return root
}

func TestClassify(t *testing.T) {
	root := scaffoldTree(t)
	p := newTestProvider(t, validDefinition(root))

	tests := []struct {
		path  string
		role  unit.FileRole
		base  string
		loads bool
	}{
		{"units/smoke.pxu", unit.RoleUnitSource, filepath.Join(root, "units"), true},
		{"units/nested/extra.txt", unit.RoleUnitSource, filepath.Join(root, "units"), true},
		{"units/notes.rst", unit.RoleUnknown, root, false},
		{"jobs/legacy.txt.in", unit.RoleUnitSource, filepath.Join(root, "jobs"), true},
		{"whitelists/default.whitelist", unit.RoleLegacyWhitelist, filepath.Join(root, "whitelists"), true},
		{"whitelists/readme.txt", unit.RoleUnknown, root, false},
		{"data/config.json", unit.RoleData, filepath.Join(root, "data"), true},
		{"bin/probe", unit.RoleScript, filepath.Join(root, "bin"), true},
		{"bin/tool", unit.RoleBinary, filepath.Join(root, "bin"), true},
		{"bin/notes.txt", unit.RoleUnknown, root, false},
		{"build/bin/built", unit.RoleBinary, filepath.Join(root, "build", "bin"), true},
		{"build/bin/stray", unit.RoleBuild, filepath.Join(root, "build"), false},
		{"build/mo/de.mo", unit.RoleI18N, filepath.Join(root, "build", "mo"), true},
		{"build/obj.o", unit.RoleBuild, filepath.Join(root, "build"), false},
		{"po/provider.pot", unit.RoleSrc, root, false},
		{"po/de.po", unit.RoleSrc, root, false},
		{"po/POTFILES.in", unit.RoleSrc, root, false},
		{"po/other.txt", unit.RoleUnknown, root, false},
		{"src/main.c", unit.RoleSrc, root, false},
		{"src/EXECUTABLES", unit.RoleSrc, root, false},
		{"COPYING", unit.RoleLegal, root, false},
		{"README.md", unit.RoleDoc, root, false},
		{"manage.py", unit.RoleManage, root, false},
		{".gitignore", unit.RoleVCS, root, false},
		{".git/config", unit.RoleVCS, root, false},
		{"random.bin", unit.RoleUnknown, root, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			cls, err := p.Classify(filepath.Join(root, filepath.FromSlash(tt.path)))
			require.NoError(t, err)
			assert.Equal(t, tt.role, cls.Role)
			assert.Equal(t, tt.base, cls.Base)
			assert.Equal(t, tt.loads, cls.Loader != nil)
		})
	}
}

func TestClassifyOutsideProvider(t *testing.T) {
	root := scaffoldTree(t)
	p := newTestProvider(t, validDefinition(root))

	elsewhere := filepath.Join(t.TempDir(), "file.txt")
	_, err := p.Classify(elsewhere)
	require.Error(t, err)
	var cerr *ClassificationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, elsewhere, cerr.Path)
	assert.Contains(t, err.Error(), "unable to classify")
}

func TestClassifyWithoutLocation(t *testing.T) {
	unitsDir := t.TempDir()
	binDir := t.TempDir()
	writeFile(t, filepath.Join(unitsDir, "tests.txt"), "id: one\n")
	writeFile(t, filepath.Join(unitsDir, "COPYING"), "license\n")
	writeExec(t, filepath.Join(binDir, "probe"), "#!/bin/sh\n")

	def := Definition{
		Name:     "2014.com.example:split",
		Version:  "1.0",
		UnitsDir: unitsDir,
		BinDir:   binDir,
	}
	p := newTestProvider(t, def)

	cls, err := p.Classify(filepath.Join(unitsDir, "tests.txt"))
	require.NoError(t, err)
	assert.Equal(t, unit.RoleUnitSource, cls.Role)
	assert.Equal(t, unitsDir, cls.Base)

	cls, err = p.Classify(filepath.Join(binDir, "probe"))
	require.NoError(t, err)
	assert.Equal(t, unit.RoleScript, cls.Role)

	// license names are only special at a declared root
	cls, err = p.Classify(filepath.Join(unitsDir, "COPYING"))
	require.NoError(t, err)
	assert.Equal(t, unit.RoleUnknown, cls.Role)
	assert.Equal(t, unitsDir, cls.Base)
}

func TestClassifyBuiltExecutablesNeedHint(t *testing.T) {
	root := t.TempDir()
	writeExec(t, filepath.Join(root, "build", "bin", "orphan"), string([]byte{0x7f, 'E', 'L', 'F'}))
	p := newTestProvider(t, validDefinition(root))

	// without src/EXECUTABLES nothing under build/bin is a program
	cls, err := p.Classify(filepath.Join(root, "build", "bin", "orphan"))
	require.NoError(t, err)
	assert.Equal(t, unit.RoleBuild, cls.Role)
}

func TestUnder(t *testing.T) {
	assert.True(t, under("/base/dir/file", "/base/dir"))
	assert.True(t, under("/base/dir/sub/file", "/base/dir"))
	assert.False(t, under("/base/dir", "/base/dir"))
	assert.False(t, under("/base/dirother/file", "/base/dir"))
	assert.False(t, under("/base/file", "/base/dir"))
	assert.False(t, under("/other", "/base/dir"))
}

func TestHasShebang(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script")
	writeFile(t, script, "#!/bin/sh\n")
	binary := filepath.Join(dir, "binary")
	writeFile(t, binary, string([]byte{0x7f, 'E', 'L', 'F'}))
	short := filepath.Join(dir, "short")
	writeFile(t, short, "#")

	assert.True(t, hasShebang(script))
	assert.False(t, hasShebang(binary))
	assert.False(t, hasShebang(short))
	assert.False(t, hasShebang(filepath.Join(dir, "missing")))
}
