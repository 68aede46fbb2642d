package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition(location string) Definition {
	return Definition{
		Name:     "2014.com.example:tests",
		Version:  "1.0",
		Location: location,
	}
}

func TestDefinitionValidate(t *testing.T) {
	tmp := t.TempDir()

	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(d *Definition) {},
		},
		{
			name:   "no location",
			mutate: func(d *Definition) { d.Location = "" },
		},
		{
			name:    "missing name",
			mutate:  func(d *Definition) { d.Name = "" },
			wantErr: `provider definition field "name": must be set`,
		},
		{
			name:    "malformed name",
			mutate:  func(d *Definition) { d.Name = "example" },
			wantErr: `provider definition field "name": must look like: 2013.org.example:name`,
		},
		{
			name:    "name without namespace",
			mutate:  func(d *Definition) { d.Name = "2014.example:tests" },
			wantErr: `provider definition field "name": must look like: 2013.org.example:name`,
		},
		{
			name:    "missing version",
			mutate:  func(d *Definition) { d.Version = "" },
			wantErr: `provider definition field "version": must be set`,
		},
		{
			name:    "malformed version",
			mutate:  func(d *Definition) { d.Version = "1.0beta" },
			wantErr: `provider definition field "version": must be a sequence of dot-separated numbers`,
		},
		{
			name:    "relative location",
			mutate:  func(d *Definition) { d.Location = "provider" },
			wantErr: `provider definition field "location": must be an absolute pathname`,
		},
		{
			name:    "location does not exist",
			mutate:  func(d *Definition) { d.Location = filepath.Join(tmp, "missing") },
			wantErr: `provider definition field "location": must point to an existing directory`,
		},
		{
			name:    "units dir does not exist",
			mutate:  func(d *Definition) { d.UnitsDir = filepath.Join(tmp, "no-units") },
			wantErr: `provider definition field "units_dir": must point to an existing directory`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition(tmp)
			tt.mutate(&def)
			err := def.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestDefinitionNamespace(t *testing.T) {
	def := validDefinition("")
	assert.Equal(t, "2014.com.example", def.Namespace())
}

func TestDefinitionEffectiveDirs(t *testing.T) {
	t.Run("conventional subdirectories", func(t *testing.T) {
		tmp := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(tmp, "units"), 0o755))
		require.NoError(t, os.Mkdir(filepath.Join(tmp, "data"), 0o755))

		def := validDefinition(tmp)
		assert.Equal(t, filepath.Join(tmp, "units"), def.EffectiveUnitsDir())
		assert.Equal(t, filepath.Join(tmp, "data"), def.EffectiveDataDir())
		assert.Equal(t, "", def.EffectiveJobsDir())
		assert.Equal(t, "", def.EffectiveBinDir())
	})

	t.Run("explicit dir wins", func(t *testing.T) {
		tmp := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(tmp, "units"), 0o755))
		elsewhere := t.TempDir()

		def := validDefinition(tmp)
		def.UnitsDir = elsewhere
		assert.Equal(t, elsewhere, def.EffectiveUnitsDir())
	})

	t.Run("no location no dirs", func(t *testing.T) {
		def := validDefinition("")
		assert.Equal(t, "", def.EffectiveUnitsDir())
		assert.Equal(t, "", def.EffectiveWhitelistsDir())
	})
}

func TestLoadDefinition(t *testing.T) {
	tmp := t.TempDir()
	location := filepath.Join(tmp, "provider")
	require.NoError(t, os.Mkdir(location, 0o755))

	t.Run("well formed", func(t *testing.T) {
		path := filepath.Join(tmp, "example.provider")
		content := "name: 2014.com.example:tests\n" +
			"version: \"1.2\"\n" +
			"description: Example tests\n" +
			"location: " + location + "\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		def, err := LoadDefinition(path)
		require.NoError(t, err)
		assert.Equal(t, "2014.com.example:tests", def.Name)
		assert.Equal(t, "1.2", def.Version)
		assert.Equal(t, "Example tests", def.Description)
		assert.Equal(t, location, def.Location)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDefinition(filepath.Join(tmp, "nope.provider"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(tmp, "broken.provider")
		require.NoError(t, os.WriteFile(path, []byte("name: [\n"), 0o644))
		_, err := LoadDefinition(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse "+path)
	})

	t.Run("invalid content", func(t *testing.T) {
		path := filepath.Join(tmp, "invalid.provider")
		require.NoError(t, os.WriteFile(path, []byte("name: whatever\nversion: \"1.0\"\n"), 0o644))
		_, err := LoadDefinition(path)
		require.Error(t, err)
		var derr *InvalidDefinitionError
		assert.ErrorAs(t, err, &derr)
	})
}
