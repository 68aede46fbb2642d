package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefinitionExtension is the file suffix provider definitions are
// stored under on the search path.
const DefinitionExtension = ".provider"

var (
	nameRe    = regexp.MustCompile(`^[0-9]{4}\.[a-z][a-z0-9-]*(\.[a-z][a-z0-9-]*)+:[a-z][a-z0-9-]*$`)
	versionRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)
)

// Definition is the declarative part of a provider, usually read from
// a .provider file. Directory fields are optional; unset ones fall
// back to conventional subdirectories of Location when those exist.
type Definition struct {
	Name          string `yaml:"name"`
	Version       string `yaml:"version"`
	Description   string `yaml:"description"`
	Location      string `yaml:"location"`
	UnitsDir      string `yaml:"units_dir"`
	JobsDir       string `yaml:"jobs_dir"`
	WhitelistsDir string `yaml:"whitelists_dir"`
	DataDir       string `yaml:"data_dir"`
	BinDir        string `yaml:"bin_dir"`
	LocaleDir     string `yaml:"locale_dir"`
	GettextDomain string `yaml:"gettext_domain"`
}

// InvalidDefinitionError points at the definition field that is
// unacceptable.
type InvalidDefinitionError struct {
	Field  string
	Reason string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("provider definition field %q: %s", e.Field, e.Reason)
}

// Validate checks the definition for problems that would make the
// provider unusable.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return &InvalidDefinitionError{Field: "name", Reason: "must be set"}
	}
	if !nameRe.MatchString(d.Name) {
		return &InvalidDefinitionError{Field: "name", Reason: "must look like: 2013.org.example:name"}
	}
	if d.Version == "" {
		return &InvalidDefinitionError{Field: "version", Reason: "must be set"}
	}
	if !versionRe.MatchString(d.Version) {
		return &InvalidDefinitionError{Field: "version", Reason: "must be a sequence of dot-separated numbers"}
	}
	dirs := []struct {
		field string
		value string
	}{
		{"location", d.Location},
		{"units_dir", d.UnitsDir},
		{"jobs_dir", d.JobsDir},
		{"whitelists_dir", d.WhitelistsDir},
		{"data_dir", d.DataDir},
		{"bin_dir", d.BinDir},
		{"locale_dir", d.LocaleDir},
	}
	for _, dir := range dirs {
		if dir.value == "" {
			continue
		}
		if !filepath.IsAbs(dir.value) {
			return &InvalidDefinitionError{Field: dir.field, Reason: "must be an absolute pathname"}
		}
		if !isDir(dir.value) {
			return &InvalidDefinitionError{Field: dir.field, Reason: "must point to an existing directory"}
		}
	}
	return nil
}

// Namespace is the name up to the colon. It prefixes the partial
// identifier of every unit the provider owns.
func (d *Definition) Namespace() string {
	ns, _, _ := strings.Cut(d.Name, ":")
	return ns
}

func (d *Definition) EffectiveUnitsDir() string {
	return d.effectiveDir(d.UnitsDir, "units")
}

func (d *Definition) EffectiveJobsDir() string {
	return d.effectiveDir(d.JobsDir, "jobs")
}

func (d *Definition) EffectiveWhitelistsDir() string {
	return d.effectiveDir(d.WhitelistsDir, "whitelists")
}

func (d *Definition) EffectiveDataDir() string {
	return d.effectiveDir(d.DataDir, "data")
}

func (d *Definition) EffectiveBinDir() string {
	return d.effectiveDir(d.BinDir, "bin")
}

func (d *Definition) EffectiveLocaleDir() string {
	return d.effectiveDir(d.LocaleDir, "locale")
}

func (d *Definition) effectiveDir(explicit, conventional string) string {
	if explicit != "" {
		return explicit
	}
	if d.Location != "" {
		candidate := filepath.Join(d.Location, conventional)
		if isDir(candidate) {
			return candidate
		}
	}
	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// LoadDefinition reads, decodes and validates one .provider file.
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}
