package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSearchPath returns the conventional locations scanned for
// provider definitions when the caller gives none.
func DefaultSearchPath() []string {
	return []string{
		"/usr/local/share/provkit/providers",
		"/usr/share/provkit/providers",
	}
}

// Scan discovers providers by reading every definition file in the
// given directories. Directories that do not exist are skipped; a
// broken definition is reported as a problem without hiding the
// remaining providers. The result is sorted by provider name.
func Scan(searchPath []string, opts ...Option) ([]*Provider, []error) {
	var providers []*Provider
	var problems []error
	for _, dir := range searchPath {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				problems = append(problems, err)
			}
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), DefinitionExtension) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			def, err := LoadDefinition(path)
			if err != nil {
				problems = append(problems, err)
				continue
			}
			p, err := New(def, opts...)
			if err != nil {
				problems = append(problems, fmt.Errorf("%s: %w", path, err))
				continue
			}
			providers = append(providers, p)
		}
	}
	sort.Slice(providers, func(i, j int) bool {
		return providers[i].Name() < providers[j].Name()
	})
	return providers, problems
}
