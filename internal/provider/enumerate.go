package provider

import (
	"io/fs"
	"path/filepath"
	"sort"
)

// enumerate walks the provider's directories and returns the file
// inventory sorted by path. Directories that simply do not exist are
// skipped; any other trouble ends up in the problem list.
func (p *Provider) enumerate() ([]*ContentFile, []error) {
	var files []*ContentFile
	var problems []error
	seen := make(map[string]bool)
	for _, dir := range p.contentDirs() {
		if !isDir(dir) {
			continue
		}
		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				problems = append(problems, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, newContentFile(path))
			}
			return nil
		})
		if walkErr != nil {
			problems = append(problems, walkErr)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path() < files[j].Path()
	})
	return files, problems
}

// contentDirs lists the directories enumerate visits. With a declared
// root everything lives under it, so one walk covers the whole tree.
func (p *Provider) contentDirs() []string {
	d := p.dirs
	if d.root != "" {
		return []string{d.root}
	}
	var dirs []string
	for _, dir := range []string{d.units, d.jobs, d.whitelists, d.data, d.bin, d.locale} {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
