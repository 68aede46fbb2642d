package provider

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"provkit/internal/unit"
)

var (
	legalNames = map[string]bool{
		"COPYING":        true,
		"COPYING.LESSER": true,
		"LICENSE":        true,
	}
	docNames = map[string]bool{
		"README":     true,
		"README.md":  true,
		"README.rst": true,
		"README.txt": true,
	}
	unitSourceSuffixes = []string{".txt", ".txt.in", ".pxu"}
)

// ClassificationError means a path cannot be attributed to the
// provider at all.
type ClassificationError struct {
	Path string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unable to classify %q", e.Path)
}

// Classification describes what part a file plays inside a provider
// tree. Base is the directory the path was matched against, usable to
// relocate the provider. A nil Loader marks files that are
// acknowledged but never read.
type Classification struct {
	Role   unit.FileRole
	Base   string
	Loader Loader
}

type classifyFunc func(path string) (Classification, bool)

// classifier is the ordered rule chain built once per provider from
// the directories it declares. The first matching rule wins.
type classifier struct {
	rules []classifyFunc
}

func newClassifier(p *Provider) *classifier {
	d := p.dirs
	units := &unitLoader{provider: p}
	lists := &whitelistLoader{provider: p}
	files := &fileLoader{provider: p}

	var c classifier
	if d.jobs != "" {
		c.add(suffixRule(d.jobs, unitSourceSuffixes, unit.RoleUnitSource, d.jobs, units))
	}
	if d.units != "" {
		c.add(suffixRule(d.units, unitSourceSuffixes, unit.RoleUnitSource, d.units, units))
	}
	if d.whitelists != "" {
		c.add(suffixRule(d.whitelists, []string{".whitelist"}, unit.RoleLegacyWhitelist, d.whitelists, lists))
	}
	if d.data != "" {
		c.add(dirRule(d.data, unit.RoleData, d.data, files))
	}
	if d.bin != "" {
		c.add(execRule(d.bin, nil, files))
	}
	if d.buildBin != "" {
		c.add(execRule(d.buildBin, p.executableNames, files))
	}
	if d.buildMo != "" {
		c.add(suffixRule(d.buildMo, []string{".mo"}, unit.RoleI18N, d.buildMo, files))
	}
	if d.build != "" {
		c.add(dirRule(d.build, unit.RoleBuild, d.build, nil))
	}
	if d.po != "" {
		c.add(poRule(d.po, d.root))
	}
	if d.src != "" {
		c.add(dirRule(d.src, unit.RoleSrc, d.root, nil))
	}
	if d.root != "" {
		c.add(nameSetRule(legalNames, unit.RoleLegal, d.root))
		c.add(nameSetRule(docNames, unit.RoleDoc, d.root))
		c.add(manageRule(d.root))
		c.add(vcsRule(d.root))
	}
	// always last
	c.add(unknownRule(p.allDirs()))
	return &c
}

func (c *classifier) add(fn classifyFunc) {
	c.rules = append(c.rules, fn)
}

func (c *classifier) classify(path string) (Classification, error) {
	for _, rule := range c.rules {
		if cls, ok := rule(path); ok {
			return cls, nil
		}
	}
	return Classification{}, &ClassificationError{Path: path}
}

// under reports whether path sits below dir.
func under(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func suffixRule(dir string, suffixes []string, role unit.FileRole, base string, loader Loader) classifyFunc {
	return func(path string) (Classification, bool) {
		if !under(path, dir) {
			return Classification{}, false
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(path, suffix) {
				return Classification{Role: role, Base: base, Loader: loader}, true
			}
		}
		return Classification{}, false
	}
}

func dirRule(dir string, role unit.FileRole, base string, loader Loader) classifyFunc {
	return func(path string) (Classification, bool) {
		if !under(path, dir) {
			return Classification{}, false
		}
		return Classification{Role: role, Base: base, Loader: loader}, true
	}
}

// execRule classifies executable files as scripts or binaries by
// their first two bytes. When names is given only executables listed
// in it match; that keeps stray build output unclassified.
func execRule(dir string, names func() map[string]bool, loader Loader) classifyFunc {
	return func(path string) (Classification, bool) {
		if !under(path, dir) {
			return Classification{}, false
		}
		if names != nil && !names()[filepath.Base(path)] {
			return Classification{}, false
		}
		if !isExecutable(path) {
			return Classification{}, false
		}
		role := unit.RoleBinary
		if hasShebang(path) {
			role = unit.RoleScript
		}
		return Classification{Role: role, Base: dir, Loader: loader}, true
	}
}

// poRule matches translation sources directly inside the po dir.
func poRule(po, base string) classifyFunc {
	return func(path string) (Classification, bool) {
		if filepath.Dir(path) != po {
			return Classification{}, false
		}
		ext := filepath.Ext(path)
		if ext == ".po" || ext == ".pot" || filepath.Base(path) == "POTFILES.in" {
			return Classification{Role: unit.RoleSrc, Base: base}, true
		}
		return Classification{}, false
	}
}

func nameSetRule(names map[string]bool, role unit.FileRole, base string) classifyFunc {
	return func(path string) (Classification, bool) {
		if !names[filepath.Base(path)] {
			return Classification{}, false
		}
		return Classification{Role: role, Base: base}, true
	}
}

func manageRule(root string) classifyFunc {
	manage := filepath.Join(root, "manage.py")
	return func(path string) (Classification, bool) {
		if path != manage {
			return Classification{}, false
		}
		return Classification{Role: unit.RoleManage, Base: root}, true
	}
}

// vcsRule matches version control metadata: ignore files anywhere and
// anything under a .git or .bzr segment between the root and the file.
func vcsRule(root string) classifyFunc {
	return func(path string) (Classification, bool) {
		switch filepath.Base(path) {
		case ".gitignore", ".bzrignore":
			return Classification{Role: unit.RoleVCS, Base: root}, true
		}
		for head := filepath.Dir(path); head != root; head = filepath.Dir(head) {
			switch filepath.Base(head) {
			case ".git", ".bzr":
				return Classification{Role: unit.RoleVCS, Base: root}, true
			}
			if head == filepath.Dir(head) {
				break
			}
		}
		return Classification{}, false
	}
}

// unknownRule claims any leftover file inside a declared directory.
// Anything outside all of them stays unclassifiable.
func unknownRule(dirs []string) classifyFunc {
	return func(path string) (Classification, bool) {
		for _, dir := range dirs {
			if under(path, dir) {
				return Classification{Role: unit.RoleUnknown, Base: dir}, true
			}
		}
		return Classification{}, false
	}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

func hasShebang(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var head [2]byte
	if _, err := io.ReadFull(f, head[:]); err != nil {
		return false
	}
	return head[0] == '#' && head[1] == '!'
}
