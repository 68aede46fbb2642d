// Package provider loads trees of test definitions. A provider is a
// named, namespaced directory layout holding unit definition files,
// legacy whitelists, data files and executables; this package finds
// those files, classifies them and turns the loadable ones into typed
// units while keeping per-file failures contained.
package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"provkit/internal/rfc822"
	"provkit/internal/unit"
	"provkit/internal/whitelist"
)

// dirSet resolves the definition's directory layout once. Empty
// entries mean the provider has no such directory.
type dirSet struct {
	root       string
	units      string
	jobs       string
	whitelists string
	data       string
	bin        string
	locale     string
	build      string
	buildBin   string
	buildMo    string
	po         string
	src        string
}

func newDirSet(def Definition) dirSet {
	root := def.Location
	d := dirSet{
		root:       root,
		units:      def.EffectiveUnitsDir(),
		jobs:       def.EffectiveJobsDir(),
		whitelists: def.EffectiveWhitelistsDir(),
		data:       def.EffectiveDataDir(),
		bin:        def.EffectiveBinDir(),
		locale:     def.EffectiveLocaleDir(),
	}
	if root != "" {
		d.build = filepath.Join(root, "build")
		d.buildBin = filepath.Join(d.build, "bin")
		d.buildMo = filepath.Join(d.build, "mo")
		d.po = filepath.Join(root, "po")
		d.src = filepath.Join(root, "src")
	}
	return d
}

// Provider gives a name, a namespace and a version to one tree of
// test definitions and loads its content on demand.
type Provider struct {
	def        Definition
	secure     bool
	logger     *zap.Logger
	registry   *unit.Registry
	dirs       dirSet
	classifier *classifier
	content    *contentLoader

	execNames  map[string]bool
	execLoaded bool
}

// Option customizes provider construction.
type Option func(*Provider)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithRegistry swaps the unit registry, letting callers add unit
// kinds beyond the built-in ones.
func WithRegistry(r *unit.Registry) Option {
	return func(p *Provider) { p.registry = r }
}

// WithSecure marks providers found in system-wide locations.
func WithSecure(secure bool) Option {
	return func(p *Provider) { p.secure = secure }
}

// New builds a provider from a definition. The definition is
// validated here, so a returned provider always has a sound identity
// and absolute directories.
func New(def Definition, opts ...Option) (*Provider, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	p := &Provider{
		def:    def,
		logger: zap.NewNop(),
		dirs:   newDirSet(def),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		r := unit.NewRegistry()
		unit.RegisterBuiltin(r)
		p.registry = r
	}
	p.classifier = newClassifier(p)
	p.content = newContentLoader(p)
	return p, nil
}

func (p *Provider) Definition() Definition { return p.def }

func (p *Provider) Name() string { return p.def.Name }

// Namespace is the part of the name before the colon. Partial unit
// ids get qualified with it.
func (p *Provider) Namespace() string { return p.def.Namespace() }

func (p *Provider) Version() string { return p.def.Version }

func (p *Provider) Description() string { return p.def.Description }

func (p *Provider) Secure() bool { return p.secure }

func (p *Provider) String() string {
	return fmt.Sprintf("%s, version %s", p.Name(), p.Version())
}

// Load reads all provider content, replacing whatever a previous
// load produced. The returned problems stay visible via Problems.
func (p *Provider) Load(opts LoadOptions) []error {
	p.content.load(opts)
	return p.content.problems
}

func (p *Provider) IsLoaded() bool { return p.content.loaded }

func (p *Provider) ensureLoaded() {
	if !p.content.loaded {
		p.content.load(DefaultLoadOptions())
	}
}

// Units returns every loaded unit, virtual ones included.
func (p *Provider) Units() []unit.Unit {
	p.ensureLoaded()
	return p.content.units
}

func (p *Provider) WhiteLists() []*whitelist.WhiteList {
	p.ensureLoaded()
	return p.content.whitelists
}

// Problems returns everything that went wrong during the load, one
// entry per failed file or inaccessible directory.
func (p *Provider) Problems() []error {
	p.ensureLoaded()
	return p.content.problems
}

// UnitsByID returns the units claiming the given qualified id.
func (p *Provider) UnitsByID(id string) []unit.Unit {
	p.ensureLoaded()
	return p.content.idMap[id]
}

// UnitsForPath returns the units rooted in the given file.
func (p *Provider) UnitsForPath(path string) []unit.Unit {
	p.ensureLoaded()
	return p.content.pathMap[path]
}

func (p *Provider) Jobs() []*unit.Job {
	p.ensureLoaded()
	var jobs []*unit.Job
	for _, u := range p.content.units {
		if j, ok := u.(*unit.Job); ok {
			jobs = append(jobs, j)
		}
	}
	return jobs
}

func (p *Provider) Categories() []*unit.Category {
	p.ensureLoaded()
	var cats []*unit.Category
	for _, u := range p.content.units {
		if c, ok := u.(*unit.Category); ok {
			cats = append(cats, c)
		}
	}
	return cats
}

func (p *Provider) TestPlans() []*unit.TestPlan {
	p.ensureLoaded()
	var plans []*unit.TestPlan
	for _, u := range p.content.units {
		if tp, ok := u.(*unit.TestPlan); ok {
			plans = append(plans, tp)
		}
	}
	return plans
}

func (p *Provider) FileUnits() []*unit.File {
	p.ensureLoaded()
	var files []*unit.File
	for _, u := range p.content.units {
		if f, ok := u.(*unit.File); ok {
			files = append(files, f)
		}
	}
	return files
}

// Classify attributes one path to the provider.
func (p *Provider) Classify(path string) (Classification, error) {
	return p.classifier.classify(path)
}

// Executables lists the provider's executable programs sorted by
// path. Built executables count only when the source tree's
// EXECUTABLES hint names them, and never shadow the bin dir.
func (p *Provider) Executables() []string {
	var out []string
	seen := make(map[string]bool)
	for _, dir := range []string{p.dirs.bin, p.dirs.buildBin} {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if seen[name] {
				continue
			}
			if dir == p.dirs.buildBin && !p.executableNames()[name] {
				continue
			}
			path := filepath.Join(dir, name)
			if !isExecutable(path) {
				continue
			}
			seen[name] = true
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// executableNames reads the source tree's EXECUTABLES hint once. It
// names the programs a build is expected to produce; no hint means
// no built executables are recognized.
func (p *Provider) executableNames() map[string]bool {
	if !p.execLoaded {
		p.execLoaded = true
		p.execNames = make(map[string]bool)
		if p.dirs.src != "" {
			if data, err := os.ReadFile(filepath.Join(p.dirs.src, "EXECUTABLES")); err == nil {
				for _, line := range strings.Split(string(data), "\n") {
					if line = strings.TrimSpace(line); line != "" {
						p.execNames[line] = true
					}
				}
			}
		}
	}
	return p.execNames
}

// allDirs lists every declared directory, root first, for the
// catch-all classification rule.
func (p *Provider) allDirs() []string {
	d := p.dirs
	var dirs []string
	for _, dir := range []string{d.root, d.units, d.jobs, d.whitelists, d.data, d.bin, d.locale, d.build, d.po, d.src} {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// makeFileUnit builds the virtual unit standing for one classified
// file.
func (p *Provider) makeFileUnit(path string, c Classification) (unit.Unit, error) {
	origin := rfc822.Origin{Source: rfc822.FileTextSource{Filename: path}}
	fields := []rfc822.Field{
		{Name: unit.FieldUnit, Value: unit.KindFile},
		{Name: unit.FieldPath, Value: path},
		{Name: unit.FieldRole, Value: string(c.Role)},
	}
	if c.Base != "" {
		fields = append(fields, rfc822.Field{Name: unit.FieldBase, Value: c.Base})
	}
	return p.registry.Make(unit.KindFile, unit.Params{
		Record:   rfc822.NewRecord(origin, fields...),
		Origin:   origin,
		Provider: p,
		Virtual:  true,
	})
}
