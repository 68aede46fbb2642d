package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"provkit/internal/rfc822"
	"provkit/internal/unit"
	"provkit/internal/whitelist"
)

// ContentFile is one enumerated provider file. Its text is read on
// first use and cached, outcome included, so a file is touched at
// most once per load.
type ContentFile struct {
	path string
	text string
	err  error
	read bool
}

func newContentFile(path string) *ContentFile {
	return &ContentFile{path: path}
}

func (f *ContentFile) Path() string {
	return f.path
}

func (f *ContentFile) Text() (string, error) {
	if !f.read {
		f.read = true
		data, err := os.ReadFile(f.path)
		if err != nil {
			f.err = err
		} else {
			f.text = string(data)
		}
	}
	return f.text, f.err
}

// LoadOptions control how much scrutiny units get while loading.
type LoadOptions struct {
	// Validate runs each unit's definition validator; a failure
	// rejects the whole file.
	Validate bool
	// Strict additionally reports fields that are merely useless.
	Strict bool
	// Check runs live checks and rejects the file on any
	// error-severity issue.
	Check bool
}

// DefaultLoadOptions is what plain loads use.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Validate: true}
}

// Loader reads one classified file into units and selection lists.
// Inspect interprets the file eagerly and returns an opaque result;
// the discover methods are projections of that result and are only
// called after Inspect succeeds, so they cannot fail.
type Loader interface {
	Inspect(f *ContentFile, opts LoadOptions) (any, error)
	DiscoverUnits(result any, f *ContentFile) []unit.Unit
	DiscoverWhiteLists(result any, f *ContentFile) []*whitelist.WhiteList
}

// UnitSynthesizer is implemented by loaders that invent units beside
// the discovered ones, such as the per-file unit or the test plan
// standing in for a legacy whitelist. Kept apart from Loader so the
// synthetic channel can be dropped without touching discovery.
type UnitSynthesizer interface {
	SynthesizeUnits(f *ContentFile, c Classification) ([]unit.Unit, error)
}

// LoadError attributes a loading failure to the file that caused it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// CheckError is an error-severity issue reported by a live check.
type CheckError struct {
	Issue unit.Issue
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("problem in unit definition: %s", e.Issue)
}

// unitLoader parses record files into typed units and derives a
// selection list from each test plan found.
type unitLoader struct {
	provider *Provider
}

type unitInspection struct {
	units      []unit.Unit
	whitelists []*whitelist.WhiteList
}

func (l *unitLoader) Inspect(f *ContentFile, opts LoadOptions) (any, error) {
	p := l.provider
	p.logger.Debug("loading units", zap.String("file", f.Path()))
	text, err := f.Text()
	if err != nil {
		return nil, err
	}
	records, err := rfc822.ParseString(text, rfc822.FileTextSource{Filename: f.Path()})
	if err != nil {
		return nil, err
	}
	res := &unitInspection{}
	for _, rec := range records {
		u, err := p.registry.Make(unit.KindOf(rec), unit.Params{Record: rec, Provider: p})
		if err != nil {
			return nil, err
		}
		if opts.Check {
			for _, issue := range u.Check() {
				if issue.Severity == unit.SeverityError {
					return nil, &CheckError{Issue: issue}
				}
				p.logger.Debug("check issue", zap.String("issue", issue.String()))
			}
		}
		if opts.Validate {
			if err := u.Validate(opts.Strict); err != nil {
				return nil, err
			}
		}
		if tp, ok := u.(*unit.TestPlan); ok {
			w, err := l.deriveWhiteList(tp)
			if err != nil {
				return nil, err
			}
			res.whitelists = append(res.whitelists, w)
		}
		res.units = append(res.units, u)
		p.logger.Debug("loaded unit", zap.String("unit", u.String()))
	}
	return res, nil
}

// deriveWhiteList turns a test plan's include patterns into a
// selection list named after the plan.
func (l *unitLoader) deriveWhiteList(tp *unit.TestPlan) (*whitelist.WhiteList, error) {
	return whitelist.FromString(tp.Include(), whitelist.Options{
		Name:              tp.PartialID(),
		Origin:            tp.Origin(),
		ImplicitNamespace: l.provider.Namespace(),
	})
}

func (l *unitLoader) DiscoverUnits(result any, f *ContentFile) []unit.Unit {
	if res, ok := result.(*unitInspection); ok {
		return res.units
	}
	return nil
}

func (l *unitLoader) DiscoverWhiteLists(result any, f *ContentFile) []*whitelist.WhiteList {
	if res, ok := result.(*unitInspection); ok {
		return res.whitelists
	}
	return nil
}

func (l *unitLoader) SynthesizeUnits(f *ContentFile, c Classification) ([]unit.Unit, error) {
	u, err := l.provider.makeFileUnit(f.Path(), c)
	if err != nil {
		return nil, err
	}
	return []unit.Unit{u}, nil
}

// whitelistLoader reads legacy whitelist files. Besides the selection
// list itself it synthesizes an equivalent virtual test plan so newer
// tooling sees only one kind of thing.
type whitelistLoader struct {
	provider *Provider
}

func (l *whitelistLoader) Inspect(f *ContentFile, opts LoadOptions) (any, error) {
	text, err := f.Text()
	if err != nil {
		return nil, err
	}
	w, err := whitelist.FromString(text, whitelist.Options{
		Name:              whitelistName(f.Path()),
		Origin:            wholeFileOrigin(f.Path(), text),
		ImplicitNamespace: l.provider.Namespace(),
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (l *whitelistLoader) DiscoverUnits(result any, f *ContentFile) []unit.Unit {
	return nil
}

func (l *whitelistLoader) DiscoverWhiteLists(result any, f *ContentFile) []*whitelist.WhiteList {
	if w, ok := result.(*whitelist.WhiteList); ok {
		return []*whitelist.WhiteList{w}
	}
	return nil
}

func (l *whitelistLoader) SynthesizeUnits(f *ContentFile, c Classification) ([]unit.Unit, error) {
	p := l.provider
	fu, err := p.makeFileUnit(f.Path(), c)
	if err != nil {
		return nil, err
	}
	text, err := f.Text()
	if err != nil {
		return nil, err
	}
	name := whitelistName(f.Path())
	origin := wholeFileOrigin(f.Path(), text)
	rec := rfc822.NewRecord(origin,
		rfc822.Field{Name: unit.FieldUnit, Value: unit.KindTestPlan},
		rfc822.Field{Name: unit.FieldID, Value: name},
		rfc822.Field{Name: unit.FieldName, Value: name},
		rfc822.Field{Name: unit.FieldInclude, Value: text},
	)
	tp, err := p.registry.Make(unit.KindTestPlan, unit.Params{
		Record:   rec,
		Origin:   origin,
		Provider: p,
		Virtual:  true,
	})
	if err != nil {
		return nil, err
	}
	return []unit.Unit{fu, tp}, nil
}

// fileLoader acknowledges a file without reading it.
type fileLoader struct {
	provider *Provider
}

func (l *fileLoader) Inspect(f *ContentFile, opts LoadOptions) (any, error) {
	return nil, nil
}

func (l *fileLoader) DiscoverUnits(result any, f *ContentFile) []unit.Unit {
	return nil
}

func (l *fileLoader) DiscoverWhiteLists(result any, f *ContentFile) []*whitelist.WhiteList {
	return nil
}

func (l *fileLoader) SynthesizeUnits(f *ContentFile, c Classification) ([]unit.Unit, error) {
	u, err := l.provider.makeFileUnit(f.Path(), c)
	if err != nil {
		return nil, err
	}
	return []unit.Unit{u}, nil
}

func whitelistName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), whitelist.Extension)
}

func wholeFileOrigin(path, text string) rfc822.Origin {
	return rfc822.Origin{
		Source:    rfc822.FileTextSource{Filename: path},
		LineStart: 1,
		LineEnd:   whitelist.CountLines(text),
	}
}
