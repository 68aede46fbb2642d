package provider

import (
	"go.uber.org/zap"

	"provkit/internal/rfc822"
	"provkit/internal/unit"
	"provkit/internal/whitelist"
)

// contentLoader aggregates every loadable file of one provider into
// units, selection lists and a problem list. One file failing never
// stops the others; the failure is recorded and the load moves on.
type contentLoader struct {
	provider   *Provider
	loaded     bool
	units      []unit.Unit
	whitelists []*whitelist.WhiteList
	problems   []error
	idMap      map[string][]unit.Unit
	pathMap    map[string][]unit.Unit
}

func newContentLoader(p *Provider) *contentLoader {
	return &contentLoader{provider: p}
}

// load rebuilds all derived state from scratch, so reloading after
// on-disk edits cannot leave stale units behind.
func (l *contentLoader) load(opts LoadOptions) {
	p := l.provider
	l.units = nil
	l.whitelists = nil
	l.problems = nil
	l.idMap = make(map[string][]unit.Unit)
	l.pathMap = make(map[string][]unit.Unit)

	files, problems := p.enumerate()
	l.problems = append(l.problems, problems...)
	for _, f := range files {
		l.loadFile(f, opts)
	}
	l.loaded = true
	p.logger.Debug("provider content loaded",
		zap.String("provider", p.Name()),
		zap.Int("files", len(files)),
		zap.Int("units", len(l.units)),
		zap.Int("whitelists", len(l.whitelists)),
		zap.Int("problems", len(l.problems)))
}

func (l *contentLoader) loadFile(f *ContentFile, opts LoadOptions) {
	p := l.provider
	cls, err := p.Classify(f.Path())
	if err != nil {
		l.problems = append(l.problems, err)
		return
	}
	if cls.Loader == nil {
		return
	}
	result, err := cls.Loader.Inspect(f, opts)
	if err != nil {
		l.problems = append(l.problems, &LoadError{Path: f.Path(), Err: err})
		p.logger.Warn("cannot load file", zap.String("file", f.Path()), zap.Error(err))
		return
	}
	units := cls.Loader.DiscoverUnits(result, f)
	if s, ok := cls.Loader.(UnitSynthesizer); ok {
		extra, err := s.SynthesizeUnits(f, cls)
		if err != nil {
			l.problems = append(l.problems, &LoadError{Path: f.Path(), Err: err})
			return
		}
		units = append(units, extra...)
	}
	for _, u := range units {
		l.addUnit(u)
	}
	l.whitelists = append(l.whitelists, cls.Loader.DiscoverWhiteLists(result, f)...)
}

func (l *contentLoader) addUnit(u unit.Unit) {
	l.units = append(l.units, u)
	if id := u.ID(); id != "" {
		l.idMap[id] = append(l.idMap[id], u)
	}
	if src, ok := u.Origin().Source.(rfc822.FileTextSource); ok {
		l.pathMap[src.Filename] = append(l.pathMap[src.Filename], u)
	}
}
