package unit

import "sort"

// MakeFunc constructs a unit of one kind.
type MakeFunc func(p Params) (Unit, error)

// Registry maps kind names to constructors. Callers own their
// registry; there is no ambient global one.
type Registry struct {
	kinds map[string]MakeFunc
}

func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]MakeFunc)}
}

func (r *Registry) Register(kind string, fn MakeFunc) {
	r.kinds[kind] = fn
}

// Make builds a unit of the named kind. An unregistered kind is an
// *UnknownKindError.
func (r *Registry) Make(kind string, p Params) (Unit, error) {
	fn, ok := r.kinds[kind]
	if !ok {
		return nil, &UnknownKindError{Kind: kind}
	}
	return fn(p)
}

// Kinds lists the registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.kinds))
	for kind := range r.kinds {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}

// RegisterBuiltin installs the four built-in kinds.
func RegisterBuiltin(r *Registry) {
	r.Register(KindJob, func(p Params) (Unit, error) { return NewJob(p) })
	r.Register(KindCategory, func(p Params) (Unit, error) { return NewCategory(p) })
	r.Register(KindTestPlan, func(p Params) (Unit, error) { return NewTestPlan(p) })
	r.Register(KindFile, func(p Params) (Unit, error) { return NewFile(p) })
}
