// Package unit defines the typed content units that provider files
// load into: jobs, categories, test plans and file references. Units
// are built from parsed records through a kind registry.
package unit

import (
	"fmt"
	"strings"

	"provkit/internal/rfc822"
)

// Kind names accepted in a record's unit field.
const (
	KindJob      = "job"
	KindCategory = "category"
	KindTestPlan = "test plan"
	KindFile     = "file"
)

// Record field names shared across unit kinds.
const (
	FieldUnit              = "unit"
	FieldID                = "id"
	FieldSummary           = "summary"
	FieldName              = "name"
	FieldPlugin            = "plugin"
	FieldCommand           = "command"
	FieldCategoryID        = "category_id"
	FieldEstimatedDuration = "estimated_duration"
	FieldFlags             = "flags"
	FieldRequires          = "requires"
	FieldDepends           = "depends"
	FieldDescription       = "description"
	FieldInclude           = "include"
	FieldExclude           = "exclude"
	FieldPath              = "path"
	FieldRole              = "role"
	FieldBase              = "base"
)

// Owner is the provider a unit belongs to. It qualifies partial
// identifiers with its namespace.
type Owner interface {
	Name() string
	Namespace() string
}

// Unit is one loaded piece of provider content.
type Unit interface {
	Kind() string
	// ID is the namespace-qualified identifier, or "" for kinds
	// without one.
	ID() string
	PartialID() string
	Origin() rfc822.Origin
	Provider() Owner
	// Virtual units were synthesized during loading rather than
	// parsed from a record in a file.
	Virtual() bool
	Record() *rfc822.Record
	Get(field string) string
	// Validate runs the kind's field validators. Strict mode also
	// rejects fields that have no effect for the kind.
	Validate(strict bool) error
	// Check runs the kind's consistency checks and reports issues
	// without failing.
	Check() []Issue
	fmt.Stringer
}

// KindOf returns the unit kind declared by a record, defaulting to
// job when the record does not say.
func KindOf(rec *rfc822.Record) string {
	if kind := rec.Get(FieldUnit); kind != "" {
		return kind
	}
	return KindJob
}

// Params carries everything a kind constructor needs.
type Params struct {
	Record   *rfc822.Record
	Origin   rfc822.Origin // zero value means use the record's origin
	Provider Owner
	Virtual  bool
}

func (p Params) origin() rfc822.Origin {
	if p.Origin.Source != nil {
		return p.Origin
	}
	if p.Record != nil {
		return p.Record.Origin()
	}
	return rfc822.Origin{Source: rfc822.UnknownTextSource{}}
}

// base carries the state common to every unit kind.
type base struct {
	record   *rfc822.Record
	origin   rfc822.Origin
	provider Owner
	virtual  bool
}

func newBase(p Params) base {
	return base{record: p.Record, origin: p.origin(), provider: p.Provider, virtual: p.Virtual}
}

func (b *base) Origin() rfc822.Origin   { return b.origin }
func (b *base) Provider() Owner         { return b.provider }
func (b *base) Virtual() bool           { return b.virtual }
func (b *base) Record() *rfc822.Record  { return b.record }
func (b *base) Get(field string) string { return b.record.Get(field) }

func (b *base) PartialID() string { return b.Get(FieldID) }

func (b *base) ID() string {
	return b.qualify(b.PartialID())
}

// qualify prefixes an identifier with the owning provider's
// namespace. Identifiers that already carry one pass through.
func (b *base) qualify(partial string) string {
	if partial == "" || strings.Contains(partial, "::") || b.provider == nil {
		return partial
	}
	ns := b.provider.Namespace()
	if ns == "" {
		return partial
	}
	return ns + "::" + partial
}

// Problem names the way a field can fail validation.
type Problem string

const (
	ProblemMissing Problem = "missing"
	ProblemWrong   Problem = "wrong"
	ProblemUseless Problem = "useless"
)

func (p Problem) description() string {
	switch p {
	case ProblemMissing:
		return "required field missing"
	case ProblemWrong:
		return "incorrect value supplied"
	case ProblemUseless:
		return "field has no effect"
	default:
		return string(p)
	}
}

// ValidationError is a field-scoped validation failure.
type ValidationError struct {
	Unit    string
	Field   string
	Problem Problem
	Origin  rfc822.Origin
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s unit: field %q: %s", e.Origin, e.Unit, e.Field, e.Problem.description())
}

// DefinitionError means a record is structurally unable to define a
// unit of its declared kind.
type DefinitionError struct {
	Kind   string
	Field  string
	Origin rfc822.Origin
	Err    error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("cannot define %s unit from record at %s: field %q: %v", e.Kind, e.Origin, e.Field, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// UnknownKindError is returned when a record names a kind the
// registry has never heard of.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown unit kind %q", e.Kind)
}

// Severity grades consistency check issues.
type Severity int

const (
	SeverityAdvice Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityAdvice:
		return "advice"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Issue is one finding from a unit's consistency checks.
type Issue struct {
	Severity Severity
	Field    string
	Message  string
	Origin   rfc822.Origin
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: field %q: %s", i.Origin, i.Severity, i.Field, i.Message)
}
