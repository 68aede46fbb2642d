package unit

import (
	"provkit/internal/whitelist"
)

// TestPlan selects jobs to run through include and exclude pattern
// lists written in selection-list syntax.
type TestPlan struct {
	base
}

func NewTestPlan(p Params) (*TestPlan, error) {
	return &TestPlan{base: newBase(p)}, nil
}

func (t *TestPlan) Kind() string { return KindTestPlan }

func (t *TestPlan) Name() string { return t.Get(FieldName) }

// Include returns the raw include text, one pattern per line.
func (t *TestPlan) Include() string { return t.Get(FieldInclude) }

func (t *TestPlan) Exclude() string { return t.Get(FieldExclude) }

func (t *TestPlan) Validate(strict bool) error {
	if t.PartialID() == "" {
		return &ValidationError{Unit: KindTestPlan, Field: FieldID, Problem: ProblemMissing, Origin: t.origin}
	}
	if t.Name() == "" {
		return &ValidationError{Unit: KindTestPlan, Field: FieldName, Problem: ProblemMissing, Origin: t.origin}
	}
	return nil
}

func (t *TestPlan) Check() []Issue {
	var issues []Issue
	for _, fc := range []struct {
		field string
		text  string
	}{
		{FieldInclude, t.Include()},
		{FieldExclude, t.Exclude()},
	} {
		field, text := fc.field, fc.text
		if text == "" {
			continue
		}
		if _, err := whitelist.FromString(text, whitelist.Options{Name: t.PartialID()}); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Field:    field,
				Message:  err.Error(),
				Origin:   t.origin,
			})
		}
	}
	return issues
}

func (t *TestPlan) String() string {
	if id := t.ID(); id != "" {
		return id
	}
	return t.Name()
}
