package unit

import (
	"fmt"
	"strconv"
	"strings"
)

// jobPlugins are the execution behaviors a job may declare.
var jobPlugins = map[string]bool{
	"shell":                true,
	"attachment":           true,
	"resource":             true,
	"manual":               true,
	"user-interact":        true,
	"user-verify":          true,
	"user-interact-verify": true,
}

// pluginsNeedingCommand lists the plugins that cannot run without one.
var pluginsNeedingCommand = map[string]bool{
	"shell":                true,
	"attachment":           true,
	"resource":             true,
	"user-interact":        true,
	"user-interact-verify": true,
}

// Job is a single test definition.
type Job struct {
	base
	estimatedDuration float64
}

func NewJob(p Params) (*Job, error) {
	j := &Job{base: newBase(p)}
	if raw := j.Get(FieldEstimatedDuration); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &DefinitionError{Kind: KindJob, Field: FieldEstimatedDuration, Origin: j.origin, Err: err}
		}
		j.estimatedDuration = d
	}
	return j, nil
}

func (j *Job) Kind() string { return KindJob }

func (j *Job) Summary() string { return j.Get(FieldSummary) }

// Plugin returns the job's execution behavior, "manual" when unset.
func (j *Job) Plugin() string {
	if p := j.Get(FieldPlugin); p != "" {
		return p
	}
	return "manual"
}

func (j *Job) Command() string { return j.Get(FieldCommand) }

// CategoryID is qualified with the provider namespace like unit
// identifiers are.
func (j *Job) CategoryID() string { return j.qualify(j.Get(FieldCategoryID)) }

func (j *Job) EstimatedDuration() float64 { return j.estimatedDuration }

func (j *Job) Flags() []string { return strings.Fields(j.Get(FieldFlags)) }

func (j *Job) Requires() string { return j.Get(FieldRequires) }

func (j *Job) Depends() string { return j.Get(FieldDepends) }

func (j *Job) Validate(strict bool) error {
	if j.PartialID() == "" {
		return &ValidationError{Unit: KindJob, Field: FieldID, Problem: ProblemMissing, Origin: j.origin}
	}
	if p := j.Get(FieldPlugin); p != "" && !jobPlugins[p] {
		return &ValidationError{Unit: KindJob, Field: FieldPlugin, Problem: ProblemWrong, Origin: j.origin}
	}
	if j.record.Has(FieldEstimatedDuration) && j.estimatedDuration <= 0 {
		return &ValidationError{Unit: KindJob, Field: FieldEstimatedDuration, Problem: ProblemWrong, Origin: j.origin}
	}
	if strict && j.Plugin() == "manual" && j.Command() != "" {
		return &ValidationError{Unit: KindJob, Field: FieldCommand, Problem: ProblemUseless, Origin: j.origin}
	}
	return nil
}

func (j *Job) Check() []Issue {
	var issues []Issue
	if pluginsNeedingCommand[j.Plugin()] && j.Command() == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    FieldCommand,
			Message:  fmt.Sprintf("plugin %q requires a command", j.Plugin()),
			Origin:   j.origin,
		})
	}
	if j.Summary() == "" {
		issues = append(issues, Issue{
			Severity: SeverityAdvice,
			Field:    FieldSummary,
			Message:  "please add a summary",
			Origin:   j.origin,
		})
	}
	return issues
}

func (j *Job) String() string {
	if id := j.ID(); id != "" {
		return id
	}
	return "job without id"
}
