// Package diagnostic collects the members the generator stubbed out or
// degraded, so a run can be reviewed without reading every generated file.
package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Codes of the diagnostics the generator reports.
const (
	CodeVariadic          = "variadic"
	CodeDenylisted        = "denylisted"
	CodeInvalidIdentifier = "invalid-identifier"
	CodeNewerThanTarget   = "newer-than-target"
	CodeUnresolvedType    = "unresolved-type"
	CodeDroppedSetter     = "dropped-setter"
	CodeDuplicateName     = "duplicate-name"
	CodeRenderFailed      = "render-failed"
)

// Diagnostics holds all diagnostic information of one generation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code    string
	Message string
	// Record is the owning record or file (if any).
	Record string
	// Member is the method, property or type this relates to (if any).
	Member string
}

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

func (d *Diagnostics) add(severity Severity, code, message, record, member string) {
	entry := Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  message,
		Record:   record,
		Member:   member,
	}
	switch severity {
	case SeverityError:
		d.Errors = append(d.Errors, entry)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, entry)
	default:
		d.Infos = append(d.Infos, entry)
	}
}

func (d *Diagnostics) AddError(code, message, record, member string) {
	d.add(SeverityError, code, message, record, member)
}

func (d *Diagnostics) AddWarning(code, message, record, member string) {
	d.add(SeverityWarning, code, message, record, member)
}

func (d *Diagnostics) AddInfo(code, message, record, member string) {
	d.add(SeverityInfo, code, message, record, member)
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge appends the entries of other, keeping their order.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Count returns the number of entries with the given code.
func (d *Diagnostics) Count(code string) int {
	count := 0
	for _, list := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, entry := range list {
			if entry.Code == code {
				count++
			}
		}
	}
	return count
}

// Error returns a combined error from all error diagnostics, or nil.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}
	return errors.New(strings.Join(parts, "; "))
}

func (d Diagnostic) String() string {
	var prefix []string
	if d.Record != "" {
		prefix = append(prefix, "["+d.Record+"]")
	}
	if d.Member != "" {
		prefix = append(prefix, d.Member)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}
	return msg
}
