// Package validate implements the Validator (C4): static checks over a
// single schema.Schema. Validate reports errors only and emits no
// warnings: no rename-attribute or dialect-fallback warning passes
// through this package; stale renamed_from hints found while diffing
// stay on diff.SchemaDiff.Warnings.
//
// Grounded on the error taxonomy in original_source's core/error.rs
// and on the check catalog exercised by original_source's
// schema_validator_test.rs.
package validate

import (
	"fmt"

	"github.com/schemaforge/schemaforge/core/schema"
)

// ErrorKind classifies a ValidationError for machine dispatch, per
// spec.md §7's error taxonomy.
type ErrorKind string

const (
	ErrConstraint       ErrorKind = "Constraint"
	ErrReference        ErrorKind = "Reference"
	ErrSyntax           ErrorKind = "Syntax"
	ErrTypeConversion   ErrorKind = "TypeConversion"
	ErrDialectConstraint ErrorKind = "DialectConstraint"
)

// Location pinpoints where a finding occurred.
type Location struct {
	Table  string
	Column string
	Line   int
}

func (l Location) String() string {
	switch {
	case l.Table != "" && l.Column != "":
		return fmt.Sprintf("%s.%s", l.Table, l.Column)
	case l.Table != "":
		return l.Table
	default:
		return ""
	}
}

// ValidationError is a fatal finding that blocks migration generation.
type ValidationError struct {
	Kind       ErrorKind
	Location   Location
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Location, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// WarningKind classifies a ValidationWarning.
type WarningKind string

const (
	WarnDataLoss                  WarningKind = "DataLoss"
	WarnDialectSpecific           WarningKind = "DialectSpecific"
	WarnStaleRenamedFrom          WarningKind = "StaleRenamedFrom"
	WarnForeignKeyTargetRenamed   WarningKind = "ForeignKeyTargetRenamed"
	WarnRenamedFromRemoveRecommendation WarningKind = "RenamedFromRemoveRecommendation"
)

// ValidationWarning is a non-fatal finding attached to the result but
// that never blocks generation by itself.
type ValidationWarning struct {
	Kind     WarningKind
	Location Location
	Message  string
}

// Result carries every finding produced by validating a Schema.
type Result struct {
	Errors   []*ValidationError
	Warnings []*ValidationWarning
}

// OK reports whether the schema has no fatal errors.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) addError(kind ErrorKind, loc Location, suggestion string, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{
		Kind:       kind,
		Location:   loc,
		Message:    fmt.Sprintf(format, args...),
		Suggestion: suggestion,
	})
}

func (r *Result) addWarning(kind WarningKind, loc Location, format string, args ...any) {
	r.Warnings = append(r.Warnings, &ValidationWarning{
		Kind:     kind,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	})
}

// DialectLimits captures the dialect-specific bounds the Validator
// must consult (maximum DECIMAL precision today; more may be added as
// backends grow additional constraints).
type DialectLimits struct {
	MaxDecimalPrecision int
}

// Validate runs every static check from spec.md §4.3 over schema s and
// returns the accumulated result. It is pure: no I/O, no mutation of s.
func Validate(s *schema.Schema, limits DialectLimits) *Result {
	r := &Result{}

	for _, tableName := range s.TableNames() {
		validateTable(s, s.Tables[tableName], limits, r)
	}

	return r
}

func validateTable(s *schema.Schema, t *schema.Table, limits DialectLimits, r *Result) {
	loc := Location{Table: t.Name}

	if len(t.Columns) == 0 {
		r.addError(ErrConstraint, loc, "", "table %q has no columns", t.Name)
		return
	}

	columnNames := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		columnNames[c.Name] = true
	}

	pk := t.PrimaryKey()
	if pk == nil {
		r.addError(ErrConstraint, loc, "add a primary_key to the table", "table %q has no primary key", t.Name)
	} else {
		for _, col := range pk.Columns {
			c := t.Column(col)
			if c == nil {
				r.addError(ErrReference, loc, "", "primary key column %q does not exist in table %q", col, t.Name)
				continue
			}
			if c.Nullable {
				r.addError(ErrConstraint, Location{Table: t.Name, Column: col}, "mark the column NOT NULL", "primary key column %q is nullable", col)
			}
		}
	}

	for _, c := range t.Columns {
		validateColumnType(t.Name, c, limits, r)
	}

	for _, idx := range t.Indexes {
		for _, col := range idx.Columns {
			if !columnNames[col] {
				r.addError(ErrReference, Location{Table: t.Name}, "", "index %q references non-existent column %q", idx.Name, col)
			}
		}
	}

	for _, c := range t.Constraints {
		validateConstraint(s, t, c, columnNames, r)
	}
}

func validateColumnType(tableName string, c *schema.Column, limits DialectLimits, r *Result) {
	loc := Location{Table: tableName, Column: c.Name}
	switch c.Type.Kind {
	case schema.KindDecimal:
		if c.Type.DecimalScale < 0 || c.Type.DecimalScale > c.Type.DecimalPrecision {
			r.addError(ErrConstraint, loc, "", "DECIMAL scale %d exceeds precision %d on column %q", c.Type.DecimalScale, c.Type.DecimalPrecision, c.Name)
		}
		if limits.MaxDecimalPrecision > 0 && c.Type.DecimalPrecision > limits.MaxDecimalPrecision {
			r.addError(ErrConstraint, loc, fmt.Sprintf("reduce precision to %d or below", limits.MaxDecimalPrecision),
				"DECIMAL precision %d on column %q exceeds the dialect maximum of %d", c.Type.DecimalPrecision, c.Name, limits.MaxDecimalPrecision)
		}
	case schema.KindChar:
		if c.Type.Length <= 0 || c.Type.Length > 255 {
			r.addError(ErrConstraint, loc, "", "CHAR length %d on column %q must be between 1 and 255", c.Type.Length, c.Name)
		}
	}
}

func validateConstraint(s *schema.Schema, t *schema.Table, c *schema.Constraint, columnNames map[string]bool, r *Result) {
	loc := Location{Table: t.Name}
	for _, col := range c.Columns {
		if !columnNames[col] {
			r.addError(ErrReference, loc, "", "constraint on table %q references non-existent column %q", t.Name, col)
		}
	}
	if c.Kind != schema.ConstraintForeignKey {
		return
	}
	refTable, ok := s.Tables[c.ReferencedTable]
	if !ok {
		r.addError(ErrReference, loc, "", "foreign key on table %q references non-existent table %q", t.Name, c.ReferencedTable)
		return
	}
	for _, col := range c.ReferencedColumns {
		if refTable.Column(col) == nil {
			r.addError(ErrReference, loc, "", "foreign key on table %q references non-existent column %q.%q", t.Name, c.ReferencedTable, col)
		}
	}
}
