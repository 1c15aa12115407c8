// Package destructive implements the Destructive-Change Analyzer (C5):
// it classifies every entry in a diff.SchemaDiff by data-loss risk and
// produces a report the Migration Pipeline gates emission behind.
package destructive

import (
	"fmt"

	"github.com/schemaforge/schemaforge/core/diff"
	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/core/typesystem"
)

// ChangeKind tags why a change was classified as destructive.
type ChangeKind string

const (
	DropTable          ChangeKind = "DropTable"
	DropColumn         ChangeKind = "DropColumn"
	NarrowingTypeChange ChangeKind = "NarrowingTypeChange"
	AddNotNull         ChangeKind = "AddNotNull"
	EnumRecreate       ChangeKind = "EnumRecreate"
)

// Item is a single destructive finding.
type Item struct {
	Kind        ChangeKind
	Table       string
	Column      string
	Description string
}

// Report is the complete destructive-change analysis for one diff. It
// is embedded into a migration's metadata regardless of whether
// destructive changes were actually allowed to emit, so apply-time
// review remains possible.
type Report struct {
	Items []Item
}

// IsDestructive reports whether any destructive change was found.
func (r *Report) IsDestructive() bool {
	return len(r.Items) > 0
}

// Analyze classifies every entry of d and returns the report. An enum
// Recreate is always reported as a finding; whether it may be emitted,
// which also takes the schema's enum_recreate_allowed flag, is decided
// by the caller.
func Analyze(d *diff.SchemaDiff) *Report {
	r := &Report{}

	for _, name := range d.RemovedTables {
		r.Items = append(r.Items, Item{
			Kind:        DropTable,
			Table:       name,
			Description: fmt.Sprintf("table %q is dropped", name),
		})
	}

	for _, td := range d.ModifiedTables {
		for _, name := range td.RemovedColumns {
			r.Items = append(r.Items, Item{
				Kind:        DropColumn,
				Table:       td.TableName,
				Column:      name,
				Description: fmt.Sprintf("column %q is dropped from table %q", name, td.TableName),
			})
		}
		for _, cd := range td.ModifiedColumns {
			analyzeColumnChange(td.TableName, cd.ColumnName, cd.Changes, cd.ConversionOutcome, cd.Old, cd.New, r)
		}
		for _, rc := range td.RenamedColumns {
			analyzeColumnChange(td.TableName, rc.New.Name, rc.FurtherChanges, rc.ConversionOutcome, rc.Old, rc.New, r)
		}
	}

	for _, ed := range d.ModifiedEnums {
		if ed.ChangeKind != diff.EnumRecreate {
			continue
		}
		r.Items = append(r.Items, Item{
			Kind:        EnumRecreate,
			Table:       "",
			Column:      ed.EnumName,
			Description: fmt.Sprintf("enum %q requires a destructive recreate", ed.EnumName),
		})
	}

	return r
}

func analyzeColumnChange(table, column string, changes []diff.AttributeChange, outcome typesystem.Outcome, old, new *schema.Column, r *Report) {
	for _, c := range changes {
		switch c {
		case diff.TypeChanged:
			narrows := old != nil && typesystem.NarrowsPrecision(old.Type, new.Type)
			if outcome == typesystem.Warning || narrows {
				r.Items = append(r.Items, Item{
					Kind:        NarrowingTypeChange,
					Table:       table,
					Column:      column,
					Description: fmt.Sprintf("column %q.%q type change may lose data", table, column),
				})
			}
		case diff.NullabilityChanged:
			// Only tightening (nullable -> NOT NULL) on an existing
			// column risks rejecting rows with NULL already present;
			// relaxing a constraint never loses data.
			if old == nil || (old.Nullable && !new.Nullable) {
				r.Items = append(r.Items, Item{
					Kind:        AddNotNull,
					Table:       table,
					Column:      column,
					Description: fmt.Sprintf("column %q.%q gains a NOT NULL constraint", table, column),
				})
			}
		}
	}
}
