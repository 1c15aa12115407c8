package pipeline

import (
	"github.com/schemaforge/schemaforge/core/diff"
	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/sql/dialect"
)

// BuildDown renders the statements that reverse a migration: d is the
// forward diff (prev -> next) already computed by diff.Compare, and
// prev is the schema the forward migration started from, used to
// resolve the full definition of anything the forward diff only names
// (a dropped table, a removed column, a replaced index). The result is
// rendered by the same Build used for the `up` direction, targeting
// prev as the destination schema.
func BuildDown(d *diff.SchemaDiff, prev *schema.Schema, backend dialect.Dialect) (*Plan, error) {
	return Build(invert(d, prev), prev, backend)
}

// invert builds the SchemaDiff that restores prev from next, resolving
// every entry against prev so the result carries full definitions
// rather than bare names.
func invert(d *diff.SchemaDiff, prev *schema.Schema) *diff.SchemaDiff {
	inv := &diff.SchemaDiff{EnumRecreateAllowed: d.EnumRecreateAllowed}

	for _, t := range d.AddedTables {
		inv.RemovedTables = append(inv.RemovedTables, t.Name)
	}
	for _, name := range d.RemovedTables {
		if t, ok := prev.Tables[name]; ok {
			inv.AddedTables = append(inv.AddedTables, t)
		}
	}

	for _, e := range d.AddedEnums {
		inv.RemovedEnums = append(inv.RemovedEnums, e.Name)
	}
	for _, name := range d.RemovedEnums {
		if e, ok := prev.Enums[name]; ok {
			inv.AddedEnums = append(inv.AddedEnums, e)
		}
	}
	for _, ed := range d.ModifiedEnums {
		inv.ModifiedEnums = append(inv.ModifiedEnums, diff.EnumDiff{
			EnumName:      ed.EnumName,
			OldValues:     ed.NewValues,
			NewValues:     ed.OldValues,
			AddedValues:   ed.RemovedValues,
			RemovedValues: ed.AddedValues,
			ChangeKind:    diff.EnumRecreate,
			Columns:       ed.Columns,
		})
	}

	for _, td := range d.ModifiedTables {
		inv.ModifiedTables = append(inv.ModifiedTables, invertTableDiff(td, prev))
	}

	return inv
}

func invertTableDiff(td *diff.TableDiff, prev *schema.Schema) *diff.TableDiff {
	inv := &diff.TableDiff{TableName: td.TableName}
	prevTable := prev.Tables[td.TableName]

	for _, c := range td.AddedColumns {
		inv.RemovedColumns = append(inv.RemovedColumns, c.Name)
	}
	if prevTable != nil {
		for _, name := range td.RemovedColumns {
			if c := prevTable.Column(name); c != nil {
				inv.AddedColumns = append(inv.AddedColumns, c)
			}
		}
	}

	for _, cd := range td.ModifiedColumns {
		inv.ModifiedColumns = append(inv.ModifiedColumns, diff.NewColumnDiff(cd.ColumnName, cd.New, cd.Old))
	}

	if prevTable != nil {
		for _, rc := range td.RenamedColumns {
			c := prevTable.Column(rc.OldName)
			if c == nil {
				continue
			}
			cd := diff.NewColumnDiff(rc.OldName, rc.New, c)
			inv.RenamedColumns = append(inv.RenamedColumns, diff.RenamedColumn{
				OldName:           rc.New.Name,
				Old:               rc.New,
				New:               c,
				FurtherChanges:    cd.Changes,
				ConversionOutcome: cd.ConversionOutcome,
			})
		}
	}

	for _, i := range td.AddedIndexes {
		inv.RemovedIndexes = append(inv.RemovedIndexes, i.Name)
	}
	if prevTable != nil {
		for _, name := range td.RemovedIndexes {
			if idx := findIndex(prevTable, name); idx != nil {
				inv.AddedIndexes = append(inv.AddedIndexes, idx)
			}
		}
	}

	inv.RemovedConstraints = td.AddedConstraints
	inv.AddedConstraints = td.RemovedConstraints

	return inv
}

func findIndex(t *schema.Table, name string) *schema.Index {
	for _, i := range t.Indexes {
		if i.Name == name {
			return i
		}
	}
	return nil
}
