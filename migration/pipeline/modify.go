package pipeline

import (
	"fmt"
	"sort"

	"github.com/schemaforge/schemaforge/core/diff"
	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/sql/dialect"
)

// rebuilder is implemented only by the sqlite backend. The pipeline
// type-asserts for it rather than adding RenderRebuild to the shared
// Dialect interface, since no other dialect has a meaningful
// implementation of it.
type rebuilder interface {
	RenderRebuild(oldTableName string, newTable *schema.Table, columnMapping map[string]string) ([]string, error)
}

// stageModifyTables renders every per-table change in d.ModifiedTables
// (column renames, additions, attribute changes, index changes,
// constraint changes, column removals) in the order spec.md §4.4
// lists: renames first, then additions, then attribute modifications,
// then indexes, then constraints, then column drops. When the backend
// cannot express a change via ALTER TABLE (any SQLite column
// attribute/constraint change, including one made alongside a rename),
// the whole table's remaining changes are folded into a single
// RenderRebuild call instead of partial ALTERs.
func stageModifyTables(d *diff.SchemaDiff, next *schema.Schema, backend dialect.Dialect, p *Plan) error {
	tables := append([]*diff.TableDiff(nil), d.ModifiedTables...)
	sort.Slice(tables, func(i, j int) bool { return tables[i].TableName < tables[j].TableName })

	for _, td := range tables {
		needsRebuild := !backend.SupportsAlterColumnType() &&
			(len(td.ModifiedColumns) > 0 || len(td.RenamedColumns) > 0 && anyFurtherChange(td) ||
				len(td.AddedConstraints) > 0 || len(td.RemovedConstraints) > 0)

		if needsRebuild {
			rb, ok := backend.(rebuilder)
			if !ok {
				return fmt.Errorf("table %q requires a rebuild but dialect %q does not support rebuilds", td.TableName, backend.Name())
			}
			stmts, err := renderTableRebuild(td, next, rb)
			if err != nil {
				return err
			}
			p.Statements = append(p.Statements, stmts...)
			continue
		}

		if err := renderRenames(td, backend, p); err != nil {
			return err
		}
		if err := renderAdditions(td, backend, p); err != nil {
			return err
		}
		if err := renderModifications(td, backend, p); err != nil {
			return err
		}
		renderIndexChanges(td, backend, p)
		if err := renderConstraintChanges(td, backend, p); err != nil {
			return err
		}
		removedCols := append([]string(nil), td.RemovedColumns...)
		sort.Strings(removedCols)
		for _, name := range removedCols {
			p.Statements = append(p.Statements, backend.RenderDropColumn(td.TableName, name))
		}
	}
	return nil
}

func anyFurtherChange(td *diff.TableDiff) bool {
	for _, rc := range td.RenamedColumns {
		if len(rc.FurtherChanges) > 0 {
			return true
		}
	}
	return false
}

func renderRenames(td *diff.TableDiff, backend dialect.Dialect, p *Plan) error {
	for _, rc := range sortedRenames(td.RenamedColumns) {
		p.Statements = append(p.Statements, backend.RenderRenameColumn(td.TableName, rc.OldName, rc.New.Name))
		for _, c := range rc.FurtherChanges {
			if c != diff.NullabilityChanged && c != diff.DefaultChanged && c != diff.AutoIncrementChanged {
				continue
			}
			stmts, err := backend.RenderAlterColumnType(td.TableName, nil, rc.New)
			if err != nil {
				return err
			}
			p.Statements = append(p.Statements, stmts...)
			break
		}
	}
	return nil
}

func renderAdditions(td *diff.TableDiff, backend dialect.Dialect, p *Plan) error {
	for _, c := range sortedColumns(td.AddedColumns) {
		stmt, err := backend.RenderAddColumn(td.TableName, c)
		if err != nil {
			return err
		}
		p.Statements = append(p.Statements, stmt)
	}
	return nil
}

func renderModifications(td *diff.TableDiff, backend dialect.Dialect, p *Plan) error {
	mods := append([]diff.ColumnDiff(nil), td.ModifiedColumns...)
	sort.Slice(mods, func(i, j int) bool { return mods[i].ColumnName < mods[j].ColumnName })
	for _, cd := range mods {
		stmts, err := backend.RenderAlterColumnType(td.TableName, cd.Old, cd.New)
		if err != nil {
			return err
		}
		p.Statements = append(p.Statements, stmts...)
	}
	return nil
}

func renderIndexChanges(td *diff.TableDiff, backend dialect.Dialect, p *Plan) {
	removed := append([]string(nil), td.RemovedIndexes...)
	sort.Strings(removed)
	for _, name := range removed {
		p.Statements = append(p.Statements, backend.RenderDropIndex(td.TableName, name))
	}
	for _, idx := range sortedIndexes(td.AddedIndexes) {
		p.Statements = append(p.Statements, backend.RenderCreateIndex(td.TableName, idx))
	}
}

func renderConstraintChanges(td *diff.TableDiff, backend dialect.Dialect, p *Plan) error {
	for _, c := range sortedConstraints(td.RemovedConstraints) {
		stmt, err := backend.RenderDropConstraint(td.TableName, c)
		if err != nil {
			return err
		}
		p.Statements = append(p.Statements, stmt)
	}
	for _, c := range sortedConstraints(td.AddedConstraints) {
		stmt, err := backend.RenderAddConstraint(td.TableName, c)
		if err != nil {
			return err
		}
		p.Statements = append(p.Statements, stmt)
	}
	return nil
}

// renderTableRebuild assembles the full post-migration table
// definition from next and asks the SQLite backend for its
// create-copy-drop-rename sequence, mapping each surviving column back
// to its pre-migration name when it was renamed.
func renderTableRebuild(td *diff.TableDiff, next *schema.Schema, rb rebuilder) ([]string, error) {
	newTable, ok := next.Tables[td.TableName]
	if !ok {
		return nil, fmt.Errorf("rebuild target table %q not found in next schema", td.TableName)
	}
	mapping := make(map[string]string)
	for _, rc := range td.RenamedColumns {
		mapping[rc.New.Name] = rc.OldName
	}
	return rb.RenderRebuild(td.TableName, newTable, mapping)
}

func sortedRenames(renames []diff.RenamedColumn) []diff.RenamedColumn {
	out := append([]diff.RenamedColumn(nil), renames...)
	sort.Slice(out, func(i, j int) bool { return out[i].New.Name < out[j].New.Name })
	return out
}

func sortedColumns(cols []*schema.Column) []*schema.Column {
	out := append([]*schema.Column(nil), cols...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedConstraints(constraints []*schema.Constraint) []*schema.Constraint {
	out := append([]*schema.Constraint(nil), constraints...)
	sort.Slice(out, func(i, j int) bool { return out[i].StructuralKey() < out[j].StructuralKey() })
	return out
}
