// Package pipeline is the Migration Pipeline (C7): it takes a
// diff.SchemaDiff plus the target dialect and renders the ordered SQL
// statements for both the `up` and `down` directions of one migration,
// choosing between direct ALTER statements and SQLite's table-rebuild
// strategy per dialect capability.
//
// Grounded on ptah's migration/planner package for the staged-ordering
// idiom (create before alter, drop after) and on spec.md §4.4's stage
// list, with the FK dependency ordering in stage 4 computed by Kahn's
// algorithm rather than ptah's silent warn-and-append cycle handling
// (core/goschema/utils.go sortTablesByDependencies) — a cycle here is a
// hard error, since schemaforge has no legacy callers relying on a
// best-effort ordering.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/schemaforge/schemaforge/core/diff"
	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/sql/dialect"
)

// Plan is the ordered set of SQL statements generated for one
// direction (up or down) of a migration.
type Plan struct {
	Statements []string
}

// Build renders the `up` statements for d against the target schema
// next, using backend for dialect-specific rendering. next's enum
// table is also passed to MySQL's table creation, which inlines enum
// values on the column rather than referencing a named type.
func Build(d *diff.SchemaDiff, next *schema.Schema, backend dialect.Dialect) (*Plan, error) {
	p := &Plan{}

	if err := stageEnumAddOnly(d, backend, p); err != nil {
		return nil, err
	}
	if err := stageEnumRecreate(d, backend, p); err != nil {
		return nil, err
	}
	if err := stageCreateEnums(d, backend, p); err != nil {
		return nil, err
	}
	if err := stageCreateTables(d, next, backend, p); err != nil {
		return nil, err
	}
	if err := stageModifyTables(d, next, backend, p); err != nil {
		return nil, err
	}
	if err := stageDropTables(d, backend, p); err != nil {
		return nil, err
	}
	if err := stageDropEnums(d, backend, p); err != nil {
		return nil, err
	}

	return p, nil
}

func stageEnumAddOnly(d *diff.SchemaDiff, backend dialect.Dialect, p *Plan) error {
	if !backend.SupportsEnumType() {
		return nil
	}
	for _, ed := range sortedEnumDiffs(d.ModifiedEnums) {
		if ed.ChangeKind != diff.EnumAddOnly {
			continue
		}
		p.Statements = append(p.Statements, backend.RenderAddEnumValues(ed.EnumName, ed.AddedValues)...)
	}
	return nil
}

// stageEnumRecreate handles enum Recreate changes that were approved
// by the caller (the pipeline itself does not gate on allow_destructive
// — that decision belongs to the generator, which must not call Build
// at all for a diff containing an unapproved Recreate).
func stageEnumRecreate(d *diff.SchemaDiff, backend dialect.Dialect, p *Plan) error {
	if !backend.SupportsEnumType() {
		return nil
	}
	for _, ed := range sortedEnumDiffs(d.ModifiedEnums) {
		if ed.ChangeKind != diff.EnumRecreate {
			continue
		}
		p.Statements = append(p.Statements, backend.RenderDropEnum(ed.EnumName)...)
		p.Statements = append(p.Statements, backend.RenderCreateEnum(&schema.EnumDefinition{Name: ed.EnumName, Values: ed.NewValues})...)
	}
	return nil
}

func stageCreateEnums(d *diff.SchemaDiff, backend dialect.Dialect, p *Plan) error {
	if !backend.SupportsEnumType() {
		return nil
	}
	for _, e := range sortedEnums(d.AddedEnums) {
		p.Statements = append(p.Statements, backend.RenderCreateEnum(e)...)
	}
	return nil
}

func stageDropEnums(d *diff.SchemaDiff, backend dialect.Dialect, p *Plan) error {
	if !backend.SupportsEnumType() {
		return nil
	}
	names := append([]string(nil), d.RemovedEnums...)
	sort.Strings(names)
	for _, name := range names {
		p.Statements = append(p.Statements, backend.RenderDropEnum(name)...)
	}
	return nil
}

// stageCreateTables emits CREATE TABLE statements for every added
// table, ordered so a table is created only after every table its
// foreign keys reference. The ordering is computed by Kahn's
// algorithm; a cycle is a hard error (no such thing as a valid
// creation order for tables with a circular FK dependency without
// deferred constraints, which this engine does not model).
func stageCreateTables(d *diff.SchemaDiff, next *schema.Schema, backend dialect.Dialect, p *Plan) error {
	if len(d.AddedTables) == 0 {
		return nil
	}
	ordered, err := topoSortByForeignKey(d.AddedTables)
	if err != nil {
		return err
	}
	for _, t := range ordered {
		stmt, err := renderCreateTable(backend, t, next)
		if err != nil {
			return fmt.Errorf("rendering CREATE TABLE for %q: %w", t.Name, err)
		}
		p.Statements = append(p.Statements, stmt)
		for _, idx := range sortedIndexes(t.Indexes) {
			p.Statements = append(p.Statements, backend.RenderCreateIndex(t.Name, idx))
		}
	}
	return nil
}

// renderCreateTable dispatches to the MySQL-specific
// RenderCreateTableWithEnums entry point when the backend needs the
// schema's enum table to expand inline ENUM(...) columns, falling back
// to the plain interface method otherwise.
func renderCreateTable(backend dialect.Dialect, t *schema.Table, next *schema.Schema) (string, error) {
	type enumAware interface {
		RenderCreateTableWithEnums(t *schema.Table, enums map[string]*schema.EnumDefinition) (string, error)
	}
	if ea, ok := backend.(enumAware); ok {
		return ea.RenderCreateTableWithEnums(t, next.Enums)
	}
	return backend.RenderCreateTable(t)
}

// topoSortByForeignKey orders tables so each one is created after
// every table referenced by one of its own foreign keys. Tables
// outside the added set (already existing) are treated as having no
// further dependency, since they are assumed present before this plan
// runs.
func topoSortByForeignKey(tables []*schema.Table) ([]*schema.Table, error) {
	byName := make(map[string]*schema.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	inDegree := make(map[string]int, len(tables))
	dependents := make(map[string][]string)
	for _, t := range tables {
		inDegree[t.Name] = 0
	}
	for _, t := range tables {
		for _, dep := range dependencyNames(t, byName) {
			inDegree[t.Name]++
			dependents[dep] = append(dependents[dep], t.Name)
		}
	}

	var queue []string
	for _, t := range tables {
		if inDegree[t.Name] == 0 {
			queue = append(queue, t.Name)
		}
	}
	sort.Strings(queue)

	var ordered []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		ordered = append(ordered, name)

		next := dependents[name]
		sort.Strings(next)
		for _, dep := range next {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
				sort.Strings(queue)
			}
		}
	}

	if len(ordered) != len(tables) {
		var cycle []string
		for name, deg := range inDegree {
			if deg > 0 {
				cycle = append(cycle, name)
			}
		}
		sort.Strings(cycle)
		return nil, fmt.Errorf("circular foreign key dependency among tables: %v", cycle)
	}

	result := make([]*schema.Table, len(ordered))
	for i, name := range ordered {
		result[i] = byName[name]
	}
	return result, nil
}

// dependencyNames returns the names of tables t's foreign keys
// reference, restricted to tables present in byName (the set actually
// being created in this plan — references to pre-existing tables
// impose no ordering constraint here).
func dependencyNames(t *schema.Table, byName map[string]*schema.Table) []string {
	var deps []string
	seen := map[string]bool{}
	for _, c := range t.Constraints {
		if c.Kind != schema.ConstraintForeignKey {
			continue
		}
		if _, ok := byName[c.ReferencedTable]; !ok {
			continue
		}
		if !seen[c.ReferencedTable] {
			seen[c.ReferencedTable] = true
			deps = append(deps, c.ReferencedTable)
		}
	}
	return deps
}

func stageDropTables(d *diff.SchemaDiff, backend dialect.Dialect, p *Plan) error {
	names := append([]string(nil), d.RemovedTables...)
	sort.Strings(names)
	for _, name := range names {
		p.Statements = append(p.Statements, backend.RenderDropTable(name, true))
	}
	return nil
}

func sortedEnumDiffs(diffs []diff.EnumDiff) []diff.EnumDiff {
	out := append([]diff.EnumDiff(nil), diffs...)
	sort.Slice(out, func(i, j int) bool { return out[i].EnumName < out[j].EnumName })
	return out
}

func sortedEnums(enums []*schema.EnumDefinition) []*schema.EnumDefinition {
	out := append([]*schema.EnumDefinition(nil), enums...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedIndexes(indexes []*schema.Index) []*schema.Index {
	out := append([]*schema.Index(nil), indexes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
