// Package diff computes the structural delta between two schema.Schema
// values (C3), including rename inference from the renamed_from
// attribute and enum change classification.
//
// Grounded on ptah's migration/schemadiff package shape, adapted from
// live-database-introspection diffing to declarative-schema diffing,
// and on original_source's schema_diff_detector.rs for the exact
// rename-inference and enum-classification algorithm.
package diff

import (
	"fmt"
	"sort"

	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/core/typesystem"
)

// EnumChangeKind tags how an enum's value list changed between schemas.
type EnumChangeKind string

const (
	EnumAddOnly  EnumChangeKind = "AddOnly"
	EnumRecreate EnumChangeKind = "Recreate"
)

// EnumColumnRef names a column that uses an enum type, surfaced so
// downstream stages know which columns a Recreate affects.
type EnumColumnRef struct {
	TableName  string
	ColumnName string
}

// EnumDiff describes a change to a single enum's value list.
type EnumDiff struct {
	EnumName      string
	OldValues     []string
	NewValues     []string
	AddedValues   []string
	RemovedValues []string
	ChangeKind    EnumChangeKind
	Columns       []EnumColumnRef
}

// AttributeChange tags which attribute of a column changed.
type AttributeChange string

const (
	TypeChanged          AttributeChange = "TypeChanged"
	NullabilityChanged   AttributeChange = "NullabilityChanged"
	DefaultChanged       AttributeChange = "DefaultChanged"
	AutoIncrementChanged AttributeChange = "AutoIncrementChanged"
)

// ColumnDiff describes a per-attribute change list for one column,
// identified under the same name in both schemas or paired by rename.
type ColumnDiff struct {
	ColumnName string
	Old        *schema.Column
	New        *schema.Column
	Changes    []AttributeChange
	// ConversionOutcome is set when Changes contains TypeChanged.
	ConversionOutcome typesystem.Outcome
}

// NewColumnDiff computes the attribute change list between old and new
// column states. It always returns a ColumnDiff; callers should check
// len(Changes) == 0 to detect "no change".
func NewColumnDiff(name string, old, new *schema.Column) ColumnDiff {
	d := ColumnDiff{ColumnName: name, Old: old, New: new}
	if !old.Type.Equal(new.Type) {
		d.Changes = append(d.Changes, TypeChanged)
		d.ConversionOutcome = typesystem.Convert(old.Type, new.Type)
	}
	if old.Nullable != new.Nullable {
		d.Changes = append(d.Changes, NullabilityChanged)
	}
	if old.DefaultValue != new.DefaultValue || old.HasDefault != new.HasDefault {
		d.Changes = append(d.Changes, DefaultChanged)
	}
	if old.AutoIncrement != new.AutoIncrement {
		d.Changes = append(d.Changes, AutoIncrementChanged)
	}
	return d
}

// RenamedColumn pairs an old column name with its new Column
// definition, confirmed by a renamed_from attribute.
type RenamedColumn struct {
	OldName string
	// Old is the prior column definition the rename was resolved
	// against, so a simultaneous attribute change (narrowing type,
	// tightened nullability) alongside the rename can still be
	// classified against its real prior state instead of a synthetic
	// "no prior column" default.
	Old *schema.Column
	New *schema.Column
	// FurtherChanges carries any additional attribute changes beyond
	// the rename itself (e.g. a simultaneous type widen).
	FurtherChanges []AttributeChange
	ConversionOutcome typesystem.Outcome
}

// TableDiff is the structural delta for a single table present in both
// schemas (or the synthetic shape built for Non-existent use by the
// pipeline's `down` reconstruction path).
type TableDiff struct {
	TableName string

	AddedColumns    []*schema.Column
	RemovedColumns  []string
	ModifiedColumns []ColumnDiff
	RenamedColumns  []RenamedColumn

	AddedIndexes   []*schema.Index
	RemovedIndexes []string

	AddedConstraints   []*schema.Constraint
	RemovedConstraints []*schema.Constraint
}

// IsEmpty reports whether the table has no detected changes.
func (d *TableDiff) IsEmpty() bool {
	return len(d.AddedColumns) == 0 && len(d.RemovedColumns) == 0 &&
		len(d.ModifiedColumns) == 0 && len(d.RenamedColumns) == 0 &&
		len(d.AddedIndexes) == 0 && len(d.RemovedIndexes) == 0 &&
		len(d.AddedConstraints) == 0 && len(d.RemovedConstraints) == 0
}

// SchemaDiff is the primary output of the diff detector.
type SchemaDiff struct {
	AddedTables    []*schema.Table
	RemovedTables  []string
	ModifiedTables []*TableDiff

	AddedEnums    []*schema.EnumDefinition
	RemovedEnums  []string
	ModifiedEnums []EnumDiff

	EnumRecreateAllowed bool

	// Warnings accumulates non-fatal findings from rename resolution
	// (stale renamed_from attributes) discovered while diffing.
	Warnings []Warning
}

// Warning is a non-fatal diff-time finding from rename resolution. It
// is carried on SchemaDiff.Warnings only; nothing merges it into the
// Validator's result.
type Warning struct {
	Table   string
	Column  string
	Message string
}

// IsEmpty reports whether the diff carries no changes at all.
func (d *SchemaDiff) IsEmpty() bool {
	return len(d.AddedTables) == 0 && len(d.RemovedTables) == 0 && len(d.ModifiedTables) == 0 &&
		len(d.AddedEnums) == 0 && len(d.RemovedEnums) == 0 && len(d.ModifiedEnums) == 0
}

// Compare computes the SchemaDiff between prev and next.
func Compare(prev, next *schema.Schema) *SchemaDiff {
	d := &SchemaDiff{EnumRecreateAllowed: next.EnumRecreateAllowed}

	compareEnums(prev, next, d)

	oldNames := stringSet(prev.TableNames())
	newNames := stringSet(next.TableNames())

	for _, name := range next.TableNames() {
		if !oldNames[name] {
			d.AddedTables = append(d.AddedTables, next.Tables[name])
		}
	}
	for _, name := range prev.TableNames() {
		if !newNames[name] {
			d.RemovedTables = append(d.RemovedTables, name)
		}
	}
	for _, name := range prev.TableNames() {
		if !newNames[name] {
			continue
		}
		oldTable, newTable := prev.Tables[name], next.Tables[name]
		td := compareTable(oldTable, newTable)
		if !td.IsEmpty() {
			d.ModifiedTables = append(d.ModifiedTables, td)
		}
		d.Warnings = append(d.Warnings, StaleRenameWarnings(oldTable, newTable)...)
	}

	return d
}

func compareEnums(prev, next *schema.Schema, d *SchemaDiff) {
	oldNames := stringSet(prev.EnumNames())
	newNames := stringSet(next.EnumNames())

	for _, name := range next.EnumNames() {
		if !oldNames[name] {
			d.AddedEnums = append(d.AddedEnums, next.Enums[name])
		}
	}
	for _, name := range prev.EnumNames() {
		if !newNames[name] {
			d.RemovedEnums = append(d.RemovedEnums, name)
		}
	}
	for _, name := range prev.EnumNames() {
		if !newNames[name] {
			continue
		}
		oldEnum := prev.Enums[name]
		newEnum := next.Enums[name]
		if stringsEqual(oldEnum.Values, newEnum.Values) {
			continue
		}
		d.ModifiedEnums = append(d.ModifiedEnums, buildEnumDiff(oldEnum, newEnum, next))
	}
}

func buildEnumDiff(old, new *schema.EnumDefinition, s *schema.Schema) EnumDiff {
	oldSet := stringSet(old.Values)
	newSet := stringSet(new.Values)

	var added, removed []string
	for _, v := range new.Values {
		if !oldSet[v] {
			added = append(added, v)
		}
	}
	for _, v := range old.Values {
		if !newSet[v] {
			removed = append(removed, v)
		}
	}

	kind := EnumRecreate
	if len(removed) == 0 && schema.IsSupersequence(old.Values, new.Values) {
		kind = EnumAddOnly
	}

	return EnumDiff{
		EnumName:      old.Name,
		OldValues:     old.Values,
		NewValues:     new.Values,
		AddedValues:   added,
		RemovedValues: removed,
		ChangeKind:    kind,
		Columns:       collectEnumColumns(s, new.Name),
	}
}

func collectEnumColumns(s *schema.Schema, enumName string) []EnumColumnRef {
	var refs []EnumColumnRef
	for _, tableName := range s.TableNames() {
		table := s.Tables[tableName]
		for _, col := range table.Columns {
			if col.Type.Kind == schema.KindEnum && col.Type.EnumName == enumName {
				refs = append(refs, EnumColumnRef{TableName: tableName, ColumnName: col.Name})
			}
		}
	}
	return refs
}

// compareTable computes the delta for one table present in both
// schemas, including rename inference (step 3 of spec.md §4.2) before
// column add/remove classification.
func compareTable(old, new *schema.Table) *TableDiff {
	td := &TableDiff{TableName: old.Name}

	oldByName := make(map[string]*schema.Column, len(old.Columns))
	for _, c := range old.Columns {
		oldByName[c.Name] = c
	}
	newByName := make(map[string]*schema.Column, len(new.Columns))
	for _, c := range new.Columns {
		newByName[c.Name] = c
	}

	renamedOld := make(map[string]bool)
	renamedNew := make(map[string]bool)
	claimedOldNames := make(map[string]string) // old name -> new name claiming it (fan-in guard)

	for _, nc := range new.Columns {
		if nc.RenamedFrom == "" {
			continue
		}
		oc, oldExists := oldByName[nc.RenamedFrom]
		_, newCollision := oldByName[nc.Name]
		if !oldExists || newCollision {
			continue // stale renamed_from; handled as ordinary addition below, warning added after
		}
		if claimant, already := claimedOldNames[nc.RenamedFrom]; already && claimant != nc.Name {
			continue // fan-in: another new column already claimed this old name
		}
		claimedOldNames[nc.RenamedFrom] = nc.Name
		cd := NewColumnDiff(nc.Name, oc, nc)
		td.RenamedColumns = append(td.RenamedColumns, RenamedColumn{
			OldName:           nc.RenamedFrom,
			Old:               oc,
			New:               nc,
			FurtherChanges:    cd.Changes,
			ConversionOutcome: cd.ConversionOutcome,
		})
		renamedOld[nc.RenamedFrom] = true
		renamedNew[nc.Name] = true
	}

	oldNames := stringSet(columnNames(old.Columns))
	newNames := stringSet(columnNames(new.Columns))

	for _, nc := range new.Columns {
		if renamedNew[nc.Name] {
			continue
		}
		if !oldNames[nc.Name] {
			td.AddedColumns = append(td.AddedColumns, nc)
		}
	}
	for _, name := range sortedKeys(oldNames) {
		if renamedOld[name] {
			continue
		}
		if !newNames[name] {
			td.RemovedColumns = append(td.RemovedColumns, name)
		}
	}
	for _, name := range sortedKeys(oldNames) {
		if renamedOld[name] || renamedNew[name] {
			continue
		}
		if !newNames[name] {
			continue
		}
		oc, nc := oldByName[name], newByName[name]
		if oc.Equal(nc) {
			continue
		}
		cd := NewColumnDiff(name, oc, nc)
		if len(cd.Changes) > 0 {
			td.ModifiedColumns = append(td.ModifiedColumns, cd)
		}
	}

	compareIndexes(old, new, td)
	compareConstraints(old, new, td)

	return td
}

// StaleRenameWarnings re-scans new columns for renamed_from attributes
// that did not resolve to a confirmed rename, returning a diff.Warning
// for each (spec.md §4.2 step 3). Separated from compareTable so the
// exported Compare entry point can build the combined warning list
// without threading warnings through every recursive call.
func StaleRenameWarnings(old, new *schema.Table) []Warning {
	oldByName := make(map[string]*schema.Column, len(old.Columns))
	for _, c := range old.Columns {
		oldByName[c.Name] = c
	}
	var warnings []Warning
	for _, nc := range new.Columns {
		if nc.RenamedFrom == "" {
			continue
		}
		_, oldExists := oldByName[nc.RenamedFrom]
		_, newCollision := oldByName[nc.Name]
		if oldExists && !newCollision {
			continue
		}
		msg := fmt.Sprintf("column %q renamed_from %q does not exist in the previous schema", nc.Name, nc.RenamedFrom)
		if oldExists && newCollision {
			msg = fmt.Sprintf("column %q renamed_from %q collides with a surviving column of the new name", nc.Name, nc.RenamedFrom)
		}
		warnings = append(warnings, Warning{Table: old.Name, Column: nc.Name, Message: msg})
	}
	return warnings
}

func compareIndexes(old, new *schema.Table, td *TableDiff) {
	oldByName := make(map[string]*schema.Index, len(old.Indexes))
	for _, i := range old.Indexes {
		oldByName[i.Name] = i
	}
	newByName := make(map[string]*schema.Index, len(new.Indexes))
	for _, i := range new.Indexes {
		newByName[i.Name] = i
	}

	for _, i := range new.Indexes {
		old, exists := oldByName[i.Name]
		if !exists {
			td.AddedIndexes = append(td.AddedIndexes, i)
			continue
		}
		if !indexEqual(old, i) {
			// Structural change under the same name: remove-then-add.
			td.RemovedIndexes = append(td.RemovedIndexes, i.Name)
			td.AddedIndexes = append(td.AddedIndexes, i)
		}
	}
	for _, i := range old.Indexes {
		if _, exists := newByName[i.Name]; !exists {
			td.RemovedIndexes = append(td.RemovedIndexes, i.Name)
		}
	}
}

func indexEqual(a, b *schema.Index) bool {
	if a.Unique != b.Unique || len(a.Columns) != len(b.Columns) || a.Condition != b.Condition {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}

func compareConstraints(old, new *schema.Table, td *TableDiff) {
	oldKeys := make(map[string]*schema.Constraint, len(old.Constraints))
	for _, c := range old.Constraints {
		oldKeys[c.StructuralKey()] = c
	}
	newKeys := make(map[string]*schema.Constraint, len(new.Constraints))
	for _, c := range new.Constraints {
		newKeys[c.StructuralKey()] = c
	}

	for _, c := range new.Constraints {
		if _, exists := oldKeys[c.StructuralKey()]; !exists {
			td.AddedConstraints = append(td.AddedConstraints, c)
		}
	}
	for _, c := range old.Constraints {
		if _, exists := newKeys[c.StructuralKey()]; !exists {
			td.RemovedConstraints = append(td.RemovedConstraints, c)
		}
	}
}

func columnNames(cols []*schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
