package destructive_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/core/destructive"
	"github.com/schemaforge/schemaforge/core/diff"
	"github.com/schemaforge/schemaforge/core/schema"
)

func TestAnalyzeDropTableAndColumn(t *testing.T) {
	c := qt.New(t)

	d := &diff.SchemaDiff{
		RemovedTables: []string{"legacy"},
		ModifiedTables: []*diff.TableDiff{
			{TableName: "users", RemovedColumns: []string{"nickname"}},
		},
	}

	r := destructive.Analyze(d)
	c.Assert(r.IsDestructive(), qt.IsTrue)

	var kinds []destructive.ChangeKind
	for _, item := range r.Items {
		kinds = append(kinds, item.Kind)
	}
	c.Assert(kinds, qt.Contains, destructive.DropTable)
	c.Assert(kinds, qt.Contains, destructive.DropColumn)
}

func TestAnalyzeModifiedColumnNarrowingType(t *testing.T) {
	c := qt.New(t)

	old := schema.NewColumn("bio", schema.NewVarchar(500))
	new := schema.NewColumn("bio", schema.NewVarchar(100))
	cd := diff.NewColumnDiff("bio", old, new)

	d := &diff.SchemaDiff{
		ModifiedTables: []*diff.TableDiff{
			{TableName: "users", ModifiedColumns: []diff.ColumnDiff{cd}},
		},
	}

	r := destructive.Analyze(d)
	c.Assert(r.IsDestructive(), qt.IsTrue)
	c.Assert(r.Items[0].Kind, qt.Equals, destructive.NarrowingTypeChange)
}

func TestAnalyzeModifiedColumnNullabilityTightened(t *testing.T) {
	c := qt.New(t)

	old := schema.NewColumn("email", schema.NewVarchar(255))
	old.Nullable = true
	new := schema.NewColumn("email", schema.NewVarchar(255))
	new.Nullable = false
	cd := diff.NewColumnDiff("email", old, new)

	d := &diff.SchemaDiff{
		ModifiedTables: []*diff.TableDiff{
			{TableName: "users", ModifiedColumns: []diff.ColumnDiff{cd}},
		},
	}

	r := destructive.Analyze(d)
	c.Assert(r.IsDestructive(), qt.IsTrue)
	c.Assert(r.Items[0].Kind, qt.Equals, destructive.AddNotNull)
}

func TestAnalyzeModifiedColumnNullabilityRelaxedIsNotDestructive(t *testing.T) {
	c := qt.New(t)

	old := schema.NewColumn("email", schema.NewVarchar(255))
	old.Nullable = false
	new := schema.NewColumn("email", schema.NewVarchar(255))
	new.Nullable = true
	cd := diff.NewColumnDiff("email", old, new)

	d := &diff.SchemaDiff{
		ModifiedTables: []*diff.TableDiff{
			{TableName: "users", ModifiedColumns: []diff.ColumnDiff{cd}},
		},
	}

	r := destructive.Analyze(d)
	c.Assert(r.IsDestructive(), qt.IsFalse)
}

// TestAnalyzeRenamedColumnWithNarrowingTypeChangeIsDestructive covers
// the case a bare nil prior-column would silently miss: a rename that
// simultaneously narrows a VARCHAR must still be classified destructive
// because it is judged against the real prior column, not a synthetic
// "no prior state" default.
func TestAnalyzeRenamedColumnWithNarrowingTypeChangeIsDestructive(t *testing.T) {
	c := qt.New(t)

	old := schema.NewColumn("bio", schema.NewVarchar(500))
	new := schema.NewColumn("about", schema.NewVarchar(100))
	cd := diff.NewColumnDiff("about", old, new)

	d := &diff.SchemaDiff{
		ModifiedTables: []*diff.TableDiff{
			{
				TableName: "users",
				RenamedColumns: []diff.RenamedColumn{
					{
						OldName:           "bio",
						Old:               old,
						New:               new,
						FurtherChanges:    cd.Changes,
						ConversionOutcome: cd.ConversionOutcome,
					},
				},
			},
		},
	}

	r := destructive.Analyze(d)
	c.Assert(r.IsDestructive(), qt.IsTrue)
	c.Assert(r.Items[0].Kind, qt.Equals, destructive.NarrowingTypeChange)
}

// TestAnalyzeRenamedColumnRelaxingNullabilityIsNotDestructive covers
// the other direction of the same bug: a rename that simultaneously
// relaxes NOT NULL to nullable must not be flagged, since that never
// loses data.
func TestAnalyzeRenamedColumnRelaxingNullabilityIsNotDestructive(t *testing.T) {
	c := qt.New(t)

	old := schema.NewColumn("full_name", schema.NewVarchar(255))
	old.Nullable = false
	new := schema.NewColumn("display_name", schema.NewVarchar(255))
	new.Nullable = true
	cd := diff.NewColumnDiff("display_name", old, new)

	d := &diff.SchemaDiff{
		ModifiedTables: []*diff.TableDiff{
			{
				TableName: "users",
				RenamedColumns: []diff.RenamedColumn{
					{
						OldName:           "full_name",
						Old:               old,
						New:               new,
						FurtherChanges:    cd.Changes,
						ConversionOutcome: cd.ConversionOutcome,
					},
				},
			},
		},
	}

	r := destructive.Analyze(d)
	c.Assert(r.IsDestructive(), qt.IsFalse)
}

func TestAnalyzeRenamedColumnTighteningNullabilityIsDestructive(t *testing.T) {
	c := qt.New(t)

	old := schema.NewColumn("full_name", schema.NewVarchar(255))
	old.Nullable = true
	new := schema.NewColumn("display_name", schema.NewVarchar(255))
	new.Nullable = false
	cd := diff.NewColumnDiff("display_name", old, new)

	d := &diff.SchemaDiff{
		ModifiedTables: []*diff.TableDiff{
			{
				TableName: "users",
				RenamedColumns: []diff.RenamedColumn{
					{
						OldName:           "full_name",
						Old:               old,
						New:               new,
						FurtherChanges:    cd.Changes,
						ConversionOutcome: cd.ConversionOutcome,
					},
				},
			},
		},
	}

	r := destructive.Analyze(d)
	c.Assert(r.IsDestructive(), qt.IsTrue)
	c.Assert(r.Items[0].Kind, qt.Equals, destructive.AddNotNull)
}

func TestAnalyzeEnumRecreate(t *testing.T) {
	c := qt.New(t)

	d := &diff.SchemaDiff{
		ModifiedEnums: []diff.EnumDiff{
			{EnumName: "status", ChangeKind: diff.EnumRecreate},
			{EnumName: "color", ChangeKind: diff.EnumAddOnly},
		},
	}

	r := destructive.Analyze(d)
	c.Assert(r.IsDestructive(), qt.IsTrue)
	c.Assert(r.Items, qt.HasLen, 1)
	c.Assert(r.Items[0].Kind, qt.Equals, destructive.EnumRecreate)
	c.Assert(r.Items[0].Column, qt.Equals, "status")
}
