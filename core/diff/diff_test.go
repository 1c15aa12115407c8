package diff_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/core/diff"
	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/core/typesystem"
)

func TestCompareAddedAndRemovedTables(t *testing.T) {
	c := qt.New(t)

	prev := schema.NewSchema("v1")
	prev.AddTable(schema.NewTable("old_table"))

	next := schema.NewSchema("v2")
	next.AddTable(schema.NewTable("new_table"))

	d := diff.Compare(prev, next)
	c.Assert(d.AddedTables, qt.HasLen, 1)
	c.Assert(d.AddedTables[0].Name, qt.Equals, "new_table")
	c.Assert(d.RemovedTables, qt.DeepEquals, []string{"old_table"})
}

func TestCompareRenamedColumnMatchesByAttribute(t *testing.T) {
	c := qt.New(t)

	oldTable := schema.NewTable("users")
	oldTable.AddColumn(schema.NewColumn("email_address", schema.NewVarchar(255)))

	newTable := schema.NewTable("users")
	renamed := schema.NewColumn("email", schema.NewVarchar(255))
	renamed.RenamedFrom = "email_address"
	newTable.AddColumn(renamed)

	prev := schema.NewSchema("v1")
	prev.AddTable(oldTable)
	next := schema.NewSchema("v2")
	next.AddTable(newTable)

	d := diff.Compare(prev, next)
	c.Assert(d.ModifiedTables, qt.HasLen, 1)
	td := d.ModifiedTables[0]
	c.Assert(td.RenamedColumns, qt.HasLen, 1)
	c.Assert(td.AddedColumns, qt.HasLen, 0)
	c.Assert(td.RemovedColumns, qt.HasLen, 0)

	rc := td.RenamedColumns[0]
	c.Assert(rc.OldName, qt.Equals, "email_address")
	c.Assert(rc.Old, qt.Not(qt.IsNil))
	c.Assert(rc.Old.Name, qt.Equals, "email_address")
	c.Assert(rc.New.Name, qt.Equals, "email")
}

// TestCompareRenamedColumnCarriesSimultaneousAttributeChange confirms a
// rename with a concurrent narrowing type change is resolved against
// the real prior column, not a synthetic nil one — the condition
// destructive.Analyze depends on to classify it correctly.
func TestCompareRenamedColumnCarriesSimultaneousAttributeChange(t *testing.T) {
	c := qt.New(t)

	oldTable := schema.NewTable("users")
	oldTable.AddColumn(schema.NewColumn("bio", schema.NewVarchar(500)))

	newTable := schema.NewTable("users")
	renamed := schema.NewColumn("about", schema.NewVarchar(100))
	renamed.RenamedFrom = "bio"
	newTable.AddColumn(renamed)

	td := compareTableHelper(c, oldTable, newTable)
	c.Assert(td.RenamedColumns, qt.HasLen, 1)
	rc := td.RenamedColumns[0]
	c.Assert(rc.FurtherChanges, qt.Contains, diff.TypeChanged)
	c.Assert(rc.Old.Type.Length, qt.Equals, 500)
	c.Assert(rc.New.Type.Length, qt.Equals, 100)
	c.Assert(rc.ConversionOutcome, qt.Equals, typesystem.SafeWithPrecisionCheck)
}

func TestStaleRenameProducesWarningNotRename(t *testing.T) {
	c := qt.New(t)

	oldTable := schema.NewTable("users")
	oldTable.AddColumn(schema.NewColumn("id", schema.NewInteger()))

	newTable := schema.NewTable("users")
	newTable.AddColumn(schema.NewColumn("id", schema.NewInteger()))
	renamed := schema.NewColumn("nickname", schema.NewVarchar(255))
	renamed.RenamedFrom = "does_not_exist"
	newTable.AddColumn(renamed)

	prev := schema.NewSchema("v1")
	prev.AddTable(oldTable)
	next := schema.NewSchema("v2")
	next.AddTable(newTable)

	d := diff.Compare(prev, next)
	c.Assert(d.Warnings, qt.HasLen, 1)
	c.Assert(d.Warnings[0].Message, qt.Contains, "does_not_exist")

	td := d.ModifiedTables[0]
	c.Assert(td.RenamedColumns, qt.HasLen, 0)
	c.Assert(td.AddedColumns, qt.HasLen, 1)
	c.Assert(td.AddedColumns[0].Name, qt.Equals, "nickname")
}

func TestCompareEnumAddOnlyVsRecreate(t *testing.T) {
	c := qt.New(t)

	prev := schema.NewSchema("v1")
	prev.AddEnum(&schema.EnumDefinition{Name: "status", Values: []string{"active", "inactive"}})

	nextAdd := schema.NewSchema("v2")
	nextAdd.AddEnum(&schema.EnumDefinition{Name: "status", Values: []string{"active", "inactive", "archived"}})
	dAdd := diff.Compare(prev, nextAdd)
	c.Assert(dAdd.ModifiedEnums, qt.HasLen, 1)
	c.Assert(dAdd.ModifiedEnums[0].ChangeKind, qt.Equals, diff.EnumAddOnly)

	nextRemove := schema.NewSchema("v3")
	nextRemove.AddEnum(&schema.EnumDefinition{Name: "status", Values: []string{"active"}})
	dRemove := diff.Compare(prev, nextRemove)
	c.Assert(dRemove.ModifiedEnums, qt.HasLen, 1)
	c.Assert(dRemove.ModifiedEnums[0].ChangeKind, qt.Equals, diff.EnumRecreate)
}

func TestCompareIndexesAddedRemovedAndChanged(t *testing.T) {
	c := qt.New(t)

	oldTable := schema.NewTable("users")
	oldTable.AddIndex(schema.NewIndex("idx_a", false, "a"))
	oldTable.AddIndex(schema.NewIndex("idx_b", false, "b"))

	newTable := schema.NewTable("users")
	newTable.AddIndex(schema.NewIndex("idx_a", true, "a")) // same name, now unique: changed
	newTable.AddIndex(schema.NewIndex("idx_c", false, "c"))

	td := compareTableHelper(c, oldTable, newTable)
	c.Assert(td.RemovedIndexes, qt.Contains, "idx_a")
	c.Assert(td.RemovedIndexes, qt.Contains, "idx_b")
	var addedNames []string
	for _, i := range td.AddedIndexes {
		addedNames = append(addedNames, i.Name)
	}
	c.Assert(addedNames, qt.Contains, "idx_a")
	c.Assert(addedNames, qt.Contains, "idx_c")
}

// compareTableHelper wraps two single-table schemas through the public
// Compare entry point and returns the resulting TableDiff.
func compareTableHelper(c *qt.C, old, new *schema.Table) *diff.TableDiff {
	prev := schema.NewSchema("v1")
	prev.AddTable(old)
	next := schema.NewSchema("v2")
	next.AddTable(new)

	d := diff.Compare(prev, next)
	c.Assert(d.ModifiedTables, qt.HasLen, 1)
	return d.ModifiedTables[0]
}
