package typesystem_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/core/typesystem"
)

func TestCategoryOf(t *testing.T) {
	c := qt.New(t)

	c.Assert(typesystem.CategoryOf(schema.NewInteger()), qt.Equals, typesystem.Numeric)
	c.Assert(typesystem.CategoryOf(schema.NewDecimal(10, 2)), qt.Equals, typesystem.Numeric)
	c.Assert(typesystem.CategoryOf(schema.NewVarchar(255)), qt.Equals, typesystem.String)
	c.Assert(typesystem.CategoryOf(schema.NewText()), qt.Equals, typesystem.String)
	c.Assert(typesystem.CategoryOf(schema.NewDate()), qt.Equals, typesystem.DateTime)
	c.Assert(typesystem.CategoryOf(schema.NewBlob()), qt.Equals, typesystem.Binary)
	c.Assert(typesystem.CategoryOf(schema.NewJSON()), qt.Equals, typesystem.Json)
	c.Assert(typesystem.CategoryOf(schema.NewBoolean()), qt.Equals, typesystem.Boolean)
	c.Assert(typesystem.CategoryOf(schema.NewUUID()), qt.Equals, typesystem.Uuid)
	c.Assert(typesystem.CategoryOf(schema.NewEnumType("status")), qt.Equals, typesystem.Other)
}

// TestConvertMatrix walks the conversion matrix spec.md describes,
// checking every category pairing produces the documented outcome.
func TestConvertMatrix(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name    string
		old     schema.ColumnType
		new     schema.ColumnType
		outcome typesystem.Outcome
	}{
		{"same category", schema.NewVarchar(255), schema.NewVarchar(100), typesystem.SafeWithPrecisionCheck},
		{"integer widens to decimal", schema.NewInteger(), schema.NewDecimal(10, 2), typesystem.SafeWithPrecisionCheck},
		{"numeric to string", schema.NewInteger(), schema.NewVarchar(255), typesystem.Safe},
		{"numeric to boolean", schema.NewInteger(), schema.NewBoolean(), typesystem.Warning},
		{"numeric to datetime", schema.NewInteger(), schema.NewDate(), typesystem.Error},
		{"string to binary", schema.NewVarchar(255), schema.NewBlob(), typesystem.Safe},
		{"string to json", schema.NewVarchar(255), schema.NewJSON(), typesystem.Safe},
		{"string to uuid", schema.NewVarchar(255), schema.NewUUID(), typesystem.Safe},
		{"string to numeric", schema.NewVarchar(255), schema.NewInteger(), typesystem.Warning},
		{"string to datetime", schema.NewVarchar(255), schema.NewDate(), typesystem.Warning},
		{"string to boolean", schema.NewVarchar(255), schema.NewBoolean(), typesystem.Warning},
		{"datetime to string", schema.NewDate(), schema.NewVarchar(255), typesystem.Safe},
		{"datetime to numeric", schema.NewDate(), schema.NewInteger(), typesystem.Error},
		{"binary to string", schema.NewBlob(), schema.NewVarchar(255), typesystem.Safe},
		{"binary to numeric", schema.NewBlob(), schema.NewInteger(), typesystem.Error},
		{"boolean to numeric", schema.NewBoolean(), schema.NewInteger(), typesystem.Safe},
		{"boolean to string", schema.NewBoolean(), schema.NewVarchar(255), typesystem.Safe},
		{"boolean to datetime", schema.NewBoolean(), schema.NewDate(), typesystem.Error},
		{"other category involved", schema.NewEnumType("status"), schema.NewVarchar(255), typesystem.SafeWithPrecisionCheck},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(typesystem.Convert(tc.old, tc.new), qt.Equals, tc.outcome)
		})
	}
}

func TestNarrowsPrecision(t *testing.T) {
	c := qt.New(t)

	c.Assert(typesystem.NarrowsPrecision(schema.NewVarchar(255), schema.NewVarchar(100)), qt.IsTrue)
	c.Assert(typesystem.NarrowsPrecision(schema.NewVarchar(100), schema.NewVarchar(255)), qt.IsFalse)
	c.Assert(typesystem.NarrowsPrecision(schema.NewDecimal(10, 2), schema.NewDecimal(8, 2)), qt.IsTrue)
	c.Assert(typesystem.NarrowsPrecision(schema.NewDecimal(8, 2), schema.NewDecimal(10, 2)), qt.IsFalse)
	c.Assert(typesystem.NarrowsPrecision(schema.NewVarchar(255), schema.NewText()), qt.IsFalse)
	c.Assert(typesystem.NarrowsPrecision(schema.NewInteger(), schema.NewInteger()), qt.IsFalse)
}

func TestRemediationHint(t *testing.T) {
	c := qt.New(t)

	hint := typesystem.RemediationHint(typesystem.Numeric, typesystem.DateTime)
	c.Assert(hint, qt.Contains, "Numeric")
	c.Assert(hint, qt.Contains, "DateTime")
	c.Assert(hint, qt.Contains, "TEXT")
}
