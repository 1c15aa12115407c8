// Package typesystem implements the column-type taxonomy (C2): the
// classification of abstract ColumnTypes into categories, and the
// compatibility matrix consulted whenever the diff detector sees a
// column's type change between two Schemas.
//
// Grounded on original_source's type_category.rs, which spec.md's
// conversion matrix is a direct transcription of.
package typesystem

import "github.com/schemaforge/schemaforge/core/schema"

// Category groups column types that convert among themselves safely
// or near-safely.
type Category string

const (
	Numeric  Category = "Numeric"
	String   Category = "String"
	DateTime Category = "DateTime"
	Binary   Category = "Binary"
	Json     Category = "Json"
	Boolean  Category = "Boolean"
	Uuid     Category = "Uuid"
	Other    Category = "Other"
)

// CategoryOf classifies a ColumnType into exactly one Category.
func CategoryOf(t schema.ColumnType) Category {
	switch t.Kind {
	case schema.KindInteger, schema.KindDecimal, schema.KindFloat, schema.KindDouble:
		return Numeric
	case schema.KindVarchar, schema.KindChar, schema.KindText:
		return String
	case schema.KindDate, schema.KindTime, schema.KindTimestamp:
		return DateTime
	case schema.KindBlob:
		return Binary
	case schema.KindJSON, schema.KindJSONB:
		return Json
	case schema.KindBoolean:
		return Boolean
	case schema.KindUUID:
		return Uuid
	case schema.KindEnum, schema.KindDialectSpecific:
		return Other
	default:
		return Other
	}
}

// Outcome is the verdict the conversion matrix assigns to a type
// change from one category/type to another.
type Outcome string

const (
	Safe                   Outcome = "Safe"
	SafeWithPrecisionCheck Outcome = "SafeWithPrecisionCheck"
	Warning                Outcome = "Warning"
	Error                  Outcome = "Error"
)

// Convert evaluates the conversion matrix (spec.md §4.1) for a change
// from oldType to newType and returns the outcome.
func Convert(oldType, newType schema.ColumnType) Outcome {
	from := CategoryOf(oldType)
	to := CategoryOf(newType)

	if from == Other || to == Other {
		return SafeWithPrecisionCheck
	}
	if from == to {
		return SafeWithPrecisionCheck
	}

	switch from {
	case Numeric:
		switch to {
		case String:
			return Safe
		case Boolean:
			return Warning
		default: // DateTime, Binary, Json, Uuid
			return Error
		}
	case String:
		switch to {
		case Binary, Json, Uuid:
			return Safe
		case Numeric, DateTime, Boolean:
			return Warning
		default:
			return Error
		}
	case DateTime:
		if to == String {
			return Safe
		}
		return Error
	case Binary, Json, Uuid:
		if to == String {
			return Safe
		}
		return Error
	case Boolean:
		switch to {
		case Numeric, String:
			return Safe
		default:
			return Error
		}
	default:
		return Error
	}
}

// NarrowsPrecision reports whether newType represents a size/precision
// reduction from oldType within the same category — VARCHAR length
// shrinking, DECIMAL precision shrinking — the condition that upgrades
// a SafeWithPrecisionCheck outcome into a data-loss warning at the
// rendering stage.
func NarrowsPrecision(oldType, newType schema.ColumnType) bool {
	if oldType.Kind != newType.Kind {
		return false
	}
	switch oldType.Kind {
	case schema.KindVarchar, schema.KindChar:
		return newType.Length < oldType.Length
	case schema.KindDecimal:
		return newType.DecimalPrecision < oldType.DecimalPrecision
	default:
		return false
	}
}

// RemediationHint returns a human-readable suggestion attached to
// Error outcomes, per spec.md §4.1 ("use TEXT as an intermediate type").
func RemediationHint(from, to Category) string {
	return "type conversion from " + string(from) + " to " + string(to) +
		" is not supported directly; consider migrating through TEXT as an intermediate type"
}
