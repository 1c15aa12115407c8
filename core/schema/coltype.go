package schema

import "fmt"

// Kind is the tag of the ColumnType sum type.
type Kind string

const (
	KindInteger        Kind = "INTEGER"
	KindVarchar        Kind = "VARCHAR"
	KindChar           Kind = "CHAR"
	KindText           Kind = "TEXT"
	KindBoolean        Kind = "BOOLEAN"
	KindDate           Kind = "DATE"
	KindTime           Kind = "TIME"
	KindTimestamp      Kind = "TIMESTAMP"
	KindDecimal        Kind = "DECIMAL"
	KindFloat          Kind = "FLOAT"
	KindDouble         Kind = "DOUBLE"
	KindBlob           Kind = "BLOB"
	KindUUID           Kind = "UUID"
	KindJSON           Kind = "JSON"
	KindJSONB          Kind = "JSONB"
	KindEnum           Kind = "ENUM"
	KindDialectSpecific Kind = "DIALECT_SPECIFIC"
)

// ColumnType is a tagged union over every abstract column type this
// engine understands. Only the fields relevant to Kind are populated;
// it is built via the NewX constructors below rather than struct
// literals, to keep that invariant in one place.
type ColumnType struct {
	Kind Kind

	// INTEGER
	Precision int
	HasPrecision bool

	// VARCHAR / CHAR
	Length int

	// TIME / TIMESTAMP
	WithTZ bool

	// DECIMAL
	DecimalPrecision int
	DecimalScale     int

	// ENUM
	EnumName string

	// DialectSpecific escape hatch (PostgreSQL SERIAL, MySQL SET, ...)
	DialectKind   string
	DialectParams map[string]string
}

func NewInteger() ColumnType                  { return ColumnType{Kind: KindInteger} }
func NewIntegerP(precision int) ColumnType    { return ColumnType{Kind: KindInteger, Precision: precision, HasPrecision: true} }
func NewVarchar(length int) ColumnType        { return ColumnType{Kind: KindVarchar, Length: length} }
func NewChar(length int) ColumnType           { return ColumnType{Kind: KindChar, Length: length} }
func NewText() ColumnType                     { return ColumnType{Kind: KindText} }
func NewBoolean() ColumnType                  { return ColumnType{Kind: KindBoolean} }
func NewDate() ColumnType                     { return ColumnType{Kind: KindDate} }
func NewTime(withTZ bool) ColumnType          { return ColumnType{Kind: KindTime, WithTZ: withTZ} }
func NewTimestamp(withTZ bool) ColumnType     { return ColumnType{Kind: KindTimestamp, WithTZ: withTZ} }
func NewDecimal(precision, scale int) ColumnType {
	return ColumnType{Kind: KindDecimal, DecimalPrecision: precision, DecimalScale: scale}
}
func NewFloat() ColumnType  { return ColumnType{Kind: KindFloat} }
func NewDouble() ColumnType { return ColumnType{Kind: KindDouble} }
func NewBlob() ColumnType   { return ColumnType{Kind: KindBlob} }
func NewUUID() ColumnType   { return ColumnType{Kind: KindUUID} }
func NewJSON() ColumnType   { return ColumnType{Kind: KindJSON} }
func NewJSONB() ColumnType  { return ColumnType{Kind: KindJSONB} }
func NewEnumType(name string) ColumnType { return ColumnType{Kind: KindEnum, EnumName: name} }
func NewDialectSpecific(kind string, params map[string]string) ColumnType {
	return ColumnType{Kind: KindDialectSpecific, DialectKind: kind, DialectParams: params}
}

// Equal reports structural equality between two ColumnTypes.
func (t ColumnType) Equal(other ColumnType) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindInteger:
		return t.HasPrecision == other.HasPrecision && t.Precision == other.Precision
	case KindVarchar, KindChar:
		return t.Length == other.Length
	case KindTime, KindTimestamp:
		return t.WithTZ == other.WithTZ
	case KindDecimal:
		return t.DecimalPrecision == other.DecimalPrecision && t.DecimalScale == other.DecimalScale
	case KindEnum:
		return t.EnumName == other.EnumName
	case KindDialectSpecific:
		if t.DialectKind != other.DialectKind || len(t.DialectParams) != len(other.DialectParams) {
			return false
		}
		for k, v := range t.DialectParams {
			if other.DialectParams[k] != v {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders a compact, debug-friendly representation of the type.
func (t ColumnType) String() string {
	switch t.Kind {
	case KindInteger:
		if t.HasPrecision {
			return fmt.Sprintf("INTEGER(%d)", t.Precision)
		}
		return "INTEGER"
	case KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case KindChar:
		return fmt.Sprintf("CHAR(%d)", t.Length)
	case KindTime:
		if t.WithTZ {
			return "TIME WITH TIME ZONE"
		}
		return "TIME"
	case KindTimestamp:
		if t.WithTZ {
			return "TIMESTAMP WITH TIME ZONE"
		}
		return "TIMESTAMP"
	case KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.DecimalPrecision, t.DecimalScale)
	case KindEnum:
		return fmt.Sprintf("ENUM(%s)", t.EnumName)
	case KindDialectSpecific:
		return fmt.Sprintf("DIALECT_SPECIFIC(%s)", t.DialectKind)
	default:
		return string(t.Kind)
	}
}
