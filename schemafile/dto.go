package schemafile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/schemaforge/schemaforge/core/schema"
)

// fileDTO mirrors §6's top-level schema file shape, and
// original_source's core::schema::Schema serde model (version,
// enum_recreate_allowed, enums, tables).
type fileDTO struct {
	Version             string               `yaml:"version"`
	EnumRecreateAllowed bool                 `yaml:"enum_recreate_allowed"`
	Enums               map[string]enumDTO   `yaml:"enums"`
	Tables              map[string]tableDTO  `yaml:"tables"`
}

type enumDTO struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

type tableDTO struct {
	Columns     []columnDTO      `yaml:"columns"`
	PrimaryKey  []string         `yaml:"primary_key"`
	Indexes     []indexDTO       `yaml:"indexes"`
	Constraints []constraintDTO  `yaml:"constraints"`
	RenamedFrom string           `yaml:"renamed_from"`
}

type columnDTO struct {
	Name          string        `yaml:"name"`
	Type          columnTypeDTO `yaml:"type"`
	Nullable      bool          `yaml:"nullable"`
	DefaultValue  *string       `yaml:"default_value"`
	AutoIncrement *bool         `yaml:"auto_increment"`
	RenamedFrom   string        `yaml:"renamed_from"`
}

type indexDTO struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique"`
}

type constraintDTO struct {
	Type              string   `yaml:"type"`
	Columns           []string `yaml:"columns"`
	CheckExpression   string   `yaml:"check_expression"`
	ReferencedTable   string   `yaml:"referenced_table"`
	ReferencedColumns []string `yaml:"referenced_columns"`
	OnDelete          string   `yaml:"on_delete"`
	OnUpdate          string   `yaml:"on_update"`
}

// columnTypeDTO is the decoded shape of a `type: { kind: ..., ... }`
// block. Parsing is hand-rolled rather than struct-tag-driven because
// the field set depends on kind (precision for INTEGER/DECIMAL, length
// for VARCHAR/CHAR, with_time_zone for TIME/TIMESTAMP, name for ENUM),
// mirroring original_source's `#[serde(tag = "kind")]` enum.
type columnTypeDTO struct {
	Kind             string
	Precision        int
	HasPrecision     bool
	Length           int
	WithTZ           bool
	DecimalPrecision int
	DecimalScale     int
	EnumName         string
	DialectKind      string
	DialectParams    map[string]string
}

var knownKinds = map[string]bool{
	"INTEGER": true, "VARCHAR": true, "CHAR": true, "TEXT": true,
	"BOOLEAN": true, "DATE": true, "TIME": true, "TIMESTAMP": true,
	"DECIMAL": true, "FLOAT": true, "DOUBLE": true, "BLOB": true,
	"UUID": true, "JSON": true, "JSONB": true, "ENUM": true,
}

func (c *columnTypeDTO) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]yaml.Node
	if err := value.Decode(&raw); err != nil {
		return err
	}
	kindNode, ok := raw["kind"]
	if !ok {
		return fmt.Errorf("column type is missing the required \"kind\" field")
	}
	var kind string
	if err := kindNode.Decode(&kind); err != nil {
		return err
	}

	if !knownKinds[kind] {
		// DialectSpecific{kind, params}: an escape hatch for
		// non-portable types (PostgreSQL SERIAL, MySQL SET, ...). Any
		// field besides "kind" becomes a dialect param.
		params := make(map[string]string)
		for k, v := range raw {
			if k == "kind" {
				continue
			}
			var s string
			if err := v.Decode(&s); err != nil {
				return fmt.Errorf("dialect-specific type %q: param %q: %w", kind, k, err)
			}
			params[k] = s
		}
		*c = columnTypeDTO{Kind: "DIALECT_SPECIFIC", DialectKind: kind, DialectParams: params}
		return nil
	}

	c.Kind = kind
	switch kind {
	case "INTEGER":
		if n, ok := raw["precision"]; ok && n.Tag != "!!null" {
			if err := n.Decode(&c.Precision); err != nil {
				return err
			}
			c.HasPrecision = true
		}
	case "VARCHAR", "CHAR":
		n, ok := raw["length"]
		if !ok {
			return fmt.Errorf("%s type is missing the required \"length\" field", kind)
		}
		if err := n.Decode(&c.Length); err != nil {
			return err
		}
	case "TIME", "TIMESTAMP":
		if n, ok := raw["with_time_zone"]; ok && n.Tag != "!!null" {
			if err := n.Decode(&c.WithTZ); err != nil {
				return err
			}
		}
	case "DECIMAL":
		pn, ok := raw["precision"]
		if !ok {
			return fmt.Errorf("DECIMAL type is missing the required \"precision\" field")
		}
		if err := pn.Decode(&c.DecimalPrecision); err != nil {
			return err
		}
		sn, ok := raw["scale"]
		if !ok {
			return fmt.Errorf("DECIMAL type is missing the required \"scale\" field")
		}
		if err := sn.Decode(&c.DecimalScale); err != nil {
			return err
		}
	case "ENUM":
		n, ok := raw["name"]
		if !ok {
			return fmt.Errorf("ENUM type is missing the required \"name\" field")
		}
		if err := n.Decode(&c.EnumName); err != nil {
			return err
		}
	}
	return nil
}

// ColumnTypeYAML renders t in the same `{kind: ..., ...}` shape that
// UnmarshalYAML above decodes, so a caller that needs to serialize a
// schema.ColumnType back to YAML (migration/snapshot, writing
// .schema_snapshot.yaml) produces output this package's own Parse can
// read back on the next run. The inverse of columnTypeDTO.toColumnType.
func ColumnTypeYAML(t schema.ColumnType) map[string]any {
	switch t.Kind {
	case schema.KindInteger:
		m := map[string]any{"kind": string(t.Kind)}
		if t.HasPrecision {
			m["precision"] = t.Precision
		}
		return m
	case schema.KindVarchar, schema.KindChar:
		return map[string]any{"kind": string(t.Kind), "length": t.Length}
	case schema.KindTime, schema.KindTimestamp:
		return map[string]any{"kind": string(t.Kind), "with_time_zone": t.WithTZ}
	case schema.KindDecimal:
		return map[string]any{"kind": string(t.Kind), "precision": t.DecimalPrecision, "scale": t.DecimalScale}
	case schema.KindEnum:
		return map[string]any{"kind": string(t.Kind), "name": t.EnumName}
	case schema.KindDialectSpecific:
		m := map[string]any{"kind": t.DialectKind}
		for k, v := range t.DialectParams {
			m[k] = v
		}
		return m
	default:
		return map[string]any{"kind": string(t.Kind)}
	}
}

// ColumnTypeFromYAML decodes a `{kind: ..., ...}` YAML node — the same
// shape ColumnTypeYAML produces — into a schema.ColumnType. Exported so
// migration/snapshot can parse its own .schema_snapshot.yaml artifacts
// back through the same tagged-union decoding Parse uses for
// hand-authored schema files, without migration/snapshot reaching into
// this package's unexported columnTypeDTO.
func ColumnTypeFromYAML(value *yaml.Node) (schema.ColumnType, error) {
	var dto columnTypeDTO
	if err := dto.UnmarshalYAML(value); err != nil {
		return schema.ColumnType{}, err
	}
	return dto.toColumnType(), nil
}

// toColumnType converts the decoded DTO into the engine's abstract
// schema.ColumnType.
func (c columnTypeDTO) toColumnType() schema.ColumnType {
	switch c.Kind {
	case "INTEGER":
		if c.HasPrecision {
			return schema.NewIntegerP(c.Precision)
		}
		return schema.NewInteger()
	case "VARCHAR":
		return schema.NewVarchar(c.Length)
	case "CHAR":
		return schema.NewChar(c.Length)
	case "TEXT":
		return schema.NewText()
	case "BOOLEAN":
		return schema.NewBoolean()
	case "DATE":
		return schema.NewDate()
	case "TIME":
		return schema.NewTime(c.WithTZ)
	case "TIMESTAMP":
		return schema.NewTimestamp(c.WithTZ)
	case "DECIMAL":
		return schema.NewDecimal(c.DecimalPrecision, c.DecimalScale)
	case "FLOAT":
		return schema.NewFloat()
	case "DOUBLE":
		return schema.NewDouble()
	case "BLOB":
		return schema.NewBlob()
	case "UUID":
		return schema.NewUUID()
	case "JSON":
		return schema.NewJSON()
	case "JSONB":
		return schema.NewJSONB()
	case "ENUM":
		return schema.NewEnumType(c.EnumName)
	default:
		return schema.NewDialectSpecific(c.DialectKind, c.DialectParams)
	}
}
