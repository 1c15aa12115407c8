// Package snapshot is the canonical schema serialization and checksum
// service (C8/C9): it renders a schema.Schema to a deterministic YAML
// document and computes a SHA-256 checksum over that document, so two
// independently-loaded Schema values that describe the same structure
// always serialize to byte-identical YAML and hash to the same
// checksum, regardless of map iteration order or the order tables
// were added in.
//
// Grounded on original_source's SchemaSerializerService
// (services/schema_serializer.rs), which converts the internal schema
// into a DTO shape before handing it to a YAML encoder, and on
// SchemaChecksumService (services/schema_checksum.rs, referenced from
// cli/commands/generate.rs as
// "let checksum = checksum_calculator.calculate_checksum(&current_schema)"),
// which hashes the schema after generate.rs writes up.sql/down.sql so
// the next run can detect drift between the stored snapshot and the
// live schema. Serialized with gopkg.in/yaml.v3, the YAML library
// already present in the example pack (Pieczasz-smf, denisvmedia-inventario).
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/schemaforge/schemaforge/core/schema"
	"github.com/schemaforge/schemaforge/schemafile"
)

// schemaDTO is the canonical on-disk shape of a Schema: a map keyed by
// name is never round-tripped directly, since Go's map iteration order
// is randomized and would make two semantically identical schemas
// serialize to different byte sequences. Every collection here is a
// slice built by walking the schema's sorted name lists.
type schemaDTO struct {
	Version             string    `yaml:"version"`
	EnumRecreateAllowed bool      `yaml:"enum_recreate_allowed,omitempty"`
	Enums               []enumDTO `yaml:"enums,omitempty"`
	Tables              []tableDTO `yaml:"tables"`
}

type enumDTO struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

type tableDTO struct {
	Name        string          `yaml:"name"`
	Columns     []columnDTO     `yaml:"columns"`
	PrimaryKey  []string        `yaml:"primary_key,omitempty"`
	Indexes     []indexDTO      `yaml:"indexes,omitempty"`
	Constraints []constraintDTO `yaml:"constraints,omitempty"`
}

type columnDTO struct {
	Name          string         `yaml:"name"`
	Type          map[string]any `yaml:"type"`
	Nullable      bool           `yaml:"nullable"`
	Default       string         `yaml:"default,omitempty"`
	AutoIncrement bool           `yaml:"auto_increment,omitempty"`
}

type indexDTO struct {
	Name      string   `yaml:"name"`
	Columns   []string `yaml:"columns"`
	Unique    bool     `yaml:"unique,omitempty"`
	Condition string   `yaml:"condition,omitempty"`
}

type constraintDTO struct {
	Kind              string   `yaml:"kind"`
	Columns           []string `yaml:"columns"`
	CheckExpression   string   `yaml:"check_expression,omitempty"`
	ReferencedTable   string   `yaml:"referenced_table,omitempty"`
	ReferencedColumns []string `yaml:"referenced_columns,omitempty"`
	OnDelete          string   `yaml:"on_delete,omitempty"`
	OnUpdate          string   `yaml:"on_update,omitempty"`
}

// toDTO converts s into its canonical DTO shape, walking every
// collection in the schema's sorted name order rather than map
// iteration order. PRIMARY_KEY constraints are extracted onto the
// table's PrimaryKey field and excluded from Constraints, mirroring
// SchemaSerializerService.extract_primary_key.
func toDTO(s *schema.Schema) schemaDTO {
	dto := schemaDTO{
		Version:             s.Version,
		EnumRecreateAllowed: s.EnumRecreateAllowed,
	}
	for _, name := range s.EnumNames() {
		e := s.Enums[name]
		dto.Enums = append(dto.Enums, enumDTO{Name: e.Name, Values: e.Values})
	}
	for _, name := range s.TableNames() {
		dto.Tables = append(dto.Tables, tableToDTO(s.Tables[name]))
	}
	return dto
}

func tableToDTO(t *schema.Table) tableDTO {
	td := tableDTO{Name: t.Name}
	for _, c := range t.Columns {
		td.Columns = append(td.Columns, columnDTO{
			Name:          c.Name,
			Type:          schemafile.ColumnTypeYAML(c.Type),
			Nullable:      c.Nullable,
			Default:       c.DefaultValue,
			AutoIncrement: c.AutoIncrement,
		})
	}
	if pk := t.PrimaryKey(); pk != nil {
		td.PrimaryKey = append([]string(nil), pk.Columns...)
	}
	for _, i := range sortedIndexes(t.Indexes) {
		td.Indexes = append(td.Indexes, indexDTO{
			Name:      i.Name,
			Columns:   i.Columns,
			Unique:    i.Unique,
			Condition: i.Condition,
		})
	}
	for _, c := range sortedConstraints(t.Constraints) {
		if c.Kind == schema.ConstraintPrimaryKey {
			continue
		}
		td.Constraints = append(td.Constraints, constraintDTO{
			Kind:              string(c.Kind),
			Columns:           c.Columns,
			CheckExpression:   c.CheckExpression,
			ReferencedTable:   c.ReferencedTable,
			ReferencedColumns: c.ReferencedColumns,
			OnDelete:          string(c.OnDelete),
			OnUpdate:          string(c.OnUpdate),
		})
	}
	return td
}

// Marshal renders s as canonical YAML: deterministic field order,
// tables, enums and indexes in sorted-name order, columns in the order
// declared on the table. Two Schema values with identical structure
// always produce byte-identical output.
func Marshal(s *schema.Schema) ([]byte, error) {
	return yaml.Marshal(toDTO(s))
}

// Checksum computes the hex-encoded SHA-256 digest of s's canonical
// YAML serialization, the value stored in a migration's .meta.yaml so
// a later run can detect whether the schema on disk has drifted from
// what the last migration was generated against.
func Checksum(s *schema.Schema) (string, error) {
	b, err := Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// readSchemaDTO, readTableDTO, and readColumnDTO mirror schemaDTO,
// tableDTO, and columnDTO's YAML shape for decoding. They are kept
// separate from the Marshal-side DTOs because Type differs in kind
// between directions: map[string]any on the way out (what yaml.Marshal
// accepts), schema.ColumnType on the way in (what the rest of this
// package's callers want) — a single struct can't hold both.
type readSchemaDTO struct {
	Version             string         `yaml:"version"`
	EnumRecreateAllowed bool           `yaml:"enum_recreate_allowed"`
	Enums               []enumDTO      `yaml:"enums"`
	Tables              []readTableDTO `yaml:"tables"`
}

type readTableDTO struct {
	Name        string          `yaml:"name"`
	Columns     []readColumnDTO `yaml:"columns"`
	PrimaryKey  []string        `yaml:"primary_key"`
	Indexes     []indexDTO      `yaml:"indexes"`
	Constraints []constraintDTO `yaml:"constraints"`
}

type readColumnDTO struct {
	Name          string
	Type          schema.ColumnType
	Nullable      bool
	Default       string
	AutoIncrement bool
}

func (c *readColumnDTO) UnmarshalYAML(value *yaml.Node) error {
	var shadow struct {
		Name          string    `yaml:"name"`
		Type          yaml.Node `yaml:"type"`
		Nullable      bool      `yaml:"nullable"`
		Default       string    `yaml:"default"`
		AutoIncrement bool      `yaml:"auto_increment"`
	}
	if err := value.Decode(&shadow); err != nil {
		return err
	}

	ct, err := schemafile.ColumnTypeFromYAML(&shadow.Type)
	if err != nil {
		return fmt.Errorf("column %q: %w", shadow.Name, err)
	}

	c.Name = shadow.Name
	c.Type = ct
	c.Nullable = shadow.Nullable
	c.Default = shadow.Default
	c.AutoIncrement = shadow.AutoIncrement
	return nil
}

// Unmarshal parses a .schema_snapshot.yaml document written by Marshal
// back into a *schema.Schema. migration/generator uses this to recover
// the previous schema for diff.Compare on every run after the first.
// Kept separate from schemafile.Parse (rather than reusing it) because
// this package's on-disk shape intentionally differs from a
// hand-authored schema file: tables are a name-sorted slice here, not
// a map, so Marshal's output is byte-deterministic.
func Unmarshal(b []byte) (*schema.Schema, error) {
	var dto readSchemaDTO
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return nil, fmt.Errorf("parsing schema snapshot: %w", err)
	}

	s := schema.NewSchema(dto.Version)
	s.EnumRecreateAllowed = dto.EnumRecreateAllowed

	for _, e := range dto.Enums {
		s.AddEnum(&schema.EnumDefinition{Name: e.Name, Values: e.Values})
	}

	for _, t := range dto.Tables {
		table := schema.NewTable(t.Name)
		for _, c := range t.Columns {
			col := schema.NewColumn(c.Name, c.Type)
			col.Nullable = c.Nullable
			if c.Default != "" {
				col.HasDefault = true
				col.DefaultValue = c.Default
			}
			col.AutoIncrement = c.AutoIncrement
			table.AddColumn(col)
		}
		if len(t.PrimaryKey) > 0 {
			table.AddConstraint(schema.NewPrimaryKey(t.PrimaryKey...))
		}
		for _, i := range t.Indexes {
			idx := schema.NewIndex(i.Name, i.Unique, i.Columns...)
			idx.Condition = i.Condition
			table.AddIndex(idx)
		}
		for _, c := range t.Constraints {
			constraint, err := constraintFromDTO(c)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", t.Name, err)
			}
			table.AddConstraint(constraint)
		}
		s.AddTable(table)
	}

	return s, nil
}

func constraintFromDTO(c constraintDTO) (*schema.Constraint, error) {
	switch c.Kind {
	case string(schema.ConstraintUnique):
		return schema.NewUniqueConstraint(c.Columns...), nil
	case string(schema.ConstraintCheck):
		return schema.NewCheckConstraint(c.CheckExpression, c.Columns...), nil
	case string(schema.ConstraintForeignKey):
		fk := schema.NewForeignKey(c.Columns, c.ReferencedTable, c.ReferencedColumns)
		if c.OnDelete != "" {
			fk.OnDelete = schema.ReferentialAction(c.OnDelete)
		}
		if c.OnUpdate != "" {
			fk.OnUpdate = schema.ReferentialAction(c.OnUpdate)
		}
		return fk, nil
	default:
		return nil, fmt.Errorf("unknown constraint kind %q", c.Kind)
	}
}

func sortedIndexes(indexes []*schema.Index) []*schema.Index {
	out := append([]*schema.Index(nil), indexes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedConstraints(constraints []*schema.Constraint) []*schema.Constraint {
	out := append([]*schema.Constraint(nil), constraints...)
	sort.Slice(out, func(i, j int) bool { return out[i].StructuralKey() < out[j].StructuralKey() })
	return out
}
