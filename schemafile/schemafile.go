// Package schemafile is the YAML schema-file loader at the external
// boundary (§6): it reads a directory of `.yaml`/`.yml` files into a
// *schema.Schema, the sole parsed input the core ever sees. I/O,
// scanning, and YAML decoding live here precisely because spec.md
// places them out of the core's scope.
//
// Grounded on original_source's SchemaParserService
// (services/schema_parser.rs): scan a directory for .yaml/.yml files
// sorted by filename, parse each independently, and merge the results
// into one Schema (later files win on a table/enum name collision,
// mirroring the Rust service's BTreeMap insert-overwrites-on-rename
// behavior). A single merged file is also accepted — a directory
// containing exactly one schema file is just the n=1 case of the same
// loop, matching schema_parser.rs's directory-scanning convention,
// adopted per SPEC_FULL.md's supplemented-features section since
// spec.md's §6 is silent on one-file-vs-many.
package schemafile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/schemaforge/schemaforge/core/schema"
)

// LoadDirectory reads every .yaml/.yml file directly under dir
// (non-recursive, matching schema_parser.rs's scan_yaml_files), parses
// each as a schema file, and merges them into a single Schema. A
// directory with no schema files yields an empty Schema at version
// "1.0", the same fallback schema_parser.rs returns.
func LoadDirectory(dir string) (*schema.Schema, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schemafile: %q is not a directory", dir)
	}

	files, err := scanYAMLFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return schema.NewSchema("1.0"), nil
	}

	merged := schema.NewSchema("1.0")
	versionSet := false
	for _, path := range files {
		s, err := LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("schemafile: parsing %q: %w", path, err)
		}
		if !versionSet {
			merged.Version = s.Version
			merged.EnumRecreateAllowed = s.EnumRecreateAllowed
			versionSet = true
		}
		for _, name := range s.EnumNames() {
			merged.AddEnum(s.Enums[name])
		}
		for _, name := range s.TableNames() {
			merged.AddTable(s.Tables[name])
		}
	}
	return merged, nil
}

// scanYAMLFiles lists the .yaml/.yml files directly under dir, sorted
// by filename for reproducible merge order.
func scanYAMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("schemafile: reading %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile parses a single schema file into a Schema.
func LoadFile(path string) (*schema.Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return Parse(b)
}

// Parse decodes b (the contents of one schema file, §6's top-level
// format) into a Schema.
func Parse(b []byte) (*schema.Schema, error) {
	var dto fileDTO
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return nil, fmt.Errorf("schemafile: invalid YAML: %w", err)
	}
	return dto.toSchema()
}
