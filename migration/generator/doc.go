// Package generator is the migration-generation orchestrator (§2): it
// wires together every stage of the pipeline — schema loading, the
// Validator, the diff detector, the Destructive-Change Analyzer, and
// the Migration Pipeline's dialect-specific rendering — and writes the
// resulting artifacts to disk.
//
// # Overview
//
// Generate is the single entry point. Given a schema directory, a
// free-form description, and a config.GenerateOptions, it:
//
//  1. Loads the desired schema from the YAML files in schemaDir.
//  2. Loads the previously committed schema snapshot from the most
//     recent migration directory, or starts from an empty schema if
//     none exists yet.
//  3. Validates the desired schema and aborts on any fatal finding.
//  4. Diffs the previous and desired schemas.
//  5. Classifies the diff's destructive potential and refuses to
//     proceed unless the caller opted in (per-item, with enum
//     Recreate additionally gated on the schema's own
//     enum_recreate_allowed flag).
//  6. Renders both directions of the migration through the dialect
//     backend selected by config.GenerateOptions.Dialect.
//  7. Computes the new schema's canonical checksum and writes
//     up.sql, down.sql, .meta.yaml, and .schema_snapshot.yaml into a
//     new "<timestamp>_<sanitized description>" directory under
//     config.GenerateOptions.MigrationsDir.
//
// # Grounding
//
// The orchestration order mirrors original_source's generate.rs
// command handler: compute the checksum first, then write
// up.sql/down.sql, then the metadata (which embeds the checksum), then the
// schema snapshot last — so that a process killed partway through
// never leaves a newer-looking snapshot than the migration files it
// describes.
package generator
