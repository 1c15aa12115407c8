// Package sqlsplit splits a block of SQL text into individual
// statements on semicolon boundaries, tracking quoted strings,
// quoted identifiers, and comments so that a semicolon inside any of
// those is not mistaken for a statement terminator.
//
// Grounded on ptah's core/sqlutil.SplitSQLStatements/StripComments,
// adapted from their lexer-token-based scan to a single quote-aware
// rune scanner: the migrator only ever splits up.sql/down.sql files
// this engine's own pipeline wrote, so a full SQL lexer is more
// machinery than the problem needs.
package sqlsplit

import "strings"

// Split breaks sql into trimmed, non-empty statements. Comments (both
// -- line comments and /* block */ comments) are stripped from the
// output; semicolons inside '...' string literals and "..." quoted
// identifiers are not treated as terminators.
func Split(sql string) []string {
	var (
		statements []string
		current    strings.Builder
		runes      = []rune(sql)
		i          = 0
		n          = len(runes)
	)

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for i < n {
		c := runes[i]

		switch {
		case c == '-' && i+1 < n && runes[i+1] == '-':
			for i < n && runes[i] != '\n' {
				i++
			}
			continue

		case c == '/' && i+1 < n && runes[i+1] == '*':
			i += 2
			for i+1 < n && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i += 2
			continue

		case c == '\'' || c == '"':
			quote := c
			current.WriteRune(c)
			i++
			for i < n {
				current.WriteRune(runes[i])
				if runes[i] == quote {
					// A doubled quote character is an escaped quote, not
					// the end of the literal.
					if i+1 < n && runes[i+1] == quote {
						i++
						current.WriteRune(runes[i])
						i++
						continue
					}
					i++
					break
				}
				i++
			}
			continue

		case c == ';':
			flush()
			i++
			continue

		default:
			current.WriteRune(c)
			i++
		}
	}

	flush()

	if statements == nil {
		return []string{}
	}
	return statements
}
