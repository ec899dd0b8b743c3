package schema

import (
	"strings"
)

// splitStatements scans src for consecutive statements, each beginning
// with prefix (case-sensitive, matching the compiler's own generated
// casing), and ending at the terminating ';'. Single-quoted string
// literals are scanned over without inspection, with '' treated as an
// embedded quote rather than the end of the literal — the non-trivial
// part of spec §4.L's algorithm, since generated DDL can legitimately
// contain ';' and quote characters inside a literal (e.g. a CHECK
// constraint's default text).
func splitStatements(src, prefix string) []string {
	var out []string
	for {
		start := strings.Index(src, prefix)
		if start < 0 {
			break
		}
		src = src[start:]
		end := scanStatementEnd(src)
		out = append(out, strings.TrimSpace(src[:end]))
		src = src[end:]
	}
	return out
}

// scanStatementEnd returns the index just past the terminating ';' of the
// first statement in src, honoring single-quoted literals.
func scanStatementEnd(src string) int {
	inQuote := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inQuote:
			if c == '\'' {
				if i+1 < len(src) && src[i+1] == '\'' {
					i++ // embedded '' quote, skip both
					continue
				}
				inQuote = false
			}
		case c == '\'':
			inQuote = true
		case c == ';':
			return i + 1
		}
	}
	return len(src)
}

// tableName extracts the table name from a CREATE TABLE statement,
// accepting bracketed names like [foo bar] alongside bare identifiers.
func tableName(createStmt string) string {
	rest := strings.TrimPrefix(createStmt, "CREATE TABLE ")
	rest = strings.TrimPrefix(rest, "IF NOT EXISTS ")
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "[") {
		if end := strings.IndexByte(rest, ']'); end >= 0 {
			return rest[:end+1]
		}
	}
	end := strings.IndexAny(rest, " (\t\n")
	if end < 0 {
		return rest
	}
	return rest[:end]
}

// indexTarget extracts the table name an index create targets, from its
// "ON <name>" clause.
func indexTarget(createIndexStmt string) string {
	upper := strings.ToUpper(createIndexStmt)
	onIdx := strings.LastIndex(upper, " ON ")
	if onIdx < 0 {
		return ""
	}
	rest := strings.TrimSpace(createIndexStmt[onIdx+len(" ON "):])
	if strings.HasPrefix(rest, "[") {
		if end := strings.IndexByte(rest, ']'); end >= 0 {
			return rest[:end+1]
		}
	}
	end := strings.IndexAny(rest, " (\t\n")
	if end < 0 {
		return rest
	}
	return rest[:end]
}

// sameTable compares two possibly-bracketed table name spellings for
// equality, the way SQL identifier matching treats [foo] and foo the
// same target.
func sameTable(a, b string) bool {
	return unbracket(a) == unbracket(b)
}

func unbracket(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		return name[1 : len(name)-1]
	}
	return name
}
