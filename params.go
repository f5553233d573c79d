package ocigo

import "github.com/go-ocilib/ocigo/internal/hashindex"

// BindNames is the result of scanning a SQL/PL-SQL text for named binds
// (":name") and recording their positions. Unlike the teacher's
// ParseNamedParams — which rewrites ":name" placeholders to ODBC's
// positional "?" because ODBC has no named-bind call — this driver keeps
// the original text unchanged: OCI binds named placeholders directly via
// OCIBindByName, so no rewrite is needed. The scanner itself (skip string
// literals, quoted identifiers, line/block comments) is kept verbatim
// from the teacher's params.go.
type BindNames struct {
	Query string
	names *hashindex.Index
}

// Names returns every distinct bind name, in first-appearance order.
func (b *BindNames) Names() []string {
	if b.names == nil {
		return nil
	}
	return b.names.Names()
}

// Positions returns every 1-based ordinal occurrence of name within the
// statement text (a name may repeat; OCI only requires binding it once,
// but the registry records every occurrence for diagnostics).
func (b *BindNames) Positions(name string) ([]int, bool) {
	if b.names == nil {
		return nil, false
	}
	return b.names.Positions(name)
}

// ParseBindNames scans query for ":name" placeholders, respecting string
// literals, double-quoted identifiers, and "--"/"/* */" comments. Returns
// nil if no named binds are present (the statement uses positional ":1"
// or "?" binds only).
func ParseBindNames(query string) *BindNames {
	if len(query) == 0 {
		return nil
	}

	hasNamed := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == ':' && i+1 < len(query) && isIdentStart(query[i+1]) {
			hasNamed = true
			break
		}
	}
	if !hasNamed {
		return nil
	}

	idx := hashindex.New()
	position := 0
	i := 0

	for i < len(query) {
		c := query[i]

		if c == '\'' {
			i++
			for i < len(query) {
				if query[i] == '\'' {
					if i+1 < len(query) && query[i+1] == '\'' {
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
			continue
		}

		if c == '"' {
			i++
			for i < len(query) {
				if query[i] == '"' {
					if i+1 < len(query) && query[i+1] == '"' {
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
			continue
		}

		if c == '-' && i+1 < len(query) && query[i+1] == '-' {
			for i < len(query) && query[i] != '\n' {
				i++
			}
			continue
		}

		if c == '/' && i+1 < len(query) && query[i+1] == '*' {
			i += 2
			for i+1 < len(query) {
				if query[i] == '*' && query[i+1] == '/' {
					i += 2
					break
				}
				i++
			}
			continue
		}

		// A bare ':' followed by a digit is a positional-style OCI bind
		// (":1"), not a named bind — leave it untouched.
		if c == ':' && i+1 < len(query) && isIdentStart(query[i+1]) {
			start := i + 1
			end := start
			for end < len(query) && isIdentChar(query[end]) {
				end++
			}
			name := query[start:end]
			position++
			idx.Add(name, position)
			i = end
			continue
		}

		i++
	}

	if idx.Len() == 0 {
		return nil
	}
	return &BindNames{Query: query, names: idx}
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
