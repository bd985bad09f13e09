package index

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrEmptyQuery is returned for a query with no terms.
var ErrEmptyQuery = errors.New("empty query")

// condition is a SQL boolean expression over the messages table aliased m.
type condition struct {
	sql  string
	args []any
}

// tokenize splits q on whitespace, keeping double-quoted runs together.
func tokenize(q string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range q {
		switch {
		case r == '"':
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// compileQuery translates a search query into a condition. Terms are
// ANDed; "or" separates alternatives; "not" or a leading "-" negates the
// next term.
func compileQuery(q string) (condition, error) {
	tokens := tokenize(q)
	if len(tokens) == 0 {
		return condition{}, ErrEmptyQuery
	}

	var (
		groups  []string
		current []string
		args    []any
		negate  bool
	)
	closeGroup := func() error {
		if negate {
			return fmt.Errorf("parsing query %q: dangling not", q)
		}
		if len(current) == 0 {
			return fmt.Errorf("parsing query %q: missing term", q)
		}
		groups = append(groups, "("+strings.Join(current, " AND ")+")")
		current = nil
		return nil
	}

	for _, tok := range tokens {
		switch strings.ToLower(tok) {
		case "and":
			continue
		case "or":
			if err := closeGroup(); err != nil {
				return condition{}, err
			}
			continue
		case "not":
			negate = !negate
			continue
		}
		if len(tok) > 1 && tok[0] == '-' {
			negate = !negate
			tok = tok[1:]
		}

		sql, termArgs := compileTerm(tok)
		if negate {
			sql = "NOT " + sql
			negate = false
		}
		current = append(current, sql)
		args = append(args, termArgs...)
	}
	if err := closeGroup(); err != nil {
		return condition{}, err
	}

	return condition{sql: strings.Join(groups, " OR "), args: args}, nil
}

func compileTerm(tok string) (string, []any) {
	if tok == "*" {
		return "1 = 1", nil
	}

	if prefix, value, ok := strings.Cut(tok, ":"); ok && value != "" {
		switch strings.ToLower(prefix) {
		case "tag":
			return "EXISTS (SELECT 1 FROM tags g WHERE g.message_id = m.id AND g.tag = ?)", []any{value}
		case "from":
			return `m.from_addr LIKE ? ESCAPE '\'`, []any{likePattern(value)}
		case "to":
			return `m.to_addr LIKE ? ESCAPE '\'`, []any{likePattern(value)}
		case "subject":
			return `m.subject LIKE ? ESCAPE '\'`, []any{likePattern(value)}
		case "id":
			return "m.id = ?", []any{strings.Trim(value, "<>")}
		case "thread":
			return "m.thread_id = ?", []any{value}
		}
	}

	p := likePattern(tok)
	return `(m.subject LIKE ? ESCAPE '\' OR m.from_addr LIKE ? ESCAPE '\')`, []any{p, p}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
