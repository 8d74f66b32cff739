package filter

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	listExpr  = regexp.MustCompile(`(?is)^(any|all|not)\((.*)\)$`)
	attExpr   = regexp.MustCompile(`(?i)^(\w+)=(true|false)$`)
	bodyExpr  = regexp.MustCompile(`(?is)^body~(.*)$`)
	fieldExpr = regexp.MustCompile(`(?is)^(subject|from|to)~(.*)$`)
)

// SyntaxError is returned for a filter string that matches none of the
// productions. Input is the offending part of the filter.
type SyntaxError struct {
	Input  string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("filter syntax error in %q: %s", e.Input, e.Reason)
}

// Parse parses a filter string:
//
//	expr      := listExpr | attExpr | bodyExpr | fieldExpr
//	listExpr  := ("Any"|"All"|"Not") "(" expr ("," expr)* ")"
//	attExpr   := ident "=" ("true"|"false")
//	bodyExpr  := "Body" "~" pattern
//	fieldExpr := [("Subject"|"From"|"To") "~"] pattern
//
// Keywords are case-insensitive. Literal commas, parentheses and
// backslashes inside a pattern are written \, \( \) and \\.
func Parse(input string) (Expr, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, &SyntaxError{Input: input, Reason: "empty filter"}
	}
	return parseEscaped(Escape(s))
}

// Compile parses query and, when negated, wraps it so it matches exactly
// the headers query does not match
func Compile(query string, negated bool) (Expr, error) {
	e, err := Parse(query)
	if err != nil {
		return nil, err
	}
	if negated {
		return &Not{Children: []Expr{e}}, nil
	}
	return e, nil
}

func parseEscaped(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &SyntaxError{Input: s, Reason: "empty expression"}
	}

	if m := listExpr.FindStringSubmatch(s); m != nil {
		parts, err := splitList(m[2])
		if err != nil {
			return nil, err
		}
		children := make([]Expr, 0, len(parts))
		for _, part := range parts {
			child, err := parseEscaped(part)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		switch strings.ToLower(m[1]) {
		case "any":
			return &Any{Children: children}, nil
		case "all":
			return &All{Children: children}, nil
		default:
			return &Not{Children: children}, nil
		}
	}

	if m := attExpr.FindStringSubmatch(s); m != nil {
		return &Attribute{
			Name:  strings.ToLower(m[1]),
			Value: strings.EqualFold(m[2], "true"),
		}, nil
	}

	if m := bodyExpr.FindStringSubmatch(s); m != nil {
		pattern, err := leafPattern(m[1])
		if err != nil {
			return nil, err
		}
		body, err := NewBody(pattern)
		if err != nil {
			return nil, &SyntaxError{Input: pattern, Reason: err.Error()}
		}
		return body, nil
	}

	fields := DefaultFields
	raw := s
	if m := fieldExpr.FindStringSubmatch(s); m != nil {
		fields = []FieldName{FieldName(strings.ToLower(m[1]))}
		raw = m[2]
	}
	pattern, err := leafPattern(raw)
	if err != nil {
		return nil, err
	}
	field, err := NewField(pattern, fields...)
	if err != nil {
		return nil, &SyntaxError{Input: pattern, Reason: err.Error()}
	}
	return field, nil
}

// leafPattern unescapes a pattern, rejecting structural characters that
// were not escaped
func leafPattern(escaped string) (string, error) {
	if i := strings.IndexAny(escaped, ",()"); i >= 0 {
		return "", &SyntaxError{
			Input:  Unescape(escaped),
			Reason: fmt.Sprintf("unescaped %q in pattern", escaped[i]),
		}
	}
	return Unescape(escaped), nil
}

// splitList splits the inside of a list expression on commas that are
// not nested in parentheses. An empty list yields no parts.
func splitList(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, &SyntaxError{Input: Unescape(s), Reason: "unbalanced ')'"}
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, &SyntaxError{Input: Unescape(s), Reason: "unbalanced '('"}
	}
	parts = append(parts, s[start:])

	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return nil, &SyntaxError{Input: Unescape(s), Reason: "empty list item"}
		}
	}
	return parts, nil
}
