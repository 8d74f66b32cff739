package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/brandon/mcp-mailview/pkg/types"
)

// FieldName is a header field a Field expression can search
type FieldName string

const (
	FieldSubject FieldName = "subject"
	FieldFrom    FieldName = "from"
	FieldTo      FieldName = "to"
)

// DefaultFields are searched when a pattern names no field
var DefaultFields = []FieldName{FieldSubject, FieldFrom, FieldTo}

// BodyFunc returns the cached plain-text body of uid, or "" when it has not
// been fetched
type BodyFunc func(uid int) string

// Expr is a parsed filter expression. The set of implementations is closed:
// *Attribute, *Field, *Body, *Any, *All and *Not.
type Expr interface {
	fmt.Stringer
	expr()
}

// Attribute compares a header flag with a value. Only "read" is known;
// other names match every header.
type Attribute struct {
	Name  string
	Value bool
}

// Field searches a regex in some header fields
type Field struct {
	Pattern string
	Fields  []FieldName
	re      *regexp.Regexp
}

// Body searches a regex in the plain-text body
type Body struct {
	Pattern string
	re      *regexp.Regexp
}

// Any matches when at least one child matches
type Any struct {
	Children []Expr
}

// All matches when every child matches
type All struct {
	Children []Expr
}

// Not matches when no child matches
type Not struct {
	Children []Expr
}

func (*Attribute) expr() {}
func (*Field) expr()     {}
func (*Body) expr()      {}
func (*Any) expr()       {}
func (*All) expr()       {}
func (*Not) expr()       {}

// compilePattern compiles pattern for case-insensitive substring search
func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// NewField creates a field expression; with no fields it searches
// DefaultFields
func NewField(pattern string, fields ...FieldName) (*Field, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields = DefaultFields
	}
	return &Field{Pattern: pattern, Fields: fields, re: re}, nil
}

// NewBody creates a body expression
func NewBody(pattern string) (*Body, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &Body{Pattern: pattern, re: re}, nil
}

func fieldValue(hdr types.Header, name FieldName) string {
	switch name {
	case FieldSubject:
		return hdr.Subject
	case FieldFrom:
		return hdr.From
	case FieldTo:
		return hdr.To
	}
	return ""
}

// Match evaluates e against hdr. bodies may be nil when e does not
// require bodies.
func Match(e Expr, hdr types.Header, bodies BodyFunc) bool {
	switch e := e.(type) {
	case *Attribute:
		if strings.EqualFold(e.Name, "read") {
			return hdr.Read == e.Value
		}
		return true
	case *Field:
		for _, name := range e.Fields {
			if e.re.MatchString(fieldValue(hdr, name)) {
				return true
			}
		}
		return false
	case *Body:
		body := ""
		if bodies != nil {
			body = bodies(hdr.UID)
		}
		return e.re.MatchString(body)
	case *Any:
		for _, child := range e.Children {
			if Match(child, hdr, bodies) {
				return true
			}
		}
		return false
	case *All:
		for _, child := range e.Children {
			if !Match(child, hdr, bodies) {
				return false
			}
		}
		return true
	case *Not:
		for _, child := range e.Children {
			if Match(child, hdr, bodies) {
				return false
			}
		}
		return true
	}
	return false
}

// RequiresBody reports whether e or any descendant is a Body expression
func RequiresBody(e Expr) bool {
	switch e := e.(type) {
	case *Body:
		return true
	case *Any:
		return anyRequiresBody(e.Children)
	case *All:
		return anyRequiresBody(e.Children)
	case *Not:
		return anyRequiresBody(e.Children)
	}
	return false
}

func anyRequiresBody(children []Expr) bool {
	for _, child := range children {
		if RequiresBody(child) {
			return true
		}
	}
	return false
}

func (e *Attribute) String() string {
	return fmt.Sprintf("%s=%t", e.Name, e.Value)
}

func (e *Field) String() string {
	if len(e.Fields) == 1 {
		name := string(e.Fields[0])
		return strings.ToUpper(name[:1]) + name[1:] + "~" + e.Pattern
	}
	return e.Pattern
}

func (e *Body) String() string {
	return "Body~" + e.Pattern
}

func (e *Any) String() string {
	return listString("Any", e.Children)
}

func (e *All) String() string {
	return listString("All", e.Children)
}

func (e *Not) String() string {
	return listString("Not", e.Children)
}

func listString(name string, children []Expr) string {
	parts := make([]string, len(children))
	for i, child := range children {
		parts[i] = child.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
