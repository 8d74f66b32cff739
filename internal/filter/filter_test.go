package filter

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandon/mcp-mailview/pkg/types"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `plain`},
		{`a@b`, `a@at@b`},
		{`a\,b`, `a@comma@b`},
		{`\(x\)`, `@lparen@x@rparen@`},
		{`a\\b`, `a@backslash@b`},
		{`\\,`, `@backslash@,`},
		{`trailing\`, `trailing\`},
		{`\d+`, `\d+`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
			assert.Equal(t, tt.in, Unescape(Escape(tt.in)))
		})
	}
}

func TestEscapePlaceholderLikeInput(t *testing.T) {
	for _, in := range []string{"@at@", "@comma@", "x@lparen@y", "@@", "@backslash@\\,"} {
		assert.Equal(t, in, Unescape(Escape(in)), "input %q", in)
	}
}

func TestEscapeRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	alphabet := []string{"@", "a", "t", "c", "o", "m", "\\", ",", "(", ")", " ", "~", "b"}
	filterString := gen.SliceOf(gen.IntRange(0, len(alphabet)-1)).Map(func(idx []int) string {
		var b strings.Builder
		for _, i := range idx {
			b.WriteString(alphabet[i])
		}
		return b.String()
	})

	properties.Property("unescape(escape(s)) == s", prop.ForAll(
		func(s string) bool {
			return Unescape(Escape(s)) == s
		},
		filterString,
	))

	properties.Property("escaped text has no escape pairs left", prop.ForAll(
		func(s string) bool {
			escaped := Escape(s)
			return !strings.Contains(escaped, `\,`) && !strings.Contains(escaped, `\(`) &&
				!strings.Contains(escaped, `\)`)
		},
		filterString,
	))

	properties.TestingRun(t)
}

func header(uid int, subject, from, to string, read bool) types.Header {
	return types.Header{UID: uid, Subject: subject, From: from, To: to, Read: read}
}

func TestParseAnyReadOrSubject(t *testing.T) {
	e, err := Parse("Any(read=true, Subject~foo)")
	require.NoError(t, err)
	assert.False(t, RequiresBody(e))

	assert.True(t, Match(e, header(1, "nothing", "", "", true), nil))
	assert.True(t, Match(e, header(2, "About FOOD", "", "", false), nil))
	assert.False(t, Match(e, header(3, "bar", "foo@example.com", "", false), nil))
}

func TestParseProductions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare pattern", "invoice", "invoice"},
		{"subject", "Subject~hello", "Subject~hello"},
		{"from", "from~alice", "From~alice"},
		{"to", "To~bob", "To~bob"},
		{"body", "Body~secret", "Body~secret"},
		{"attribute", "READ=False", "read=false"},
		{"nested", "All(Any(a, b), Not(read=true))", "All(Any(a, b), Not(read=true))"},
		{"empty list", "Any()", "Any()"},
		{"escaped comma", `Subject~a\,b`, `Subject~a\,b`},
		{"escaped parens", `\(draft\)`, `\(draft\)`},
		{"at sign", "From~@example.com", "From~@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestParseEscapedPatternsMatchLiterally(t *testing.T) {
	e, err := Parse(`Any(Subject~a\,b, Subject~\(draft\))`)
	require.NoError(t, err)
	list, ok := e.(*Any)
	require.True(t, ok)
	require.Len(t, list.Children, 2)

	assert.True(t, Match(e, header(1, "x a,b y", "", "", false), nil))
	assert.True(t, Match(e, header(2, "(DRAFT) plan", "", "", false), nil))
	assert.False(t, Match(e, header(3, "draft", "", "", false), nil))

	e, err = Parse(`Subject~c:\\temp`)
	require.NoError(t, err)
	assert.True(t, Match(e, header(4, `path c:\temp\x`, "", "", false), nil))
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		offends string
	}{
		{"empty", "   ", ""},
		{"unbalanced open", "Any(a, b", "Any(a, b"},
		{"unbalanced close", "Any(a), b)", "a), b"},
		{"empty item", "All(a,,b)", "a,,b"},
		{"bare comma", "a, b", "a, b"},
		{"bad regex", "Subject~[abc", "[abc"},
		{"unescaped paren", "Body~f(x", "f(x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr), "err = %v", err)
			if tt.offends != "" {
				assert.Equal(t, tt.offends, syntaxErr.Input)
			}
		})
	}
}

func TestNotIsNor(t *testing.T) {
	always := &All{}
	never := &Any{}
	subject, err := NewField("foo", FieldSubject)
	require.NoError(t, err)

	hdrs := []types.Header{
		header(1, "foo", "", "", true),
		header(2, "bar", "", "", false),
	}
	for _, hdr := range hdrs {
		assert.False(t, Match(&Not{Children: []Expr{always, subject}}, hdr, nil))
		assert.False(t, Match(&Not{Children: []Expr{always, never}}, hdr, nil))
		assert.True(t, Match(&Not{Children: []Expr{never}}, hdr, nil))
		assert.True(t, Match(&Not{}, hdr, nil))
	}
	assert.False(t, Match(&Not{Children: []Expr{never, subject}}, hdrs[0], nil))
	assert.True(t, Match(&Not{Children: []Expr{never, subject}}, hdrs[1], nil))
}

func TestEmptyCombinators(t *testing.T) {
	hdr := header(1, "x", "", "", false)
	assert.False(t, Match(&Any{}, hdr, nil))
	assert.True(t, Match(&All{}, hdr, nil))
}

func TestFieldDefaultsToSubjectFromTo(t *testing.T) {
	e, err := Parse("alice")
	require.NoError(t, err)

	assert.True(t, Match(e, header(1, "", "Alice <a@x>", "", false), nil))
	assert.True(t, Match(e, header(2, "", "", "alice@x", false), nil))
	assert.True(t, Match(e, header(3, "for ALICE", "", "", false), nil))
	assert.False(t, Match(e, types.Header{UID: 4, CC: "alice@x"}, nil))
}

func TestBodyFilter(t *testing.T) {
	e, err := Parse("Not(Body~unsubscribe)")
	require.NoError(t, err)
	assert.True(t, RequiresBody(e))

	bodies := map[int]string{1: "click to UNSUBSCRIBE", 2: "lunch?"}
	lookup := func(uid int) string { return bodies[uid] }

	assert.False(t, Match(e, header(1, "", "", "", false), lookup))
	assert.True(t, Match(e, header(2, "", "", "", false), lookup))
	assert.True(t, Match(e, header(3, "", "", "", false), lookup))
	assert.True(t, Match(e, header(3, "", "", "", false), nil))
}

func TestUnknownAttributeMatchesAll(t *testing.T) {
	e, err := Parse("flagged=true")
	require.NoError(t, err)
	assert.True(t, Match(e, header(1, "", "", "", false), nil))
}

func TestCompileNegated(t *testing.T) {
	e, err := Compile("read=false", true)
	require.NoError(t, err)
	assert.True(t, Match(e, header(1, "", "", "", true), nil))
	assert.False(t, Match(e, header(2, "", "", "", false), nil))
}

func TestSetReplaceAndApply(t *testing.T) {
	var set Set
	unread, err := Parse("read=false")
	require.NoError(t, err)
	foo, err := Parse("Subject~foo")
	require.NoError(t, err)
	bar, err := Parse("Subject~bar")
	require.NoError(t, err)

	set.Replace(UnreadButton, "read=false", unread)
	set.Replace(QuickFilter, "foo", foo)
	set.Replace(QuickFilter, "bar", bar)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, "bar", set.Filters()[1].Query)

	headers := []types.Header{
		header(5, "bar one", "", "", false),
		header(4, "foo", "", "", false),
		header(3, "bar read", "", "", true),
		header(2, "another bar", "", "", false),
	}
	shown := set.Apply(headers, nil)
	require.Len(t, shown, 2)
	assert.Equal(t, 5, shown[0].UID)
	assert.Equal(t, 2, shown[1].UID)
	assert.False(t, set.RequiresBody())

	assert.True(t, set.Remove(QuickFilter))
	assert.False(t, set.Remove(QuickFilter))
	assert.Len(t, set.Apply(headers, nil), 3)

	set.Clear()
	assert.Equal(t, headers, set.Apply(headers, nil))
}

func TestButtonsFromConfig(t *testing.T) {
	buttons := ButtonsFromConfig(map[string]string{
		"filter.work":    "From~@corp.com",
		"FILTER.news":    "Subject~newsletter",
		"filter.unused":  "x",
		"filterButtons":  "news, work, missing",
		"prefer_html":    "false",
		"filter.bad.key": "ignored",
	})

	require.Len(t, buttons, 3)
	assert.Equal(t, UnreadButton, buttons[0].Name)
	assert.Equal(t, "read=false", buttons[0].Query)
	assert.Equal(t, "news", buttons[1].Name)
	assert.Equal(t, "work", buttons[2].Name)
	assert.Equal(t, "From~@corp.com", buttons[2].Query)
}

func TestButtonsAlwaysStartWithUnread(t *testing.T) {
	buttons := Buttons(nil, nil)
	require.Len(t, buttons, 1)
	assert.Equal(t, UnreadButton, buttons[0].Name)
}
