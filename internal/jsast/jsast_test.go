package jsast

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `"use strict";
// loads the widgets
const b = require('@app/widgets/b');
const { x } = require("./local"), fs = require("fs");
function load() {
  return require(/* lazy */ "@app/lazy").default;
}
obj.require("@app/not-a-call-to-require");
require(name);
module.exports = { n: 1, ok: true, none: null };
`

func requireCalls(p *Program) []*CallExpression {
	var calls []*CallExpression
	Inspect(p, func(n Node) bool {
		if call, ok := IsCallTo(n, "require"); ok {
			calls = append(calls, call)
		}
		return true
	})
	return calls
}

func TestParseFindsRequireCalls(t *testing.T) {
	p, err := Parse(context.Background(), []byte(sample))
	require.NoError(t, err)

	calls := requireCalls(p)
	require.Len(t, calls, 5)

	var refs []string
	for _, call := range calls {
		require.NotEmpty(t, call.Arguments)
		if lit, ok := IsString(call.Arguments[0]); ok {
			refs = append(refs, lit.Value)
		} else {
			refs = append(refs, "<dynamic>")
		}
	}
	assert.Equal(t, []string{"@app/widgets/b", "./local", "fs", "@app/lazy", "<dynamic>"}, refs)
}

func TestParseLiterals(t *testing.T) {
	p, err := Parse(context.Background(), []byte(`f('it\'s', "a\tb", 1.5, false, null, "A\x42");`))
	require.NoError(t, err)

	calls := []*CallExpression{}
	Inspect(p, func(n Node) bool {
		if c, ok := n.(*CallExpression); ok {
			calls = append(calls, c)
		}
		return true
	})
	require.Len(t, calls, 1)

	args := calls[0].Arguments
	require.Len(t, args, 6)

	kinds := []LiteralKind{StringLiteral, StringLiteral, NumberLiteral, BooleanLiteral, NullLiteral, StringLiteral}
	values := []string{"it's", "a\tb", "1.5", "false", "null", "AB"}
	for i, arg := range args {
		lit, ok := arg.(*Literal)
		require.True(t, ok, "argument %d is %T", i, arg)
		assert.Equal(t, kinds[i], lit.Kind)
		assert.Equal(t, values[i], lit.Value)
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse(context.Background(), []byte("const a = require('x';\nfunction ("))
	require.Error(t, err)

	var se *SyntaxError
	require.True(t, errors.As(err, &se), "got %T", err)
	assert.GreaterOrEqual(t, se.Line, 1)
}

func TestWalkVisitsEveryNodeInPreOrder(t *testing.T) {
	p, err := Parse(context.Background(), []byte(`a(b, c(d));`))
	require.NoError(t, err)

	var names []string
	Inspect(p, func(n Node) bool {
		switch n := n.(type) {
		case *Identifier:
			names = append(names, n.Name)
		case *CallExpression:
			names = append(names, "call")
		}
		return true
	})
	assert.Equal(t, []string{"call", "a", "b", "call", "c", "d"}, names)
}

func TestInspectSkipsChildren(t *testing.T) {
	p, err := Parse(context.Background(), []byte(`a(b(c));`))
	require.NoError(t, err)

	var names []string
	Inspect(p, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			names = append(names, id.Name)
		}
		_, isCall := n.(*CallExpression)
		return !isCall
	})
	assert.Empty(t, names)
}

func TestGenerateExpandedKeepsLayout(t *testing.T) {
	p, err := Parse(context.Background(), []byte(sample))
	require.NoError(t, err)

	out, err := Generate(p, GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, sample, out, "unmodified tree regenerates the input")

	calls := requireCalls(p)
	calls[0].Arguments[0] = NewString("./app/widgets/b", calls[0].Arguments[0].Pos())
	calls[3].Arguments[0] = NewString("../app/lazy", calls[3].Arguments[0].Pos())

	out, err = Generate(p, GenerateOptions{})
	require.NoError(t, err)

	want := strings.Replace(sample, `require('@app/widgets/b')`, `require("./app/widgets/b")`, 1)
	want = strings.Replace(want, `"@app/lazy"`, `"../app/lazy"`, 1)
	assert.Equal(t, want, out)
	assert.Contains(t, out, "// loads the widgets")
	assert.Contains(t, out, "/* lazy */")
}

func TestGenerateCompact(t *testing.T) {
	src := "/*! keep me */\nconst a = require(\"@app/a\");\n\n// kept too\nmodule.exports = {\n  a: a\n};\n"
	p, err := Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	calls := requireCalls(p)
	require.Len(t, calls, 1)
	calls[0].Arguments[0] = NewString("./a", calls[0].Arguments[0].Pos())

	out, err := Generate(p, GenerateOptions{Compact: true})
	require.NoError(t, err)
	assert.Equal(t, "/*! keep me */const a=require(\"./a\");// kept too\nmodule.exports={a:a};\n", out)
}

func TestGenerateCompactKeepsComments(t *testing.T) {
	src := "// keep this comment\nconst l = require(\"./local/thing\");\n/* block note */\nmodule.exports = l;\n"
	p, err := Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	out, err := Generate(p, GenerateOptions{Compact: true})
	require.NoError(t, err)
	assert.Equal(t, "// keep this comment\nconst l=require(\"./local/thing\");/* block note */module.exports=l;\n", out)
}

func TestGenerateCompactKeepsTokensApart(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"keywords", "const  x = typeof  y;\n", "const x=typeof y;\n"},
		{"unary after binary", "a = b - -c + +d;\n", "a=b- -c+ +d;\n"},
		{"number member", "x = 1 .toString();\n", "x=1 .toString();\n"},
		{"regex after division", "x = a / /re/.source.length;\n", "x=a/ /re/.source.length;\n"},
		{"return line kept", "function f() {\n  return\n  1;\n}\n", "function f(){return\n1;}\n"},
		{"no semicolon", "a = b\n(c)\n", "a=b\n(c)\n"},
		{"strings untouched", "s = 'a  b' + `c  ${ d }`;\n", "s='a  b'+`c  ${ d }`;\n"},
		{"multi-line block comment", "x = 1 /*\n*/ + 2;\n", "x=1/*\n*/+2;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(context.Background(), []byte(tt.src))
			require.NoError(t, err)

			out, err := Generate(p, GenerateOptions{Compact: true})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestQuoteUnquote(t *testing.T) {
	tests := []struct {
		value string
		raw   string
	}{
		{"./a/b", `"./a/b"`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
		{"line\nbreak", `"line\nbreak"`},
		{"tab\there", `"tab\there"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.raw, Quote(tt.value))
		got, err := Unquote(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.value, got)
	}

	got, err := Unquote(`'\u{1F600}'`)
	require.NoError(t, err)
	assert.Equal(t, "\U0001F600", got)

	_, err = Unquote(`"bad`)
	assert.Error(t, err)
	_, err = Unquote(`"\x4"`)
	assert.Error(t, err)
}

func TestNewStringRawMatchesValue(t *testing.T) {
	lit := NewString(`../a"b`, Span{Start: 3, End: 9})
	assert.Equal(t, StringLiteral, lit.Kind)
	assert.Equal(t, Span{Start: 3, End: 9}, lit.Pos())

	back, err := Unquote(lit.Raw)
	require.NoError(t, err)
	assert.Equal(t, lit.Value, back)
}
