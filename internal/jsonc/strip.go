// Package jsonc strips // and /* */ comments from JSON documents such as
// tsconfig.json so they can be handed to a strict JSON decoder.
//
// The stripper is a small finite-state machine. Step is a pure transition
// function so the machine can be exercised one character at a time; Strip
// drives it over a whole document byte by byte. Every marker is ASCII, so
// multi-byte sequences and invalid UTF-8 pass through unchanged and Column
// counts bytes.
//
// Known limitations: backslash-escaped quotes are not recognised, and a
// "/*" inside a line comment opens a block comment that the end of the
// line does not close. A commented-out line such as
//
//	// "@old/*": ["old/*"],
//
// therefore hides the rest of the document up to the next "*/".
package jsonc

import "strings"

// State is a state of the comment stripping machine.
type State int

// Machine states.
const (
	Plain State = iota
	InLineComment
	InBlockComment
	// InObjectLiteral is reserved for structural tracking and never entered.
	InObjectLiteral
	InQuote
)

func (s State) String() string {
	switch s {
	case Plain:
		return "Plain"
	case InLineComment:
		return "InLineComment"
	case InBlockComment:
		return "InBlockComment"
	case InObjectLiteral:
		return "InObjectLiteral"
	case InQuote:
		return "InQuote"
	default:
		return "Unknown"
	}
}

// Machine is the full state of the stripper between two runes.
// Previous is a one-level undo slot, not a stack: nested block comments
// are not supported.
type Machine struct {
	Current  State
	Previous State
	Line     int
	Column   int
}

// Action tells the driver what to do with the rune that was just fed.
type Action struct {
	// Emit is true when the rune belongs in the output.
	Emit bool
	// Skip is the number of following runes that were consumed as part of
	// a two-rune marker.
	Skip int
}

// NewMachine returns a machine positioned at the start of a document.
func NewMachine() Machine {
	return Machine{Current: Plain, Previous: Plain, Line: 1, Column: 1}
}

func (m Machine) set(s State) Machine {
	if s != m.Current {
		m.Previous = m.Current
		m.Current = s
	}
	return m
}

func (m Machine) inComment() bool {
	return m.Current == InLineComment || m.Current == InBlockComment
}

func isQuote(r rune) bool {
	return r == '"' || r == '\''
}

// Step feeds cur to the machine. next is the character after cur, or 0 at
// the end of input.
func Step(m Machine, cur, next rune) (Machine, Action) {
	m.Column++
	if cur == '\n' {
		if m.Current == InLineComment {
			m = m.set(Plain)
		}
		m.Line++
		m.Column = 1
	}

	switch {
	case cur == '/' && next == '*' && m.Current != InQuote:
		return m.set(InBlockComment), Action{Skip: 1}
	case cur == '/' && next == '/' && m.Current == Plain:
		return m.set(InLineComment), Action{Skip: 1}
	case cur == '*' && next == '/' && m.Current == InBlockComment:
		return m.set(m.Previous), Action{Skip: 1}
	}

	if isQuote(cur) {
		switch m.Current {
		case Plain:
			m = m.set(InQuote)
		case InQuote:
			m = m.set(Plain)
		}
	}

	return m, Action{Emit: !m.inComment()}
}

// Strip removes every comment that is not inside a quoted string.
// Everything outside comments is copied byte for byte.
func Strip(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	m := NewMachine()
	for i := 0; i < len(text); i++ {
		var next rune
		if i+1 < len(text) {
			next = rune(text[i+1])
		}

		var act Action
		m, act = Step(m, rune(text[i]), next)
		if act.Emit {
			b.WriteByte(text[i])
		}
		i += act.Skip
	}
	return b.String()
}
