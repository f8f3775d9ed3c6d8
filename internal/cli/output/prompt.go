package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// ReadlinePrompter reads the answer with readline from In and echoes the
// prompt to Out.
type ReadlinePrompter struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements Prompter. Only "y" and "yes" count as consent; an
// interrupt or end of input declines.
func (p ReadlinePrompter) Confirm(question string) (bool, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          question + " (y/N) ",
		Stdin:           io.NopCloser(p.In),
		Stdout:          p.Out,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	return IsYes(line), nil
}

// IsYes reports whether answer is an affirmative reply.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// StaticPrompter always answers with Answer.
type StaticPrompter struct {
	Answer bool
	Asked  []string
}

// Confirm implements Prompter.
func (p *StaticPrompter) Confirm(question string) (bool, error) {
	p.Asked = append(p.Asked, question)
	return p.Answer, nil
}
