package main

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/decicalc"
)

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Evaluate expressions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &session{
				ctx: decicalc.NewContext(opts.contextOptions()...),
				out: newPrinter(cmd.OutOrStdout(), opts.noColor),
			}
			in := cmd.InOrStdin()
			s.out.println(s.out.paint(s.out.title, "Expression Evaluator"))
			s.out.println("Enter 'exit' to quit, 'set <variable> <value>' to set a variable")
			if isTerminal(in) {
				return s.prompt()
			}
			return s.scan(in)
		},
	}
}

// session is one interactive evaluation session.
type session struct {
	ctx *decicalc.Context
	out *printer
}

// prompt runs the session on the terminal.
func (s *session) prompt() error {
	p := promptui.Prompt{Label: "Enter an expression"}
	for {
		line, err := p.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !s.handle(line) {
			return nil
		}
	}
}

// scan runs the session on lines of non-terminal input.
func (s *session) scan(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if !s.handle(sc.Text()) {
			return nil
		}
	}
	return sc.Err()
}

// handle processes one line of input. It returns false when the session
// should end.
func (s *session) handle(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return true
	case strings.EqualFold(line, "exit"):
		return false
	case len(line) > 4 && strings.EqualFold(line[:4], "set "):
		parts := strings.Fields(line)
		if len(parts) < 3 {
			s.out.println("Usage: set <variable> <value>")
			return true
		}
		msg := s.ctx.SetVariable(parts[1], strings.Join(parts[2:], " "))
		if strings.HasPrefix(msg, "Error: ") {
			s.out.println(s.out.paint(s.out.err, msg))
		} else {
			s.out.println(msg)
		}
		return true
	}
	r := s.ctx.Evaluate(line, true)
	s.out.evaluated("Result: ", r)
	if len(r.Steps) > 0 {
		s.out.println()
		s.out.println("Step-by-step evaluation:")
		s.out.steps(r.Steps)
	}
	return true
}
