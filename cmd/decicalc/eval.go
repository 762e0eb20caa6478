package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/decicalc"
)

func newEvalCmd(opts *options) *cobra.Command {
	var (
		inname string
		given  []string
		steps  bool
		echo   bool
	)
	cmd := &cobra.Command{
		Use:   "eval [expression...]",
		Short: "Evaluate expressions",
		Long: `Evaluate each argument as an expression. With no arguments, each
non-blank line of the input is an expression.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := decicalc.NewContext(opts.contextOptions()...)
			for _, d := range given {
				nm, vl, ok := strings.Cut(d, "=")
				if !ok {
					return fmt.Errorf(`variable definitions must be "name=value", not %q`, d)
				}
				if err := ctx.Set(strings.TrimSpace(nm), vl); err != nil {
					return err
				}
			}

			exprs := args
			if len(exprs) == 0 || inname != "" {
				in, closer, err := infile(cmd, inname)
				if err != nil {
					return err
				}
				defer closer.Close()
				lines, err := readLines(in)
				if err != nil {
					return err
				}
				exprs = append(exprs, lines...)
			}

			p := newPrinter(cmd.OutOrStdout(), opts.noColor)
			failed := 0
			for _, src := range exprs {
				if echo {
					e, err := decicalc.ParseString(src, decicalc.MaxDepth(opts.depth))
					if err == nil {
						fmt.Fprint(cmd.OutOrStdout(), e, " : ")
					}
				}
				r := ctx.Evaluate(src, steps)
				p.evaluated("", r)
				if r.Err != nil {
					failed++
					continue
				}
				p.steps(r.Steps)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d expressions failed", failed, len(exprs))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&inname, "in", "", `input file, or "-" for stdin (default stdin if no args given)`)
	f.StringArrayVar(&given, "set", nil, "name=value variable definition (any number of times)")
	f.BoolVarP(&steps, "steps", "s", false, "print each evaluation step")
	f.BoolVar(&echo, "echo", false, "print parse trees")
	return cmd
}

// infile opens the named input, or the command's input for "" or "-".
func infile(cmd *cobra.Command, name string) (io.Reader, io.Closer, error) {
	if name == "" || name == "-" {
		return cmd.InOrStdin(), io.NopCloser(nil), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// readLines reads the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			lines = append(lines, s)
		}
	}
	return lines, sc.Err()
}
