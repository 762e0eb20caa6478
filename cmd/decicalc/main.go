// Command decicalc evaluates decimal expressions.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/decicalc"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by all commands.
type options struct {
	prec     uint32
	fprec    uint32
	depth    int
	noColor  bool
	logLevel string
}

func (o *options) contextOptions() []decicalc.ContextOption {
	return []decicalc.ContextOption{
		decicalc.Prec(o.prec),
		decicalc.FuncPrec(o.fprec),
		decicalc.MaxDepth(o.depth),
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:   "decicalc",
		Short: "Arbitrary-precision decimal calculator",
		Long: `decicalc evaluates arithmetic expressions in exact decimal arithmetic.

Expressions use + - * / ^, parentheses, implicit multiplication such as 2x,
the functions sin cos tan sqrt log log10 exp abs floor ceil round, and the
constants pi and e.`,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.Uint32Var(&opts.prec, "prec", decicalc.DefaultPrec, "significant digits of arithmetic")
	pf.Uint32Var(&opts.fprec, "func-prec", decicalc.DefaultFuncPrec, "significant digits of log, exp, and fractional powers")
	pf.IntVar(&opts.depth, "max-depth", decicalc.DefaultMaxDepth, "deepest nesting of parentheses and calls")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newEvalCmd(&opts),
		newReplCmd(&opts),
		newServeCmd(&opts),
		newSpaceCmd(&opts),
	)
	return root
}
