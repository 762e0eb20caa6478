package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/decicalc/internal/spacer"
)

func newSpaceCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "space [text...]",
		Short: "Space out text in capitals",
		Long: `Print the text with every character capitalized and followed by two
spaces, and every space widened to five. With no arguments, the text is read
from the input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = strings.TrimRight(string(b), "\r\n")
			}
			r, err := spacer.Transform(text)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				return enc.Encode(r)
			}
			p := newPrinter(cmd.OutOrStdout(), opts.noColor)
			p.println(p.paint(p.result, r.Transformed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON with its length")
	return cmd
}
