package main

import (
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var flags ioFlags
	cmd := &cobra.Command{
		Use:   "build <document|->",
		Short: "Build a step graph and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := inputFormat(flags.input, args[0])
			if err != nil {
				return err
			}
			out, err := normalizeFormat(flags.output)
			if err != nil {
				return err
			}

			doc, err := readDocument(args[0], in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			res := doc.Build(stepgraph.Options{WarnDuplicateArtifacts: flags.warnDuplicates})
			return writeValue(cmd.OutOrStdout(), out, res.Graph)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "input format: json or yaml (default from extension)")
	f.StringVarP(&flags.output, "output", "o", formatJSON, "output format: json or yaml")
	f.BoolVar(&flags.warnDuplicates, "warn-duplicates", false, "warn about repeated artifact ids")
	return cmd
}
