package main

import (
	"fmt"

	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/spf13/cobra"
)

// validationReport is the validate command's output
type validationReport struct {
	Valid       bool                   `json:"valid" yaml:"valid"`
	Tracks      int                    `json:"tracks" yaml:"tracks"`
	Joins       int                    `json:"joins" yaml:"joins"`
	Steps       int                    `json:"steps" yaml:"steps"`
	Fallback    bool                   `json:"fallback" yaml:"fallback"`
	Skipped     []string               `json:"skipped_steps,omitempty" yaml:"skipped_steps,omitempty"`
	Counts      map[stepgraph.Kind]int `json:"counts,omitempty" yaml:"counts,omitempty"`
	Diagnostics []stepgraph.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// errInvalid makes validate exit non-zero after the report is printed
type errInvalid struct{ warnings int }

func (e errInvalid) Error() string {
	return fmt.Sprintf("document produced %d warning(s)", e.warnings)
}

func newValidateCmd() *cobra.Command {
	var flags ioFlags
	cmd := &cobra.Command{
		Use:   "validate <document|->",
		Short: "Report every diagnostic; exits non-zero when there are any",
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
			report := validate(doc, stepgraph.Options{WarnDuplicateArtifacts: flags.warnDuplicates})
			if err := writeValue(cmd.OutOrStdout(), out, report); err != nil {
				return err
			}
			if !report.Valid {
				return errInvalid{warnings: len(report.Diagnostics) + len(report.Skipped)}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "input format: json or yaml (default from extension)")
	f.StringVarP(&flags.output, "output", "o", formatJSON, "output format: json or yaml")
	f.BoolVar(&flags.warnDuplicates, "warn-duplicates", false, "warn about repeated artifact ids")
	return cmd
}

func validate(doc stepgraph.Document, opts stepgraph.Options) validationReport {
	steps, skipped := doc.Decode()
	res := stepgraph.BuildWithOptions(doc.Artifacts, steps, opts)

	diags := res.Diagnostics
	if diags == nil {
		diags = []stepgraph.Diagnostic{}
	}
	var counts map[stepgraph.Kind]int
	if len(diags) > 0 {
		counts = stepgraph.CountByKind(diags)
	}

	return validationReport{
		Valid:       len(diags) == 0 && len(skipped) == 0,
		Tracks:      len(res.Graph.Tracks),
		Joins:       len(res.Graph.Joins),
		Steps:       res.Graph.StepCount(),
		Fallback:    res.Graph.IsFallback(),
		Skipped:     skipped,
		Counts:      counts,
		Diagnostics: diags,
	}
}
