// Command stepgraph builds cooking step graphs from annotation documents
// without running the API server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stepgraph",
		Short: "Build and check recipe step graphs",
		Long: "stepgraph reads an annotation document (artifacts plus annotated steps)\n" +
			"in JSON or YAML and turns it into parallel tracks and join steps.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.AddCommand(newBuildCmd(), newValidateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
