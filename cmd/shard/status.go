package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shard/internal/index"
	"shard/internal/objectstore"
)

// newStatusCmd reports a thin presence-based status: it does not re-chunk
// a tracked file to detect content drift, only whether the file and its
// manifest sidecar exist.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show status of tracked files",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := objectstore.Open(repoRootFlag(cmd))
			ix := index.Open(store.Root())
			tracked, err := ix.Load()
			if err != nil {
				return fail(cmd, err)
			}
			if len(tracked) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tracked files.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Tracked files:")
			for _, path := range tracked {
				marker := " "
				switch {
				case !fileExists(path):
					marker = "D" // deleted from the workspace
				case !fileExists(path + ".shard.json"):
					marker = "?" // tracked but never committed
				default:
					marker = "M" // may have changed; run diff for certainty
				}
				fmt.Fprintf(cmd.OutOrStdout(), " %s %s\n", marker, path)
			}
			return nil
		},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
