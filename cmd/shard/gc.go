package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"shard/internal/gc"
	"shard/internal/index"
	"shard/internal/objectstore"
)

func newGCCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Garbage collect blocks unreachable from any live manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := objectstore.Open(repoRootFlag(cmd))
			ix := index.Open(store.Root())
			tracked, err := ix.Load()
			if err != nil {
				return fail(cmd, err)
			}
			sidecars := make([]string, 0, len(tracked))
			for _, path := range tracked {
				sidecars = append(sidecars, filepath.Clean(path)+".shard.json")
			}

			result, err := gc.Collect(store, sidecars, dryRun)
			if err != nil {
				return fail(cmd, err)
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would free %d bytes (%d objects).\n", result.BytesFreed, result.ObjectCount)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Freed %d bytes (%d objects).\n", result.BytesFreed, result.ObjectCount)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be freed without deleting")
	return cmd
}
