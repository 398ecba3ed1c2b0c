package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shard/internal/index"
	"shard/internal/objectstore"
	"shard/internal/shardfs"
)

func newTrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track <path>",
		Short: "Start tracking a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return fail(cmd, shardfs.NotFound(path))
			}
			store := objectstore.Open(repoRootFlag(cmd))
			ix := index.Open(store.Root())
			if err := ix.Add(path); err != nil {
				return fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tracking", path)
			return nil
		},
	}
}
