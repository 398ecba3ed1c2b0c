package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shard/internal/objectstore"
	syncpkg "shard/internal/sync"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <sidecar>",
		Short: "Restore a file from its manifest sidecar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sidecar := args[0]
			store := objectstore.Open(repoRootFlag(cmd))
			orch := syncpkg.New(store, nil)
			fmt.Fprintln(cmd.OutOrStdout(), "Restoring from", sidecar)
			if err := orch.Checkout(sidecar); err != nil {
				return fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Done.")
			return nil
		},
	}
}
