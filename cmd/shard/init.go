package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shard/internal/objectstore"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new Shard repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := objectstore.Open(repoRootFlag(cmd))
			if err := store.Init(); err != nil {
				return fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty Shard repository in .shard/")
			return nil
		},
	}
}
