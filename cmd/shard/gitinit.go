package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shard/internal/shardfs"
)

const gitignoreStanza = "\n# Shard\n.shard/\n!*.shard.json\n"

func newGitInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "git-init",
		Short: "Configure Git to ignore .shard/ but track manifest sidecars",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.OpenFile(".gitignore", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return fail(cmd, shardfs.IOError("open .gitignore", err))
			}
			defer f.Close()
			if _, err := f.WriteString(gitignoreStanza); err != nil {
				return fail(cmd, shardfs.IOError("write .gitignore", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated .gitignore for Shard.")
			return nil
		},
	}
}
