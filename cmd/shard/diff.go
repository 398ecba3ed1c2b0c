package main

import (
	"fmt"

	"github.com/spf13/cobra"

	diffpkg "shard/internal/diff"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <path>",
		Short: "Show block-level diff for a tracked file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			report, err := diffpkg.Compute(path, path+".shard.json")
			if err != nil {
				return fail(cmd, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Diff for %s:\n", path)
			fmt.Fprintf(out, "  Old blocks: %d\n", report.OldBlocks)
			fmt.Fprintf(out, "  New blocks: %d\n", report.NewBlocks)
			fmt.Fprintf(out, "  Unchanged:  %d\n", report.Unchanged)
			fmt.Fprintf(out, "  Added:      %d\n", report.Added)
			fmt.Fprintf(out, "  Removed:    %d\n", report.Removed)
			if report.NewBlocks > 0 {
				fmt.Fprintf(out, "  Change:     %.1f%%\n", report.ChangePct)
			}
			return nil
		},
	}
}
