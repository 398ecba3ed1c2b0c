// Command shard is the CLI driver around the core library: it tracks
// files, commits them into manifests, and moves blocks to and from a
// remote server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shard/internal/config"
	"shard/internal/shardfs"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(shardfs.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shard",
		Short:         "Content-addressed storage and sync for large binary files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("repo", "", "repository root (defaults to the current directory)")

	root.AddCommand(
		newInitCmd(),
		newTrackCmd(),
		newCommitCmd(),
		newStatusCmd(),
		newDiffCmd(),
		newCheckoutCmd(),
		newPushCmd(),
		newPullCmd(),
		newGCCmd(),
		newGitInitCmd(),
		newServeCmd(),
	)
	return root
}

// repoRootFlag resolves the repository root: the --repo flag if set,
// otherwise internal/config's environment-driven default.
func repoRootFlag(cmd *cobra.Command) string {
	root, _ := cmd.Flags().GetString("repo")
	if root != "" {
		return root
	}
	cfg, err := config.Load()
	if err != nil || cfg.RepoRoot == "" {
		return "."
	}
	return cfg.RepoRoot
}

func fail(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	return err
}
