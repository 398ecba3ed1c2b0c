package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shard/internal/config"
	"shard/internal/objectstore"
	"shard/internal/remoteclient"
	syncpkg "shard/internal/sync"
)

func newPullCmd() *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:   "pull <sidecar>",
		Short: "Pull missing blocks for a manifest sidecar from a remote server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fail(cmd, err)
			}
			if remote == "" {
				remote = cfg.RemoteURL
			}
			if remote == "" {
				return fail(cmd, fmt.Errorf("--remote is required (or set SHARD_REMOTE_URL)"))
			}

			sidecar := args[0]
			store := objectstore.Open(repoRootFlag(cmd))
			if err := store.Init(); err != nil {
				return fail(cmd, err)
			}
			client := remoteclient.New(remote,
				remoteclient.WithTimeout(cfg.RequestTimeout),
				remoteclient.WithMaxRetries(cfg.MaxRetries))
			orch := syncpkg.New(store, client)
			orch.PoolSize = cfg.WorkerPoolSize

			fmt.Fprintln(cmd.OutOrStdout(), "Fetching blocks for", sidecar)
			if err := orch.Pull(context.Background(), sidecar); err != nil {
				return fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All blocks present.")
			return nil
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "remote server URL (defaults to SHARD_REMOTE_URL)")
	return cmd
}
