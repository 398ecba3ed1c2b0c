package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shard/internal/config"
	"shard/internal/index"
	"shard/internal/objectstore"
	"shard/internal/remoteclient"
	syncpkg "shard/internal/sync"
)

func newPushCmd() *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push tracked files' committed manifests to a remote server",
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

			store := objectstore.Open(repoRootFlag(cmd))
			ix := index.Open(store.Root())
			tracked, err := ix.Load()
			if err != nil {
				return fail(cmd, err)
			}
			if len(tracked) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to push.")
				return nil
			}

			client := remoteclient.New(remote,
				remoteclient.WithTimeout(cfg.RequestTimeout),
				remoteclient.WithMaxRetries(cfg.MaxRetries))
			orch := syncpkg.New(store, client)
			orch.PoolSize = cfg.WorkerPoolSize

			var firstErr error
			for _, path := range tracked {
				sidecar := path + ".shard.json"
				if !fileExists(sidecar) {
					fmt.Fprintf(cmd.OutOrStdout(), "Skipping %s (no manifest found, commit first)\n", path)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pushing %s...\n", path)
				id, err := orch.Push(context.Background(), sidecar)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					_ = fail(cmd, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pushed %s -> %s\n", path, id)
			}
			return firstErr
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "remote server URL (defaults to SHARD_REMOTE_URL)")
	return cmd
}
