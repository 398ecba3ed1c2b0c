package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shard/internal/chunker"
	"shard/internal/index"
	"shard/internal/manifest"
	"shard/internal/objectstore"
)

func newCommitCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit tracked files into manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := objectstore.Open(repoRootFlag(cmd))
			if err := store.Init(); err != nil {
				return fail(cmd, err)
			}
			ix := index.Open(store.Root())
			tracked, err := ix.Load()
			if err != nil {
				return fail(cmd, err)
			}
			if len(tracked) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to commit (no tracked files).")
				return nil
			}

			for _, path := range tracked {
				if _, err := os.Stat(path); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Warning: tracked file %s missing, skipping.\n", path)
					continue
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Chunking %s...\n", path)
				records, err := chunker.ChunkFile(path)
				if err != nil {
					return fail(cmd, err)
				}
				for _, r := range records {
					if err := store.WriteObject(r.Identity, r.StoredBytes); err != nil {
						return fail(cmd, err)
					}
				}

				id, serialized, _, err := manifest.Build(path, manifest.BlocksFromRecords(records), map[string]string{"message": message})
				if err != nil {
					return fail(cmd, err)
				}
				if err := store.WriteManifest(id, serialized); err != nil {
					return fail(cmd, err)
				}

				sidecar := path + ".shard.json"
				if err := os.WriteFile(sidecar, serialized, 0o644); err != nil {
					return fail(cmd, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Committed %s -> %s\n", path, id)
				fmt.Fprintf(cmd.OutOrStdout(), "Updated manifest: %s\n", sidecar)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
