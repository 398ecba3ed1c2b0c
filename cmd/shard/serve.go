package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"shard/internal/ledger"
	"shard/internal/metrics"
	"shard/internal/remoteserver"
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		storeRoot string
		apiKey    string
		ledgerDSN string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a Shard remote server",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := ledger.Connect(context.Background(), ledgerDSN)
			if err != nil {
				return fail(cmd, err)
			}
			defer l.Close()

			reg := metrics.NewRegistry(prometheus.DefaultRegisterer)

			opts := []remoteserver.Option{
				remoteserver.WithLedger(l),
				remoteserver.WithMetrics(reg),
			}
			if apiKey != "" {
				opts = append(opts, remoteserver.WithAPIKey(apiKey))
			}

			srv, err := remoteserver.New(storeRoot, opts...)
			if err != nil {
				return fail(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s, storage root %s\n", addr, storeRoot)
			log.Printf("shard serve: storage root %s", storeRoot)
			return http.ListenAndServe(addr, srv.Router())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().StringVar(&storeRoot, "store", ".", "server-owned storage root")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "bearer API key required for PUT requests")
	cmd.Flags().StringVar(&ledgerDSN, "ledger-dsn", "", "Postgres DSN for the optional audit ledger")
	return cmd
}
