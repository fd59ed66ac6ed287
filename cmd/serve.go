package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/housing-eda/internal/viewer"
)

var (
	serveAddr string
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rendered artifacts and run history",
	Long: `Serves the artifact directory at /artifacts/, run history at /api/runs,
and a health check at /healthz. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		dir := serveDir
		if dir == "" {
			dir = cfg.Data.Dir
		}

		// A missing store degrades /api/runs to 503; artifacts still serve.
		st := openRunStore(ctx)
		if st != nil {
			defer st.Close() //nolint:errcheck
		}

		srv := viewer.NewServer(viewer.ServerOptions{
			Addr:        addr,
			ArtifactDir: dir,
			Store:       st,
		})
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, e.g. :8080)")
	serveCmd.Flags().StringVar(&serveDir, "dir", "", "artifact directory to serve (default data dir)")
	rootCmd.AddCommand(serveCmd)
}
