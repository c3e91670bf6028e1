package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/soyeahso/lively/internal/devbackend"
	"github.com/spf13/cobra"
)

func newDevBackendCmd() *cobra.Command {
	var (
		addr         string
		dbPath       string
		noAutoEnroll bool
	)

	cmd := &cobra.Command{
		Use:   "devbackend",
		Short: "Run a local stand-in for the chat backend",
		Long: "Serves /chat, /history and /verify with canned replies and keyword intents, " +
			"backed by SQLite, so the client can be tried without the real service.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.DevBackend.Addr = addr
			}
			if dbPath != "" {
				cfg.DevBackend.DBPath = dbPath
			}
			if noAutoEnroll {
				cfg.DevBackend.AutoEnroll = false
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			store, err := devbackend.OpenStore(paths.DevBackendDB(cfg.DevBackend), log)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := devbackend.NewServer(store, devbackend.Options{
				AutoEnroll:  cfg.DevBackend.AutoEnroll,
				CORSOrigins: cfg.DevBackend.AllowedOrigins,
			}, log)
			return srv.Serve(ctx, cfg.DevBackend.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	cmd.Flags().BoolVar(&noAutoEnroll, "no-auto-enroll", false, "reject unknown users instead of creating them")

	return cmd
}
