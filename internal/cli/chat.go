package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/soyeahso/lively/internal/animation"
	"github.com/soyeahso/lively/internal/backend"
	"github.com/soyeahso/lively/internal/config"
	"github.com/soyeahso/lively/internal/hooks"
	"github.com/soyeahso/lively/internal/identity"
	"github.com/soyeahso/lively/internal/logging"
	"github.com/soyeahso/lively/internal/persona"
	"github.com/soyeahso/lively/internal/session"
	"github.com/soyeahso/lively/internal/tui"
	"github.com/soyeahso/lively/internal/viewer"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		backendURL string
		noViewer   bool
		style      bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Sign in and start chatting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if backendURL != "" {
				cfg.Backend.BaseURL = backendURL
			}
			if noViewer {
				cfg.Viewer.Enabled = false
			}
			if style {
				cfg.Persona.Mode = config.PersonaModeStyle
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			// The TUI owns the terminal, so logs go to a file.
			fileLog, closer, err := logging.NewFile(paths.LogFile(cfg.Logging), cfg.Logging.Level)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runChat(ctx, cmd, cfg, fileLog)
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend", "", "backend base URL (overrides config)")
	cmd.Flags().BoolVar(&noViewer, "no-viewer", false, "do not start the character viewer")
	cmd.Flags().BoolVar(&style, "style", false, "offer speech styles instead of personas")

	return cmd
}

func runChat(ctx context.Context, cmd *cobra.Command, cfg config.Config, log *logging.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := backend.NewClient(cfg.Backend.BaseURL, nil, log)
	hookMgr := hooks.NewManager(log)

	var (
		wg     sync.WaitGroup
		bridge *animation.Bridge
	)
	if cfg.Viewer.Enabled {
		hub := viewer.NewHub(cfg.Viewer.AllowedOrigins, log)
		outbox := animation.NewOutbox(cfg.Viewer.QueueSize, log)
		bridge = animation.NewBridge(
			animation.NewTriggers(cfg.Animation.GreetingLabels, cfg.Animation.FarewellLabels),
			outbox, log)

		ready := make(chan string, 1)
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := hub.Serve(ctx, cfg.Viewer.Addr, ready); err != nil {
				log.Error().Err(err).Msg("viewer hub stopped")
				close(ready)
			}
		}()
		go func() {
			defer wg.Done()
			outbox.Run(ctx, hub)
		}()

		if addr, ok := <-ready; ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Character viewer: http://%s/\n", addr)
		}
	}

	composer := session.New(session.Config{
		Machine: identity.New(client, cfg.Identity.KnownNames, log),
		Options: persona.Options(cfg.Persona.Mode, cfg.Persona.Options),
		Backend: client,
		Hooks:   hookMgr,
		Bridge:  bridge,
	}, log)

	log.Info().Str("backend", client.BaseURL()).Bool("viewer", cfg.Viewer.Enabled).Msg("chat session starting")
	err := tui.Run(ctx, composer)

	cancel()
	wg.Wait()
	return err
}
