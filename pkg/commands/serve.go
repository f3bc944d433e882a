package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tableflip.dev/tradelog/pkg/config"
	"tableflip.dev/tradelog/pkg/logging"
	"tableflip.dev/tradelog/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	listen := ""
	path := ""

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the journal server.",
		Example: `
tradelog serve
tradelog serve --listen :9000 --path /var/lib/tradelog
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			if path != "" {
				cfg.Path = path
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.Encoding, cfg.Log.Output)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			s := serve.Serve{
				Listen: cfg.Listen,
				Config: cfg,
				Logger: log,
			}
			return s.Do(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", `Address to listen on, defaults to the configured "listen".`)
	cmd.Flags().StringVar(&path, "path", "", `Data directory, defaults to the configured "path".`)

	topLevel.AddCommand(cmd)
}
