package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/tradelog/pkg/config"
)

// ClientOptions
type ClientOptions struct {
	Server  string
	Timeout time.Duration
}

func AddClientArgs(cmd *cobra.Command, o *ClientOptions) {
	cmd.Flags().StringVar(&o.Server, "server", "",
		`Journal server URL, defaults to the configured "server".`)
	cmd.Flags().DurationVar(&o.Timeout, "timeout", 0,
		`Request timeout, example: --timeout=5s. Defaults to the configured "timeout".`)
}

// Apply overrides cfg with the flags that were set.
func (o *ClientOptions) Apply(cfg *config.Config) {
	if o.Server != "" {
		cfg.Server = o.Server
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
}
