package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/tradelog/pkg/commands/options"
	"tableflip.dev/tradelog/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	co := &options.ClientOptions{}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configuration and the journal server.",
		Example: `
tradelog info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(co)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			s := info.Info{
				Config: e.cfg,
				Remote: e.client,
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddClientArgs(cmd, co)

	topLevel.AddCommand(cmd)
}
