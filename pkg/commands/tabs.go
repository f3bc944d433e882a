package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/tradelog/pkg/commands/options"
	"tableflip.dev/tradelog/pkg/runner/tabs"
)

func addTabs(topLevel *cobra.Command) {
	co := &options.ClientOptions{}
	calendar := false

	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "List the expiration tabs.",
		Example: `
tradelog tabs
tradelog tabs --calendar
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(co)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			s := tabs.Tabs{
				Calendar:   calendar,
				JSON:       oo.JSON,
				Controller: e.controller(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&calendar, "calendar", false, "Show expirations on a month calendar.")
	options.AddClientArgs(cmd, co)
	base.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
