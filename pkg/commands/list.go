package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/tradelog/pkg/commands/options"
	"tableflip.dev/tradelog/pkg/runner/list"
)

func addList(topLevel *cobra.Command) {
	co := &options.ClientOptions{}
	io := &options.IDOptions{}
	to := &options.TabOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List operations, newest first.",
		Long:    base.Wrap80("List the operations of one expiration tab, newest entry first. Without --tab every operation is listed."),
		Example: `
tradelog list
tradelog list --tab 2024-03-15 --show-id
tradelog list --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			sel, err := to.Selection()
			if err != nil {
				return err
			}
			e, err := loadEnv(co)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			l := list.List{
				ShowID:     io.ShowID,
				JSON:       oo.JSON,
				Tab:        sel,
				Controller: e.controller(),
			}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	options.AddClientArgs(cmd, co)
	options.AddShowIDArgs(cmd, io)
	options.AddTabArgs(cmd, to)
	base.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
