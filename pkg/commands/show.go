package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/tradelog/pkg/commands/options"
	"tableflip.dev/tradelog/pkg/runner/show"
)

func addShow(topLevel *cobra.Command) {
	co := &options.ClientOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one operation with its legs and justification.",
		Example: `
tradelog show 42
`,
		Args: io.ExactlyOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(co)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			s := show.Show{
				ID:     io.ID,
				JSON:   oo.JSON,
				Remote: e.client,
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddClientArgs(cmd, co)
	base.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
