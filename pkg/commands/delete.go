package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/tradelog/pkg/commands/options"
	"tableflip.dev/tradelog/pkg/controller"
	"tableflip.dev/tradelog/pkg/runner/remove"
)

func addDelete(topLevel *cobra.Command) {
	co := &options.ClientOptions{}
	cf := &options.ConfirmOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an operation and its images.",
		Example: `
tradelog delete 42
tradelog delete 42 --yes
`,
		Args: io.ExactlyOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(co)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			s := remove.Remove{
				ID:         io.ID,
				Controller: e.controller(controller.WithConfirmer(cf.Confirmer())),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddConfirmArgs(cmd, cf)
	options.AddClientArgs(cmd, co)
	base.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
