package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tableflip.dev/tradelog/pkg/commands/options"
	"tableflip.dev/tradelog/pkg/controller"
	"tableflip.dev/tradelog/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	co := &options.ClientOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
tradelog ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(co)
			if err != nil {
				return err
			}
			if o := e.cfg.Log.Output; o == "" || o == "stderr" || o == "stdout" {
				// the terminal belongs to the ui
				e.log = zap.NewNop()
			}
			defer func() { _ = e.log.Sync() }()
			i := ui.UI{Controller: e.controller(controller.WithConfirmer(controller.AlwaysConfirm))}
			return i.Do(cmd.Context())
		},
	}

	options.AddClientArgs(cmd, co)

	topLevel.AddCommand(cmd)
}
