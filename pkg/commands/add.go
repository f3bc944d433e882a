package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/tradelog/pkg/commands/options"
	"tableflip.dev/tradelog/pkg/legform"
	"tableflip.dev/tradelog/pkg/printers"
	"tableflip.dev/tradelog/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	co := &options.ClientOptions{}
	ao := &options.AddOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a new operation.",
		Long: base.Wrap80("Log a new multi-leg operation. Every leg is validated before anything is sent to the server; "+
			"invalid legs are reported together.") + "\n\nLeg format: " + legform.ExprFormat,
		Example: `
tradelog add -u SPY --leg "BUY CALL 1 2024-03-15 450 2.5" --leg "SELL CALL 1 2024-03-15 460 1.1"
tradelog add -u QQQ -l "SELL PUT 2 2024-04-19 400 3" -j "Support at **400**" --image chart.png
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			entered, err := ao.GetEntered()
			if err != nil {
				return err
			}
			legs, err := ao.GetLegs()
			if err != nil {
				return err
			}
			images, err := ao.GetImages()
			if err != nil {
				return err
			}
			e, err := loadEnv(co)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			s := add.Add{
				Underlying:    ao.Underlying,
				EnteredAt:     entered,
				Justification: ao.Justification,
				Legs:          legs,
				Images:        images,
				Controller:    e.controller(),
			}
			if !oo.JSON {
				s.Printer = &printers.PrettyPrint{ShowID: true}
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddAddArgs(cmd, ao)
	options.AddClientArgs(cmd, co)
	base.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
