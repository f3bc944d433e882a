package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/tradelog/pkg/selection"
)

// TabOptions
type TabOptions struct {
	Tab string
}

func AddTabArgs(cmd *cobra.Command, o *TabOptions) {
	cmd.Flags().StringVarP(&o.Tab, "tab", "t", "",
		`Expiration tab to show, example: --tab=2024-03-15, --tab=N/A or --tab=all.`)
}

// Selection parses the tab flag. An empty flag selects nothing.
func (o *TabOptions) Selection() (selection.Selection, error) {
	if o.Tab == "" {
		return selection.Unset, nil
	}
	return selection.Parse(o.Tab)
}
