package options

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// IDOptions holds how operations are identified on the command line.
type IDOptions struct {
	ShowID bool
	// ID is the operation named by the positional argument.
	ID int64
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each operation.")
}

// ExactlyOneID is a cobra.PositionalArgs that parses the single operation id
// argument into o.ID.
func (o *IDOptions) ExactlyOneID(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one operation id, got %d", len(args))
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid operation id %q", args[0])
	}
	o.ID = id
	return nil
}
