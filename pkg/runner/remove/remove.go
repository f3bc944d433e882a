package remove

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/tradelog/pkg/controller"
)

type Remove struct {
	ID         int64
	Controller *controller.Controller
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errors.New("can not delete, no controller")
	}
	if err := n.Controller.FetchAll(ctx); err != nil {
		return err
	}
	deleted, err := n.Controller.RequestDelete(ctx, n.ID)
	if err != nil {
		return err
	}
	if !deleted {
		_, _ = fmt.Fprintln(color.Output, "Cancelled.")
		return nil
	}
	_, _ = fmt.Fprintf(color.Output, "Deleted operation %d.\n", n.ID)
	return nil
}
