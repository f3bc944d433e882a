package show

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/printers"
)

// Getter fetches one operation from the journal server.
type Getter interface {
	Get(ctx context.Context, id int64) (operation.Operation, error)
}

type Show struct {
	ID      int64
	JSON    bool
	Remote  Getter
	Printer *printers.PrettyPrint
}

func (n *Show) Do(ctx context.Context) error {
	if n.Remote == nil {
		return errors.New("can not show, no server")
	}
	op, err := n.Remote.Get(ctx, n.ID)
	if err != nil {
		return err
	}
	if n.JSON {
		b, err := json.Marshal(op)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	return pp.Show(op)
}
