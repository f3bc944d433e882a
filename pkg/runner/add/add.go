package add

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/tradelog/pkg/controller"
	"tableflip.dev/tradelog/pkg/legform"
	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/printers"
)

type Add struct {
	Underlying    string
	EnteredAt     time.Time
	Justification string
	Legs          []legform.SlotInput
	Images        []operation.Blob

	Controller *controller.Controller
	// Printer, when set, prints the All tab once the operation is stored.
	Printer *printers.PrettyPrint
}

func (n *Add) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errors.New("can not add, no controller")
	}
	if len(n.Legs) == 0 {
		return errors.New("at least one --leg is required")
	}

	// Load first so the new operation lands in a complete cache.
	if err := n.Controller.FetchAll(ctx); err != nil {
		return err
	}

	n.Controller.OpenNewOperationForm()
	defer n.Controller.CloseForm()

	values := controller.FormValues{
		Underlying:    n.Underlying,
		EnteredAt:     n.EnteredAt,
		Justification: n.Justification,
		Legs:          map[int]legform.SlotInput{legform.FirstSlot: n.Legs[0]},
		Images:        n.Images,
	}
	for _, in := range n.Legs[1:] {
		seq, err := n.Controller.AddLeg()
		if err != nil {
			return err
		}
		values.Legs[seq] = in
	}
	if err := n.Controller.Submit(ctx, values); err != nil {
		return err
	}
	if n.Printer != nil {
		v := n.Controller.View()
		n.Printer.TitleWithCount("All", len(v.Operations))
		n.Printer.Operations(v.Operations...)
	}
	return nil
}
