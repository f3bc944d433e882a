package list

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/tradelog/pkg/controller"
	"tableflip.dev/tradelog/pkg/printers"
	"tableflip.dev/tradelog/pkg/selection"
)

type List struct {
	ShowID bool
	JSON   bool
	// Tab is unset for the default tab.
	Tab        selection.Selection
	Controller *controller.Controller
	Printer    *printers.PrettyPrint
}

func (n *List) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errors.New("can not list, no controller")
	}
	if err := n.Controller.FetchAll(ctx); err != nil {
		return err
	}
	if !n.Tab.IsUnset() {
		n.Controller.SelectTab(n.Tab)
	}
	view := n.Controller.View()

	if n.JSON {
		b, err := json.Marshal(view.Operations)
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
	pp.ShowID = n.ShowID
	title := "All"
	for _, tab := range view.Tabs {
		if tab.Active {
			title = tab.Label
		}
	}
	pp.TitleWithCount(title, len(view.Operations))
	pp.Operations(view.Operations...)
	return nil
}
