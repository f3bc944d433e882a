package tabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/tradelog/pkg/controller"
	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/printers"
)

type Tabs struct {
	Calendar   bool
	JSON       bool
	Controller *controller.Controller
	Printer    *printers.PrettyPrint
}

type tabJSON struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

func (n *Tabs) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errors.New("can not list tabs, no controller")
	}
	if err := n.Controller.FetchAll(ctx); err != nil {
		return err
	}
	tabs := n.Controller.Tabs()

	if n.JSON {
		out := make([]tabJSON, 0, len(tabs))
		for _, tab := range tabs {
			out = append(out, tabJSON{Key: tab.Key.String(), Label: tab.Label, Active: tab.Active})
		}
		b, err := json.Marshal(out)
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
	if n.Calendar {
		keys := make([]operation.GroupKey, 0, len(tabs))
		for _, tab := range tabs {
			if key, ok := tab.Key.Key(); ok {
				keys = append(keys, key)
			}
		}
		pp.Calendar(keys)
		return nil
	}
	pp.Tabs(tabs)
	return nil
}
