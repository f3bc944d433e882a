package ui

import (
	"context"
	"errors"

	"tableflip.dev/tradelog/pkg/controller"
	teaui "tableflip.dev/tradelog/pkg/runner/tea"
)

type UI struct {
	Controller *controller.Controller
}

func (n *UI) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errors.New("can not open ui, no controller")
	}
	return teaui.Run(ctx, n.Controller)
}
