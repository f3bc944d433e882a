package add

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/tradelog/pkg/controller"
	"tableflip.dev/tradelog/pkg/legform"
	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/printers"
)

type fakeService struct {
	created []operation.Draft
	images  int
}

func (f *fakeService) List(context.Context) (map[operation.GroupKey][]operation.Operation, error) {
	return map[operation.GroupKey][]operation.Operation{}, nil
}

func (f *fakeService) Create(_ context.Context, d operation.Draft, images []operation.Blob) (operation.Operation, error) {
	f.created = append(f.created, d)
	f.images += len(images)
	return operation.Operation{ID: int64(len(f.created)), Underlying: d.Underlying, EnteredAt: d.EnteredAt, Legs: d.Legs}, nil
}

func (f *fakeService) Delete(context.Context, int64) error { return nil }

func TestAddSubmitsEveryLeg(t *testing.T) {
	svc := &fakeService{}
	var rendered []controller.View
	ctl := controller.New(svc, controller.WithRenderer(controller.RenderFunc(func(v controller.View) {
		rendered = append(rendered, v)
	})))

	a := &Add{
		Underlying: "SPY",
		Legs: []legform.SlotInput{
			{Action: "BUY", Type: "PUT", Quantity: "1", Expiration: "2024-03-15", Strike: "440", Premium: "3"},
			{Action: "BUY", Type: "CALL", Quantity: "1", Expiration: "2024-03-15", Strike: "460", Premium: "2"},
		},
		Images:     []operation.Blob{{Name: "a.png", Data: []byte("x")}},
		Controller: ctl,
	}
	if err := a.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(svc.created) != 1 || len(svc.created[0].Legs) != 2 || svc.images != 1 {
		t.Fatalf("unexpected create %+v", svc.created)
	}
	last := rendered[len(rendered)-1]
	if len(last.Operations) != 1 || !last.Selection.IsAll() {
		t.Fatalf("unexpected view %+v", last)
	}
}

func TestAddInvalidLegSendsNothing(t *testing.T) {
	svc := &fakeService{}
	a := &Add{
		Underlying: "SPY",
		Legs:       []legform.SlotInput{{Action: "HOLD", Type: "CALL", Quantity: "1", Expiration: "2024-03-15", Strike: "1", Premium: "1"}},
		Controller: controller.New(svc),
	}
	err := a.Do(context.Background())
	var verr *operation.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(svc.created) != 0 {
		t.Fatalf("server was called")
	}
	if a.Controller.FormOpen() {
		t.Fatalf("form left open")
	}
}

func TestAddPrintsAllTab(t *testing.T) {
	color.NoColor = true
	buf := &bytes.Buffer{}
	a := &Add{
		Underlying: "qqq",
		Legs: []legform.SlotInput{
			{Action: "SELL", Type: "PUT", Quantity: "2", Expiration: "2024-04-19", Strike: "400", Premium: "3"},
		},
		Controller: controller.New(&fakeService{}),
		Printer:    &printers.PrettyPrint{Out: buf},
	}
	if err := a.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !strings.Contains(buf.String(), "QQQ") {
		t.Fatalf("expected the new operation in output, got %q", buf.String())
	}
}
