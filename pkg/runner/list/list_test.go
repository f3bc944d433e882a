package list

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"tableflip.dev/tradelog/pkg/controller"
	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/printers"
	"tableflip.dev/tradelog/pkg/selection"
)

type fakeService struct {
	groups map[operation.GroupKey][]operation.Operation
}

func (f *fakeService) List(context.Context) (map[operation.GroupKey][]operation.Operation, error) {
	return f.groups, nil
}

func (f *fakeService) Create(context.Context, operation.Draft, []operation.Blob) (operation.Operation, error) {
	return operation.Operation{}, nil
}

func (f *fakeService) Delete(context.Context, int64) error { return nil }

func op(id int64, underlying, exp string) operation.Operation {
	return operation.Operation{
		ID:         id,
		Underlying: underlying,
		EnteredAt:  time.Date(2024, 3, 1, 10, int(id), 0, 0, time.UTC),
		Legs: []operation.Leg{{
			Action:     operation.Sell,
			Type:       operation.Put,
			Quantity:   1,
			Expiration: operation.MustDate(exp),
			Strike:     decimal.NewFromInt(400),
			Premium:    decimal.NewFromInt(3),
		}},
	}
}

func TestListFiltersByTab(t *testing.T) {
	color.NoColor = true
	svc := &fakeService{groups: map[operation.GroupKey][]operation.Operation{
		"2024-03-15": {op(1, "SPY", "2024-03-15")},
		"2024-04-19": {op(2, "QQQ", "2024-04-19")},
	}}
	buf := &bytes.Buffer{}
	l := &List{
		Tab:        selection.Group("2024-04-19"),
		Controller: controller.New(svc),
		Printer:    &printers.PrettyPrint{Out: buf},
	}
	if err := l.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Apr 19, 2024 - 1 operation") {
		t.Fatalf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "QQQ") || strings.Contains(out, "SPY") {
		t.Fatalf("wrong operations listed:\n%s", out)
	}
}

func TestListUnknownTabShowsAll(t *testing.T) {
	color.NoColor = true
	svc := &fakeService{groups: map[operation.GroupKey][]operation.Operation{
		"2024-03-15": {op(1, "SPY", "2024-03-15")},
	}}
	buf := &bytes.Buffer{}
	l := &List{
		Tab:        selection.Group("2030-01-01"),
		Controller: controller.New(svc),
		Printer:    &printers.PrettyPrint{Out: buf},
	}
	if err := l.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !strings.Contains(buf.String(), "All - 1 operation") {
		t.Fatalf("output:\n%s", buf.String())
	}
}
