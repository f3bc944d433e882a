package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/viewmodel"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
	// Now anchors relative times; defaults to time.Now.
	Now func() time.Time
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now != nil {
		return pp.Now()
	}
	return time.Now()
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " operation")
	default:
		_, _ = c.Fprintln(pp.out(), " operations")
	}
}

// Tabs prints the tab strip, marking the active tab.
func (pp *PrettyPrint) Tabs(tabs []viewmodel.Tab) {
	if len(tabs) == 0 {
		pp.none()
		return
	}
	active := color.New(color.Bold, color.FgHiCyan)
	f := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, tab := range tabs {
		marker, label := " ", tab.Label
		if tab.Active {
			marker, label = "*", active.Sprint(tab.Label)
		}
		tbl.AddRow(marker, label, f.Sprint(tab.Key.String()))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Operations prints one row per operation.
func (pp *PrettyPrint) Operations(ops ...operation.Operation) {
	if len(ops) == 0 {
		pp.none()
		return
	}
	h := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	f := color.New(color.Faint)
	now := pp.now()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	if pp.ShowID {
		tbl.AddRow(h.Sprint("ID"), h.Sprint("UNDERLYING"), h.Sprint("STRATEGY"), h.Sprint("EXPIRES"), h.Sprint("LEGS"), h.Sprint("ENTERED"))
	} else {
		tbl.AddRow(h.Sprint("UNDERLYING"), h.Sprint("STRATEGY"), h.Sprint("EXPIRES"), h.Sprint("LEGS"), h.Sprint("ENTERED"))
	}
	for _, op := range ops {
		cols := []interface{}{
			op.Underlying,
			strategyOf(op),
			viewmodel.Label(operation.KeyFor(op)),
			len(op.Legs),
			f.Sprint(humanize.RelTime(op.EnteredAt, now, "ago", "from now")),
		}
		if pp.ShowID {
			cols = append([]interface{}{y.Sprint(op.ID)}, cols...)
		}
		tbl.AddRow(cols...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Show prints a single operation with its legs, images and justification.
func (pp *PrettyPrint) Show(op operation.Operation) error {
	f := color.New(color.Faint)
	buy := color.New(color.FgGreen)
	sell := color.New(color.FgRed)

	pp.Title(fmt.Sprintf("%s %s", op.Underlying, strategyOf(op)))
	_, _ = f.Fprintf(pp.out(), "#%d entered %s (%s)\n\n", op.ID,
		op.EnteredAt.Local().Format("Jan 2, 2006 15:04"),
		humanize.RelTime(op.EnteredAt, pp.now(), "ago", "from now"))

	tbl := uitable.New()
	tbl.Separator = "  "
	for i, leg := range op.Legs {
		action := buy.Sprint(leg.Action)
		if leg.Action == operation.Sell {
			action = sell.Sprint(leg.Action)
		}
		tbl.AddRow(fmt.Sprintf("%d.", i+1), action, leg.Quantity, leg.Type, leg.Strike.String(), leg.Expiration.String(), "@ "+leg.Premium.StringFixed(2))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)

	if len(op.Images) > 0 {
		pp.NewLine()
		for _, img := range op.Images {
			_, _ = f.Fprintf(pp.out(), "image %s\n", img.Path)
		}
	}

	if strings.TrimSpace(op.Justification) == "" {
		pp.NewLine()
		return nil
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return fmt.Errorf("printers: markdown renderer: %w", err)
	}
	md, err := r.Render(op.Justification)
	if err != nil {
		return fmt.Errorf("printers: render justification: %w", err)
	}
	_, _ = fmt.Fprint(pp.out(), md)
	return nil
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

func strategyOf(op operation.Operation) string {
	if op.Strategy != "" {
		return op.Strategy
	}
	return operation.DetectStrategy(op.Legs)
}
