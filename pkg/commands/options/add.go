package options

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/tradelog/pkg/legform"
	"tableflip.dev/tradelog/pkg/operation"
)

var enteredLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	operation.LayoutISO,
}

// AddOptions
type AddOptions struct {
	Underlying    string
	EnteredString string
	Justification string
	Legs          []string
	Images        []string
}

func AddAddArgs(cmd *cobra.Command, o *AddOptions) {
	cmd.Flags().StringVarP(&o.Underlying, "underlying", "u", "",
		"Underlying symbol, example: --underlying=SPY.")
	cmd.Flags().StringVar(&o.EnteredString, "entered", "",
		`When the trade was entered, example: --entered="2024-03-01 10:30". Defaults to now.`)
	cmd.Flags().StringVarP(&o.Justification, "justification", "j", "",
		"Why the trade was taken. Markdown is rendered by `show`.")
	cmd.Flags().StringArrayVarP(&o.Legs, "leg", "l", nil,
		fmt.Sprintf(`A leg as "%s", example: --leg "BUY CALL 1 2024-03-15 450 2.5". Repeat for more legs.`, legform.ExprFormat))
	cmd.Flags().StringArrayVar(&o.Images, "image", nil,
		"Path of an image to attach. Repeat for more images.")
}

// GetEntered parses --entered in local time. An empty flag returns the zero
// time.
func (o *AddOptions) GetEntered() (time.Time, error) {
	raw := strings.TrimSpace(o.EnteredString)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range enteredLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --entered %q, want RFC3339, \"2006-01-02 15:04\" or \"2006-01-02\"", raw)
}

// GetLegs parses every --leg.
func (o *AddOptions) GetLegs() ([]legform.SlotInput, error) {
	legs := make([]legform.SlotInput, 0, len(o.Legs))
	for _, expr := range o.Legs {
		in, err := legform.ParseExpr(expr)
		if err != nil {
			return nil, err
		}
		legs = append(legs, in)
	}
	return legs, nil
}

// GetImages reads every --image.
func (o *AddOptions) GetImages() ([]operation.Blob, error) {
	blobs := make([]operation.Blob, 0, len(o.Images))
	for _, path := range o.Images {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		blobs = append(blobs, operation.Blob{Name: filepath.Base(path), Data: data})
	}
	return blobs, nil
}
