// Package operation defines the journal data model: operations, their option
// legs and attached images, and the expiration group an operation belongs to.
package operation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Action is the side of a leg.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// AllActions returns the supported actions.
func AllActions() []Action {
	return []Action{Buy, Sell}
}

// ParseAction converts raw input into an Action. The legacy journal spellings
// COMPRA and VENTA are accepted as aliases.
func ParseAction(raw string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY", "COMPRA":
		return Buy, nil
	case "SELL", "VENTA":
		return Sell, nil
	default:
		return "", fmt.Errorf("operation: unknown action %q", raw)
	}
}

// OptionType is the contract type of a leg.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// AllOptionTypes returns the supported option types.
func AllOptionTypes() []OptionType {
	return []OptionType{Call, Put}
}

// ParseOptionType converts raw input into an OptionType.
func ParseOptionType(raw string) (OptionType, error) {
	switch OptionType(strings.ToUpper(strings.TrimSpace(raw))) {
	case Call:
		return Call, nil
	case Put:
		return Put, nil
	default:
		return "", fmt.Errorf("operation: unknown option type %q", raw)
	}
}

// Leg is one option contract line of an operation.
type Leg struct {
	Action     Action          `json:"action"`
	Type       OptionType      `json:"type"`
	Quantity   int             `json:"quantity"`
	Expiration Date            `json:"expiration"`
	Strike     decimal.Decimal `json:"strike"`
	Premium    decimal.Decimal `json:"premium"`
}

func (l Leg) String() string {
	return fmt.Sprintf("%s %d %s @ %s (exp %s) premium %s",
		l.Action, l.Quantity, l.Type, l.Strike.String(), l.Expiration, l.Premium.StringFixed(2))
}

// Image references a stored picture attached to an operation.
type Image struct {
	ID          int64  `json:"id"`
	OperationID int64  `json:"operation_id"`
	Path        string `json:"path"`
}

// Operation is one logged multi-leg options trade. The ID is assigned by the
// journal server.
type Operation struct {
	ID            int64     `json:"id"`
	Underlying    string    `json:"underlying"`
	EnteredAt     time.Time `json:"entered_at"`
	Justification string    `json:"justification,omitempty"`
	Strategy      string    `json:"strategy,omitempty"`
	Legs          []Leg     `json:"legs"`
	Images        []Image   `json:"images"`
}

// Clone returns a copy that shares no slices with o.
func (o Operation) Clone() Operation {
	cloned := o
	cloned.Legs = append([]Leg(nil), o.Legs...)
	cloned.Images = append([]Image(nil), o.Images...)
	return cloned
}

// Draft is the payload sent to create an operation.
type Draft struct {
	Underlying    string    `json:"underlying"`
	EnteredAt     time.Time `json:"entered_at"`
	Justification string    `json:"justification,omitempty"`
	Legs          []Leg     `json:"legs"`
}

// Validate checks the fields the server requires before persisting.
func (d Draft) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(d.Underlying) == "" {
		verr.Add(0, "underlying", "is required")
	}
	if len(d.Legs) == 0 {
		verr.Add(0, "legs", "at least one leg is required")
	}
	for i, leg := range d.Legs {
		slot := i + 1
		if leg.Action != Buy && leg.Action != Sell {
			verr.Add(slot, "action", fmt.Sprintf("unknown action %q", leg.Action))
		}
		if leg.Type != Call && leg.Type != Put {
			verr.Add(slot, "type", fmt.Sprintf("unknown option type %q", leg.Type))
		}
		if leg.Quantity <= 0 {
			verr.Add(slot, "quantity", "must be a positive integer")
		}
		if leg.Expiration.IsZero() {
			verr.Add(slot, "expiration", "is required")
		}
		if leg.Strike.IsNegative() {
			verr.Add(slot, "strike", "must not be negative")
		}
		if leg.Premium.IsNegative() {
			verr.Add(slot, "premium", "must not be negative")
		}
	}
	return verr.OrNil()
}

// Blob is an image attached to a create request.
type Blob struct {
	Name string
	Data []byte
}
