// Package legform builds the legs of a new operation from rows of raw form
// input. Each row ("slot") keeps the sequence number it was created with so UI
// bindings stay valid while other rows are removed.
package legform

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tableflip.dev/tradelog/pkg/operation"
)

var (
	// ErrInvalidOperation is returned for slot changes the form does not
	// allow, such as removing the first slot.
	ErrInvalidOperation = errors.New("legform: invalid operation")
	// ErrEmptyForm is returned by ToLegs when the form has no slots.
	ErrEmptyForm = errors.New("legform: form has no legs")
)

// FirstSlot is the sequence number of the slot Open creates. It cannot be
// removed.
const FirstSlot = 1

// SlotInput holds the raw, unvalidated values of one leg row. Empty means
// unset.
type SlotInput struct {
	Action     string `json:"action"`
	Type       string `json:"type"`
	Quantity   string `json:"quantity"`
	Expiration string `json:"expiration"`
	Strike     string `json:"strike"`
	Premium    string `json:"premium"`
}

// Slot is one leg row.
type Slot struct {
	Seq   int
	Input SlotInput
}

// Builder is the in-progress set of leg rows.
type Builder struct {
	counter int
	open    bool
	slots   []Slot
}

// Open starts a fresh form with a single empty slot.
func (b *Builder) Open() {
	b.counter = 0
	b.open = true
	b.slots = nil
	b.AddSlot()
}

// Close discards the form.
func (b *Builder) Close() {
	b.open = false
	b.slots = nil
	b.counter = 0
}

// IsOpen reports whether a form is in progress.
func (b *Builder) IsOpen() bool {
	return b.open
}

// AddSlot appends an empty slot and returns its sequence number. Sequence
// numbers are never reused within one form.
func (b *Builder) AddSlot() int {
	b.counter++
	b.slots = append(b.slots, Slot{Seq: b.counter})
	return b.counter
}

// RemoveSlot deletes the slot with the given sequence number. The remaining
// slots keep their numbers.
func (b *Builder) RemoveSlot(seq int) error {
	if seq == FirstSlot {
		return ErrInvalidOperation
	}
	idx := b.index(seq)
	if idx < 0 {
		return ErrInvalidOperation
	}
	b.slots = append(b.slots[:idx:idx], b.slots[idx+1:]...)
	return nil
}

// Set replaces the raw values of a slot.
func (b *Builder) Set(seq int, input SlotInput) error {
	idx := b.index(seq)
	if idx < 0 {
		return ErrInvalidOperation
	}
	b.slots[idx].Input = input
	return nil
}

// Slots returns a copy of the slots in display order.
func (b *Builder) Slots() []Slot {
	return append([]Slot(nil), b.slots...)
}

func (b *Builder) index(seq int) int {
	for i, slot := range b.slots {
		if slot.Seq == seq {
			return i
		}
	}
	return -1
}

// ToLegs validates every slot. All failing fields of all slots are reported
// together in one *operation.ValidationError keyed by slot sequence number.
func (b *Builder) ToLegs() ([]operation.Leg, error) {
	if len(b.slots) == 0 {
		return nil, ErrEmptyForm
	}
	verr := &operation.ValidationError{}
	legs := make([]operation.Leg, 0, len(b.slots))
	for _, slot := range b.slots {
		legs = append(legs, parseSlot(slot, verr))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return legs, nil
}

func parseSlot(slot Slot, verr *operation.ValidationError) operation.Leg {
	in := slot.Input
	var leg operation.Leg
	var err error

	switch raw := strings.TrimSpace(in.Action); {
	case raw == "":
		verr.Add(slot.Seq, "action", "is required")
	default:
		if leg.Action, err = operation.ParseAction(raw); err != nil {
			verr.Add(slot.Seq, "action", "must be BUY or SELL")
		}
	}

	switch raw := strings.TrimSpace(in.Type); {
	case raw == "":
		verr.Add(slot.Seq, "type", "is required")
	default:
		if leg.Type, err = operation.ParseOptionType(raw); err != nil {
			verr.Add(slot.Seq, "type", "must be CALL or PUT")
		}
	}

	switch raw := strings.TrimSpace(in.Quantity); {
	case raw == "":
		verr.Add(slot.Seq, "quantity", "is required")
	default:
		qty, err := strconv.Atoi(raw)
		if err != nil || qty <= 0 {
			verr.Add(slot.Seq, "quantity", "must be a positive integer")
		}
		leg.Quantity = qty
	}

	switch raw := strings.TrimSpace(in.Expiration); {
	case raw == "":
		verr.Add(slot.Seq, "expiration", "is required")
	default:
		if leg.Expiration, err = operation.ParseDate(raw); err != nil {
			verr.Add(slot.Seq, "expiration", "must be a YYYY-MM-DD date")
		}
	}

	leg.Strike = parseAmount(slot.Seq, "strike", in.Strike, verr)
	leg.Premium = parseAmount(slot.Seq, "premium", in.Premium, verr)
	return leg
}

func parseAmount(seq int, field, raw string, verr *operation.ValidationError) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.Add(seq, field, "is required")
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Add(seq, field, "must be a decimal number")
		return decimal.Zero
	}
	if d.IsNegative() {
		verr.Add(seq, field, "must not be negative")
	}
	return d
}
