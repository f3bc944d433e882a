package operation

import (
	"fmt"
	"strings"
)

// Issue is one failing field of an operation or of a leg slot. Slot is zero
// for operation-level fields.
type Issue struct {
	Slot    int    `json:"slot,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	switch {
	case i.Slot > 0 && i.Field != "":
		return fmt.Sprintf("leg %d %s: %s", i.Slot, i.Field, i.Message)
	case i.Field != "":
		return fmt.Sprintf("%s: %s", i.Field, i.Message)
	default:
		return i.Message
	}
}

// ValidationError reports malformed operation input. It is raised locally by
// the leg form and remotely by the journal server.
type ValidationError struct {
	Issues []Issue
}

// Add records a failing field.
func (e *ValidationError) Add(slot int, field, message string) {
	e.Issues = append(e.Issues, Issue{Slot: slot, Field: field, Message: message})
}

// OrNil returns e if it carries issues and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

// Slots returns the distinct slot numbers that failed, in report order.
func (e *ValidationError) Slots() []int {
	seen := make(map[int]bool)
	var slots []int
	for _, issue := range e.Issues {
		if issue.Slot == 0 || seen[issue.Slot] {
			continue
		}
		seen[issue.Slot] = true
		slots = append(slots, issue.Slot)
	}
	return slots
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid operation"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "invalid operation: " + strings.Join(parts, "; ")
}
