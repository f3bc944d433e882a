// Package selection tracks which expiration tab is active.
package selection

import (
	"fmt"
	"strings"

	"tableflip.dev/tradelog/pkg/operation"
)

type kind int

const (
	kindUnset kind = iota
	kindAll
	kindGroup
)

// Selection is the active tab: Unset (the zero value), All, or one group.
type Selection struct {
	kind kind
	key  operation.GroupKey
}

var (
	// Unset is the selection while no group exists.
	Unset = Selection{}
	// All selects every group.
	All = Selection{kind: kindAll}
)

// Group selects a single expiration group.
func Group(key operation.GroupKey) Selection {
	return Selection{kind: kindGroup, key: key}
}

// IsUnset reports whether s is Unset.
func (s Selection) IsUnset() bool { return s.kind == kindUnset }

// IsAll reports whether s is All.
func (s Selection) IsAll() bool { return s.kind == kindAll }

// Key returns the group key and true when s selects a single group.
func (s Selection) Key() (operation.GroupKey, bool) {
	if s.kind != kindGroup {
		return "", false
	}
	return s.key, true
}

func (s Selection) String() string {
	switch s.kind {
	case kindAll:
		return "all"
	case kindGroup:
		return string(s.key)
	default:
		return "unset"
	}
}

// Parse reads a selection typed by a user: "" or "all" select All, anything
// else must be a YYYY-MM-DD date or N/A.
func Parse(raw string) (Selection, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "" || strings.EqualFold(raw, "all"):
		return All, nil
	case strings.EqualFold(raw, string(operation.NoExpiry)):
		return Group(operation.NoExpiry), nil
	}
	d, err := operation.ParseDate(raw)
	if err != nil {
		return Unset, fmt.Errorf("selection: %q is neither \"all\" nor a YYYY-MM-DD date", raw)
	}
	return Group(operation.GroupKey(d.String())), nil
}

// Groups is the view of the store the reconciliation needs.
type Groups interface {
	IsEmpty() bool
	Has(key operation.GroupKey) bool
}

// Reconcile returns the selection that is valid for groups: Unset when there
// are no groups, All when nothing was selected yet or the selected group no
// longer exists, and current otherwise.
func Reconcile(current Selection, groups Groups) Selection {
	if groups.IsEmpty() {
		return Unset
	}
	switch current.kind {
	case kindUnset:
		return All
	case kindGroup:
		if !groups.Has(current.key) {
			return All
		}
	}
	return current
}

// Model holds the active selection.
type Model struct {
	current Selection
}

// Current returns the active selection.
func (m *Model) Current() Selection {
	return m.current
}

// Select sets the active selection without validating it; the next Reconcile
// corrects it if the group does not exist.
func (m *Model) Select(s Selection) {
	m.current = s
}

// Reconcile applies Reconcile to the active selection and returns the result.
func (m *Model) Reconcile(groups Groups) Selection {
	m.current = Reconcile(m.current, groups)
	return m.current
}
