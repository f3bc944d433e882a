// Package viewmodel derives what the user sees from the cached journal: the
// tab strip and the ordered list of operations for the active tab.
package viewmodel

import (
	"sort"

	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/selection"
)

const labelFormat = "Jan 2, 2006"

// AllLabel is the label of the tab showing every group.
const AllLabel = "All"

// Source is the read side of the operation cache.
type Source interface {
	GroupKeys() []operation.GroupKey
	Group(key operation.GroupKey) []operation.Operation
	All() []operation.Operation
}

// Tab is one entry of the tab strip.
type Tab struct {
	Key    selection.Selection
	Label  string
	Active bool
}

// Project returns the operations visible for sel, newest entry first. Entries
// with equal timestamps keep their cache order.
func Project(src Source, sel selection.Selection) []operation.Operation {
	var list []operation.Operation
	switch {
	case sel.IsAll():
		list = src.All()
	case sel.IsUnset():
		return nil
	default:
		key, _ := sel.Key()
		list = src.Group(key)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].EnteredAt.After(list[j].EnteredAt)
	})
	return list
}

// Tabs returns the All tab followed by one tab per group in date order. There
// are no tabs while the cache is empty.
func Tabs(src Source, sel selection.Selection) []Tab {
	keys := src.GroupKeys()
	if len(keys) == 0 {
		return nil
	}
	tabs := make([]Tab, 0, len(keys)+1)
	tabs = append(tabs, Tab{Key: selection.All, Label: AllLabel, Active: sel.IsAll()})
	for _, key := range keys {
		tabSel := selection.Group(key)
		tabs = append(tabs, Tab{
			Key:    tabSel,
			Label:  Label(key),
			Active: tabSel == sel,
		})
	}
	return tabs
}

// Label formats a group key for display.
func Label(key operation.GroupKey) string {
	if d, ok := key.Date(); ok {
		return d.Format(labelFormat)
	}
	return string(key)
}
