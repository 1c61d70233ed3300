// Package undo records reversible edits to an object's properties and lists
// and replays them backwards and forwards.
package undo

import (
	"fmt"
	"slices"
)

// Action classifies a recorded edit.
type Action int

const (
	// Add inserts an element into a list property.
	Add Action = iota
	// Modify replaces the value of a scalar property.
	Modify
	// Remove deletes an element from a list property.
	Remove
)

func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	case Modify:
		return "modify"
	case Remove:
		return "remove"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Command is one reversible edit. Apply performs it, Revert undoes it.
type Command interface {
	Action() Action
	Property() string
	Apply()
	Revert()
}

type command struct {
	action   Action
	property string
	apply    func()
	revert   func()
}

func (c command) Action() Action   { return c.action }
func (c command) Property() string { return c.property }
func (c command) Apply()           { c.apply() }
func (c command) Revert()          { c.revert() }

// NewModify returns a command that sets the property to next on Apply and
// back to previous on Revert.
func NewModify[V any](property string, set func(V), previous, next V) Command {
	return command{
		action:   Modify,
		property: property,
		apply:    func() { set(next) },
		revert:   func() { set(previous) },
	}
}

// NewAdd returns a command that inserts item into list. The end-of-list
// position at construction is only a hint: Apply clamps it to the current
// length and Revert removes the item by value.
func NewAdd[E comparable](property string, list *[]E, item E) Command {
	hint := len(*list)
	return command{
		action:   Add,
		property: property,
		apply:    func() { *list = insertAt(*list, hint, item) },
		revert:   func() { *list = deleteValue(*list, hint, item) },
	}
}

// NewRemove returns a command that removes the element currently at index.
// The removed value is captured when the command is built. Apply deletes it
// by value and Revert re-inserts it near its original position.
func NewRemove[E comparable](property string, list *[]E, index int) (Command, error) {
	if index < 0 || index >= len(*list) {
		return nil, fmt.Errorf("remove %s: index %d out of range [0,%d)", property, index, len(*list))
	}
	item := (*list)[index]
	return command{
		action:   Remove,
		property: property,
		apply:    func() { *list = deleteValue(*list, index, item) },
		revert:   func() { *list = insertAt(*list, index, item) },
	}, nil
}

func insertAt[E any](list []E, index int, item E) []E {
	index = min(max(index, 0), len(list))
	list = append(list, item)
	copy(list[index+1:], list[index:])
	list[index] = item
	return list
}

// deleteValue removes item, preferring the occurrence at hint. A missing item
// leaves list unchanged.
func deleteValue[E comparable](list []E, hint int, item E) []E {
	index := hint
	if index < 0 || index >= len(list) || list[index] != item {
		index = slices.Index(list, item)
	}
	if index < 0 {
		return list
	}
	return slices.Delete(list, index, index+1)
}
