// Package editor implements edit sessions over repository records. A Form
// works on a private copy of one record, records every change in an undo log
// and writes back through the repository on Save.
package editor

import (
	"context"
	"errors"
	"fmt"
	"mealtrack/internal/undo"
	"mealtrack/pkg/domain"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by Open for an unknown ID.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateName is returned when another record already uses the name.
	ErrDuplicateName = errors.New("name already in use")
	// ErrInUse is returned by Delete when other records reference the item.
	ErrInUse = errors.New("record is referenced by other records")
)

// Collection is the repository surface a Form needs.
type Collection[T any] interface {
	Get(id uuid.UUID) (T, bool)
	SaveItem(ctx context.Context, item T) error
	Remove(ctx context.Context, item T) error
	NameIsDuplicate(candidate T) bool
	ItemIsUsed(candidate T) bool
	Contains(candidate T) bool
}

// Record is the constraint on edited types: a repository record whose
// shared fields can be edited in place.
type Record[T any] interface {
	domain.Record[T]
	Fields() *domain.Base
}

// Form is an edit session over one record.
type Form[T Record[T]] struct {
	coll Collection[T]
	item T
	log  *undo.Log
}

// Open starts editing a copy of the stored record with the given ID.
func Open[T Record[T]](coll Collection[T], id uuid.UUID, opts ...undo.Option) (*Form[T], error) {
	item, ok := coll.Get(id)
	if !ok {
		return nil, fmt.Errorf("open %s: %w", id, ErrNotFound)
	}
	return &Form[T]{coll: coll, item: item, log: undo.NewLog(opts...)}, nil
}

// New starts editing a copy of a record that may not be stored yet.
func New[T Record[T]](coll Collection[T], item T, opts ...undo.Option) *Form[T] {
	return &Form[T]{coll: coll, item: item.Clone(), log: undo.NewLog(opts...)}
}

// Item returns the working copy. Changes made directly are not recorded.
func (f *Form[T]) Item() T { return f.item }

// Log returns the form's undo log.
func (f *Form[T]) Log() *undo.Log { return f.log }

// IsNew reports whether the record is not stored yet.
func (f *Form[T]) IsNew() bool { return !f.coll.Contains(f.item) }

// Undo reverts the latest change.
func (f *Form[T]) Undo() bool { return f.log.Undo() }

// Redo re-applies the latest undone change.
func (f *Form[T]) Redo() bool { return f.log.Redo() }

// Validate runs the record's own validation and the name uniqueness check.
func (f *Form[T]) Validate() error {
	if err := f.item.Validate(); err != nil {
		return err
	}
	if f.coll.NameIsDuplicate(f.item) {
		return fmt.Errorf("%q: %w", f.item.EntityName(), ErrDuplicateName)
	}
	return nil
}

// Save validates the working copy and stores it.
func (f *Form[T]) Save(ctx context.Context) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return f.coll.SaveItem(ctx, f.item)
}

// Delete removes the record unless other records reference it.
func (f *Form[T]) Delete(ctx context.Context) error {
	if f.coll.ItemIsUsed(f.item) {
		return fmt.Errorf("%q: %w", f.item.EntityName(), ErrInUse)
	}
	return f.coll.Remove(ctx, f.item)
}

// Set changes one field of the working copy and records the change.
func Set[T Record[T], V any](f *Form[T], property string, target *V, value V) {
	undo.Set(f.log, property, target, value)
}

// SetName changes the record name.
func SetName[T Record[T]](f *Form[T], name string) {
	Set(f, "Name", &f.item.Fields().Name, name)
}

// SetDescription changes the record description.
func SetDescription[T Record[T]](f *Form[T], description string) {
	Set(f, "Description", &f.item.Fields().Description, description)
}
