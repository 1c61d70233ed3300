// Package memory provides the in-memory repository that owns the canonical
// instances of every nutrition record. All reads hand out deep copies and all
// writes are persisted as a whole-model snapshot.
package memory

import (
	"context"
	"errors"
	"fmt"
	"mealtrack/pkg/domain"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInvalidArgument is returned when a nil record is passed to a mutating call.
var ErrInvalidArgument = errors.New("invalid argument")

// Persister writes a complete snapshot of the model to durable storage.
type Persister interface {
	Persist(ctx context.Context, snapshot domain.Snapshot) error
}

// MetricsRecorder observes repository operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Option configures a Store.
type Option func(*Store)

// WithPersister sets the snapshot writer invoked after every mutation.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics sets the operation recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Store) { s.metrics = m }
}

// Store holds the five record collections. It is not safe for concurrent use;
// callers serialise access.
type Store struct {
	foodGroups    *Collection[*domain.FoodGroup]
	foodItems     *Collection[*domain.FoodItem]
	mealTypes     *Collection[*domain.MealType]
	mealTemplates *Collection[*domain.MealTemplate]
	meals         *Collection[*domain.Meal]

	persister Persister
	metrics   MetricsRecorder
	logger    zerolog.Logger
	changes   observers[domain.Change]
}

// NewStore constructs an empty repository.
func NewStore(opts ...Option) *Store {
	s := &Store{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.foodGroups = newCollection[*domain.FoodGroup](s, domain.EntityFoodGroup, true)
	s.foodItems = newCollection[*domain.FoodItem](s, domain.EntityFoodItem, true)
	s.mealTypes = newCollection[*domain.MealType](s, domain.EntityMealType, true)
	s.mealTemplates = newCollection[*domain.MealTemplate](s, domain.EntityMealTemplate, true)
	s.meals = newCollection[*domain.Meal](s, domain.EntityMeal, false)

	s.foodItems.bind = func(fi *domain.FoodItem) {
		bindServings(fi.FoodGroupsPerServing, s.foodGroups)
	}
	s.mealTemplates.bind = func(t *domain.MealTemplate) { s.bindMeal(&t.MealBase) }
	s.meals.bind = func(m *domain.Meal) { s.bindMeal(&m.MealBase) }

	// a newly inserted record takes over references that still carry its ID,
	// such as those left behind when an earlier instance was removed
	s.foodGroups.adopt = func(g *domain.FoodGroup) {
		for _, fi := range s.foodItems.items {
			relinkServings(fi.FoodGroupsPerServing, g)
		}
	}
	s.foodItems.adopt = func(fi *domain.FoodItem) {
		for _, t := range s.mealTemplates.items {
			relinkServings(t.FoodItemServings, fi)
		}
		for _, m := range s.meals.items {
			relinkServings(m.FoodItemServings, fi)
		}
	}
	s.mealTypes.adopt = func(mt *domain.MealType) {
		for _, t := range s.mealTemplates.items {
			relinkMealType(&t.MealBase, mt)
		}
		for _, m := range s.meals.items {
			relinkMealType(&m.MealBase, mt)
		}
	}

	s.foodGroups.isUsed = func(g *domain.FoodGroup) bool {
		return s.foodItems.anyMatch(func(fi *domain.FoodItem) bool {
			return referencesServing(fi.FoodGroupsPerServing, g.ID)
		})
	}
	s.foodItems.isUsed = func(fi *domain.FoodItem) bool {
		return s.mealTemplates.anyMatch(func(t *domain.MealTemplate) bool {
			return referencesServing(t.FoodItemServings, fi.ID)
		})
	}
	s.mealTypes.isUsed = func(mt *domain.MealType) bool {
		return s.mealTemplates.anyMatch(func(t *domain.MealTemplate) bool {
			return t.TypeOfMeal != nil && t.TypeOfMeal.ID == mt.ID
		})
	}
	return s
}

// FoodGroups returns the food group collection.
func (s *Store) FoodGroups() *Collection[*domain.FoodGroup] { return s.foodGroups }

// FoodItems returns the food item collection.
func (s *Store) FoodItems() *Collection[*domain.FoodItem] { return s.foodItems }

// MealTypes returns the meal type collection.
func (s *Store) MealTypes() *Collection[*domain.MealType] { return s.mealTypes }

// MealTemplates returns the meal template collection.
func (s *Store) MealTemplates() *Collection[*domain.MealTemplate] { return s.mealTemplates }

// Meals returns the meal collection.
func (s *Store) Meals() *Collection[*domain.Meal] { return s.meals }

// MealsForDate returns copies of the meals logged on the calendar day of date.
func (s *Store) MealsForDate(date time.Time) []*domain.Meal {
	return s.meals.FindAll(func(m *domain.Meal) bool {
		return domain.SameDate(m.DateAndTimeOfMeal, date)
	})
}

// Subscribe registers fn for change events from every collection and returns
// a function that removes the registration.
func (s *Store) Subscribe(fn func(domain.Change)) func() {
	return s.changes.add(fn)
}

// ExportState returns a self-contained deep copy of the whole model.
func (s *Store) ExportState() domain.Snapshot {
	return s.snapshot().Clone()
}

// ImportState replaces the model with a copy of snap. No events are raised
// and nothing is persisted.
func (s *Store) ImportState(snap domain.Snapshot) {
	cp := snap.Clone()
	s.foodGroups.load(cp.FoodGroups)
	s.foodItems.load(cp.FoodItems)
	s.mealTypes.load(cp.MealTypes)
	s.mealTemplates.load(cp.MealTemplates)
	s.meals.load(cp.Meals)
}

func (s *Store) snapshot() domain.Snapshot {
	return domain.Snapshot{
		FoodGroups:    s.foodGroups.stored(),
		FoodItems:     s.foodItems.stored(),
		MealTypes:     s.mealTypes.stored(),
		MealTemplates: s.mealTemplates.stored(),
		Meals:         s.meals.stored(),
	}
}

func (s *Store) publish(change domain.Change) {
	s.changes.notify(change)
}

func (s *Store) persist(ctx context.Context, entity domain.EntityType, action domain.Action) error {
	if s.persister == nil {
		return nil
	}
	snap := s.snapshot()
	if err := s.persister.Persist(ctx, snap); err != nil {
		s.logger.Warn().Err(err).Str("entity", string(entity)).Str("action", string(action)).Msg("persist snapshot failed")
		return fmt.Errorf("persist %s %s: %w", entity, action, err)
	}
	s.logger.Debug().Str("entity", string(entity)).Str("action", string(action)).Int("records", snap.Len()).Msg("snapshot persisted")
	return nil
}

func (s *Store) observe(ctx context.Context, operation string, success bool, d time.Duration) {
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, success, d)
	}
}

func (s *Store) bindMeal(m *domain.MealBase) {
	m.TypeOfMeal = s.mealTypes.canonical(m.TypeOfMeal)
	bindServings(m.FoodItemServings, s.foodItems)
}

func bindServings[T any, P interface {
	*T
	domain.Record[P]
}](servings []domain.Serving[T], target *Collection[P]) {
	for i := range servings {
		servings[i].Entity = (*T)(target.canonical(P(servings[i].Entity)))
	}
}

func relinkServings[T any, P interface {
	*T
	EntityID() uuid.UUID
}](servings []domain.Serving[T], stored P) {
	for i := range servings {
		if servings[i].Entity != nil && P(servings[i].Entity).EntityID() == stored.EntityID() {
			servings[i].Entity = (*T)(stored)
		}
	}
}

func relinkMealType(m *domain.MealBase, mt *domain.MealType) {
	if m.TypeOfMeal != nil && m.TypeOfMeal.ID == mt.ID {
		m.TypeOfMeal = mt
	}
}

func referencesServing[T any, P interface {
	*T
	EntityID() uuid.UUID
}](servings []domain.Serving[T], id uuid.UUID) bool {
	for _, sv := range servings {
		if sv.Entity != nil && P(sv.Entity).EntityID() == id {
			return true
		}
	}
	return false
}
