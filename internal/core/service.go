// Package core hosts the application service over the meal repository and
// the wiring that opens a repository from configuration.
package core

import (
	"context"
	"errors"
	"fmt"
	"mealtrack/internal/infra/persistence/memory"
	"mealtrack/pkg/domain"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Service implements the day-to-day meal operations on top of a Store.
type Service struct {
	store  *memory.Store
	logger zerolog.Logger
	now    func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService returns a service over store.
func NewService(store *memory.Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying repository.
func (s *Service) Store() *memory.Store { return s.store }

// Summary totals one calendar day.
type Summary struct {
	Date       time.Time
	Meals      []*domain.Meal
	Calories   decimal.Decimal
	FoodGroups []domain.Serving[domain.FoodGroup]
}

// DailySummary returns the meals logged on date ordered by time, their total
// calories and their food group servings grouped across the day.
func (s *Service) DailySummary(date time.Time) Summary {
	meals := s.store.MealsForDate(date)
	sortMeals(meals)
	sum := Summary{Date: startOfDay(date), Meals: meals, Calories: decimal.Zero}
	lists := make([][]domain.Serving[domain.FoodGroup], 0, len(meals))
	for _, m := range meals {
		sum.Calories = sum.Calories.Add(m.Calories())
		lists = append(lists, m.FoodGroupServings())
	}
	sum.FoodGroups = domain.SumFoodGroupServings(lists...)
	return sum
}

// NewMeal returns an unsaved meal of the given type on date. When the type
// has UseDefaultMealTime set, the clock time comes from DefaultTimeOfMeal;
// otherwise the time of date is kept. A nil mealTypeID leaves the type empty.
func (s *Service) NewMeal(mealTypeID uuid.UUID, date time.Time) (*domain.Meal, error) {
	m := &domain.Meal{MealBase: domain.MealBase{
		Base:              domain.Base{ID: domain.NewID()},
		DateAndTimeOfMeal: date,
	}}
	if mealTypeID == uuid.Nil {
		return m, nil
	}
	mt, ok := s.store.MealTypes().Get(mealTypeID)
	if !ok {
		return nil, fmt.Errorf("meal type %s: %w", mealTypeID, ErrNotFound)
	}
	m.TypeOfMeal = mt
	if mt.UseDefaultMealTime {
		m.DateAndTimeOfMeal = atClock(date, mt.DefaultTimeOfMeal)
	}
	return m, nil
}

// MealFromTemplate returns an unsaved meal copying the template's type,
// description and servings. The meal is placed on date at the template's
// clock time, or at the meal type default when the template has none.
func (s *Service) MealFromTemplate(templateID uuid.UUID, date time.Time) (*domain.Meal, error) {
	t, ok := s.store.MealTemplates().Get(templateID)
	if !ok {
		return nil, fmt.Errorf("meal template %s: %w", templateID, ErrNotFound)
	}
	m := &domain.Meal{MealBase: t.MealBase}
	m.ID = domain.NewID()
	switch {
	case !t.DateAndTimeOfMeal.IsZero():
		m.DateAndTimeOfMeal = atClock(date, t.DateAndTimeOfMeal)
	case t.TypeOfMeal != nil && t.TypeOfMeal.UseDefaultMealTime:
		m.DateAndTimeOfMeal = atClock(date, t.TypeOfMeal.DefaultTimeOfMeal)
	default:
		m.DateAndTimeOfMeal = date
	}
	return m, nil
}

// LogMeal validates and stores meal.
func (s *Service) LogMeal(ctx context.Context, meal *domain.Meal) error {
	if meal == nil {
		return memory.ErrInvalidArgument
	}
	if meal.ID == uuid.Nil {
		meal.ID = domain.NewID()
	}
	if meal.DateAndTimeOfMeal.IsZero() {
		meal.DateAndTimeOfMeal = s.now()
	}
	if err := meal.Validate(); err != nil {
		return err
	}
	if err := s.store.Meals().SaveItem(ctx, meal); err != nil {
		return err
	}
	s.logger.Debug().Str("meal", meal.ID.String()).Time("at", meal.DateAndTimeOfMeal).Msg("meal logged")
	return nil
}

// Today returns the summary for the current day.
func (s *Service) Today() Summary {
	return s.DailySummary(s.now())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func atClock(date, clock time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, date.Location())
}

func sortMeals(meals []*domain.Meal) {
	slices.SortStableFunc(meals, func(a, b *domain.Meal) int {
		return a.DateAndTimeOfMeal.Compare(b.DateAndTimeOfMeal)
	})
}
