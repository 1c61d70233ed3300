// Package domain defines the nutrition entities tracked by mealtrack, their
// validation rules and the aggregation primitives computed over meals.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntityType identifies the collection a record belongs to.
type EntityType string

// Supported entity type identifiers used in Change records and persistence sections.
const (
	// EntityFoodGroup identifies a food group record.
	EntityFoodGroup EntityType = "food_group"
	// EntityFoodItem identifies a food item record.
	EntityFoodItem EntityType = "food_item"
	// EntityMealType identifies a meal type record.
	EntityMealType EntityType = "meal_type"
	// EntityMealTemplate identifies a reusable meal pattern.
	EntityMealTemplate EntityType = "meal_template"
	// EntityMeal identifies a logged meal.
	EntityMeal EntityType = "meal"
)

// NewID returns a fresh random identifier for a client-created entity.
func NewID() uuid.UUID {
	return uuid.New()
}

// Base contains the identity and descriptive fields shared by all records.
type Base struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// EntityID returns the record identifier.
func (b Base) EntityID() uuid.UUID { return b.ID }

// EntityName returns the record name.
func (b Base) EntityName() string { return b.Name }

// Fields returns the shared fields for in-place editing.
func (b *Base) Fields() *Base { return b }

// FoodGroup is a leaf category such as "Vegetables" or "Starch".
type FoodGroup struct {
	Base
}

// FoodItem describes something that can be eaten, its calories per serving and
// the food group servings one serving of it provides.
type FoodItem struct {
	Base
	CaloriesPerServing   decimal.Decimal      `json:"calories_per_serving"`
	FoodGroupsPerServing []Serving[FoodGroup] `json:"food_groups_per_serving"`
}

// MealType categorises meals (breakfast, lunch, ...). When UseDefaultMealTime
// is set, new meals of this type start at the clock time of DefaultTimeOfMeal.
type MealType struct {
	Base
	DefaultTimeOfMeal  time.Time `json:"default_time_of_meal"`
	UseDefaultMealTime bool      `json:"use_default_meal_time"`
}

// MealBase is the shape shared by Meal and MealTemplate.
type MealBase struct {
	Base
	TypeOfMeal        *MealType           `json:"type_of_meal"`
	DateAndTimeOfMeal time.Time           `json:"date_and_time_of_meal"`
	FoodItemServings  []Serving[FoodItem] `json:"food_item_servings"`
}

// Calories returns the total calories of the meal.
func (m MealBase) Calories() decimal.Decimal { return Calories(m) }

// FoodGroupServings returns the meal's food group servings grouped by food group.
func (m MealBase) FoodGroupServings() []Serving[FoodGroup] { return FoodGroupServings(m) }

// MealFields returns the meal fields for in-place editing.
func (m *MealBase) MealFields() *MealBase { return m }

// Meal is an entry in the daily log.
type Meal struct {
	MealBase
}

// MealTemplate is a reusable meal pattern. It is never referenced by other records.
type MealTemplate struct {
	MealBase
}

// Serving expresses "how much of X". A nil Entity is an unresolved reference.
type Serving[T any] struct {
	Entity   *T              `json:"entity"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewServing builds a serving of entity with the given quantity.
func NewServing[T any](entity *T, quantity decimal.Decimal) Serving[T] {
	return Serving[T]{Entity: entity, Quantity: quantity}
}

// Resolved reports whether the serving references an entity.
func (s Serving[T]) Resolved() bool { return s.Entity != nil }

// Record is the capability set the repository needs from each stored entity
// type. It is implemented by the pointer types *FoodGroup, *FoodItem,
// *MealType, *Meal and *MealTemplate.
type Record[T any] interface {
	comparable
	EntityID() uuid.UUID
	EntityName() string
	Validate() error
	Clone() T
	CopyFrom(T)
}

func assertRecord[T Record[T]]() {}

var (
	_ = assertRecord[*FoodGroup]
	_ = assertRecord[*FoodItem]
	_ = assertRecord[*MealType]
	_ = assertRecord[*Meal]
	_ = assertRecord[*MealTemplate]
)

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
