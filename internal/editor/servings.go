package editor

import (
	"mealtrack/internal/undo"
	"mealtrack/pkg/domain"
	"time"

	"github.com/shopspring/decimal"
)

// MealRecord is implemented by *domain.Meal and *domain.MealTemplate.
type MealRecord[T any] interface {
	Record[T]
	MealFields() *domain.MealBase
}

// SetCalories changes a food item's calories per serving.
func SetCalories(f *Form[*domain.FoodItem], calories decimal.Decimal) {
	Set(f, "CaloriesPerServing", &f.item.CaloriesPerServing, calories)
}

// AddFoodGroupServing appends a food group serving to a food item.
func AddFoodGroupServing(f *Form[*domain.FoodItem], group *domain.FoodGroup, quantity decimal.Decimal) {
	undo.Append(f.log, "FoodGroupsPerServing", &f.item.FoodGroupsPerServing, domain.NewServing(group, quantity))
}

// RemoveFoodGroupServing removes the food group serving at index.
func RemoveFoodGroupServing(f *Form[*domain.FoodItem], index int) error {
	return undo.RemoveAt(f.log, "FoodGroupsPerServing", &f.item.FoodGroupsPerServing, index)
}

// SetDefaultMealTime changes a meal type's default time and whether new
// meals use it.
func SetDefaultMealTime(f *Form[*domain.MealType], at time.Time, use bool) {
	Set(f, "DefaultTimeOfMeal", &f.item.DefaultTimeOfMeal, at)
	Set(f, "UseDefaultMealTime", &f.item.UseDefaultMealTime, use)
}

// SetMealType changes the meal type of a meal or template.
func SetMealType[T MealRecord[T]](f *Form[T], mealType *domain.MealType) {
	Set(f, "TypeOfMeal", &f.item.MealFields().TypeOfMeal, mealType)
}

// SetMealTime changes when a meal was eaten.
func SetMealTime[T MealRecord[T]](f *Form[T], at time.Time) {
	Set(f, "DateAndTimeOfMeal", &f.item.MealFields().DateAndTimeOfMeal, at)
}

// AddFoodItemServing appends a food item serving to a meal or template.
func AddFoodItemServing[T MealRecord[T]](f *Form[T], item *domain.FoodItem, quantity decimal.Decimal) {
	undo.Append(f.log, "FoodItemServings", &f.item.MealFields().FoodItemServings, domain.NewServing(item, quantity))
}

// RemoveFoodItemServing removes the food item serving at index.
func RemoveFoodItemServing[T MealRecord[T]](f *Form[T], index int) error {
	return undo.RemoveAt(f.log, "FoodItemServings", &f.item.MealFields().FoodItemServings, index)
}
