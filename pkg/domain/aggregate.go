package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Calories sums quantity times calories per serving over the meal's food item
// servings. Unresolved food items contribute nothing.
func Calories(m MealBase) decimal.Decimal {
	total := decimal.Zero
	for _, s := range m.FoodItemServings {
		if s.Entity == nil {
			continue
		}
		total = total.Add(s.Quantity.Mul(s.Entity.CaloriesPerServing))
	}
	return total
}

// FoodGroupServings expands every resolved food item serving into the food
// group servings of that item, scaled by the outer quantity, then groups the
// result by food group. Unresolved food groups share a single nil bucket.
func FoodGroupServings(m MealBase) []Serving[FoodGroup] {
	var expanded []Serving[FoodGroup]
	for _, outer := range m.FoodItemServings {
		if outer.Entity == nil {
			continue
		}
		for _, inner := range outer.Entity.FoodGroupsPerServing {
			expanded = append(expanded, Serving[FoodGroup]{
				Entity:   inner.Entity,
				Quantity: inner.Quantity.Mul(outer.Quantity),
			})
		}
	}
	return SumFoodGroupServings(expanded)
}

// SumFoodGroupServings groups servings by food group ID and sums quantities.
// Groups appear in first-seen order; the nil bucket is placed where the first
// unresolved serving appeared.
func SumFoodGroupServings(lists ...[]Serving[FoodGroup]) []Serving[FoodGroup] {
	var (
		out     []Serving[FoodGroup]
		index   = make(map[uuid.UUID]int)
		nilSlot = -1
	)
	for _, list := range lists {
		for _, s := range list {
			if s.Entity == nil {
				if nilSlot < 0 {
					nilSlot = len(out)
					out = append(out, Serving[FoodGroup]{Quantity: decimal.Zero})
				}
				out[nilSlot].Quantity = out[nilSlot].Quantity.Add(s.Quantity)
				continue
			}
			i, ok := index[s.Entity.ID]
			if !ok {
				i = len(out)
				index[s.Entity.ID] = i
				out = append(out, Serving[FoodGroup]{Entity: s.Entity, Quantity: decimal.Zero})
			}
			out[i].Quantity = out[i].Quantity.Add(s.Quantity)
		}
	}
	return out
}
