package domain

import "github.com/google/uuid"

// Snapshot is the whole model handed between the repository and persistence.
// References between sections are plain pointers into the same snapshot.
type Snapshot struct {
	FoodGroups    []*FoodGroup
	FoodItems     []*FoodItem
	MealTypes     []*MealType
	MealTemplates []*MealTemplate
	Meals         []*Meal
}

// Len returns the total number of records across all sections.
func (s Snapshot) Len() int {
	return len(s.FoodGroups) + len(s.FoodItems) + len(s.MealTypes) + len(s.MealTemplates) + len(s.Meals)
}

// Clone deep-copies the snapshot and relinks every reference to the copy with
// the same ID inside the new snapshot. References to records missing from the
// snapshot become nil. Nil records and repeated IDs are dropped.
func (s Snapshot) Clone() Snapshot {
	groups := cloneSection(s.FoodGroups)
	items := cloneSection(s.FoodItems)
	types := cloneSection(s.MealTypes)
	templates := cloneSection(s.MealTemplates)
	meals := cloneSection(s.Meals)

	for _, fi := range items.list {
		relinkServings(fi.FoodGroupsPerServing, groups.byID)
	}
	for _, t := range templates.list {
		t.relink(types.byID, items.byID)
	}
	for _, m := range meals.list {
		m.relink(types.byID, items.byID)
	}
	return Snapshot{
		FoodGroups:    groups.list,
		FoodItems:     items.list,
		MealTypes:     types.list,
		MealTemplates: templates.list,
		Meals:         meals.list,
	}
}

type section[T any] struct {
	list []T
	byID map[uuid.UUID]T
}

func cloneSection[T Record[T]](in []T) section[T] {
	out := section[T]{list: make([]T, 0, len(in)), byID: make(map[uuid.UUID]T, len(in))}
	var zero T
	for _, rec := range in {
		if rec == zero {
			continue
		}
		if _, dup := out.byID[rec.EntityID()]; dup {
			continue
		}
		cp := rec.Clone()
		out.list = append(out.list, cp)
		out.byID[cp.EntityID()] = cp
	}
	return out
}

func relinkServings[T any, P interface {
	*T
	EntityID() uuid.UUID
}](servings []Serving[T], byID map[uuid.UUID]P) {
	for i := range servings {
		if servings[i].Entity == nil {
			continue
		}
		servings[i].Entity = byID[P(servings[i].Entity).EntityID()]
	}
}

func (m *MealBase) relink(types map[uuid.UUID]*MealType, items map[uuid.UUID]*FoodItem) {
	if m.TypeOfMeal != nil {
		m.TypeOfMeal = types[m.TypeOfMeal.ID]
	}
	relinkServings(m.FoodItemServings, items)
}
