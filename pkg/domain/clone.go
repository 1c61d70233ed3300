package domain

// Clone returns a deep copy of the food group. A nil receiver yields nil.
func (g *FoodGroup) Clone() *FoodGroup {
	if g == nil {
		return nil
	}
	cp := *g
	return &cp
}

// CopyFrom overwrites g's fields with a deep copy of src's fields.
func (g *FoodGroup) CopyFrom(src *FoodGroup) {
	if src == nil {
		return
	}
	*g = *src.Clone()
}

// Clone returns a deep copy of the food item including its referenced food groups.
func (f *FoodItem) Clone() *FoodItem {
	if f == nil {
		return nil
	}
	cp := *f
	cp.FoodGroupsPerServing = cloneServings(f.FoodGroupsPerServing, (*FoodGroup).Clone)
	return &cp
}

// CopyFrom overwrites f's fields with a deep copy of src's fields.
func (f *FoodItem) CopyFrom(src *FoodItem) {
	if src == nil {
		return
	}
	*f = *src.Clone()
}

// Clone returns a deep copy of the meal type.
func (t *MealType) Clone() *MealType {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

// CopyFrom overwrites t's fields with src's fields.
func (t *MealType) CopyFrom(src *MealType) {
	if src == nil {
		return
	}
	*t = *src.Clone()
}

func (m MealBase) clone() MealBase {
	cp := m
	cp.TypeOfMeal = m.TypeOfMeal.Clone()
	cp.FoodItemServings = cloneServings(m.FoodItemServings, (*FoodItem).Clone)
	return cp
}

// Clone returns a deep copy of the meal, its meal type and its food items.
func (m *Meal) Clone() *Meal {
	if m == nil {
		return nil
	}
	return &Meal{MealBase: m.MealBase.clone()}
}

// CopyFrom overwrites m's fields with a deep copy of src's fields.
func (m *Meal) CopyFrom(src *Meal) {
	if src == nil {
		return
	}
	m.MealBase = src.MealBase.clone()
}

// Clone returns a deep copy of the template.
func (t *MealTemplate) Clone() *MealTemplate {
	if t == nil {
		return nil
	}
	return &MealTemplate{MealBase: t.MealBase.clone()}
}

// CopyFrom overwrites t's fields with a deep copy of src's fields.
func (t *MealTemplate) CopyFrom(src *MealTemplate) {
	if src == nil {
		return
	}
	t.MealBase = src.MealBase.clone()
}

func cloneServings[T any](in []Serving[T], clone func(*T) *T) []Serving[T] {
	if in == nil {
		return nil
	}
	out := make([]Serving[T], len(in))
	for i, s := range in {
		out[i] = Serving[T]{Entity: clone(s.Entity), Quantity: s.Quantity}
	}
	return out
}
