package domain

import (
	"testing"
	"time"
)

func TestMealCloneIsDeep(t *testing.T) {
	veg := group("Vegetables")
	salad := item("Salad", "80", NewServing(veg, dec("1")))
	lunch := &MealType{Base: Base{ID: NewID(), Name: "Lunch"}, DefaultTimeOfMeal: time.Date(0, 1, 1, 12, 0, 0, 0, time.UTC)}
	orig := &Meal{MealBase: MealBase{
		Base:             Base{ID: NewID(), Name: "Monday lunch"},
		TypeOfMeal:       lunch,
		FoodItemServings: []Serving[FoodItem]{NewServing(salad, dec("1"))},
	}}

	cp := orig.Clone()
	cp.Name = "changed"
	cp.TypeOfMeal.Name = "changed"
	cp.FoodItemServings[0].Quantity = dec("9")
	cp.FoodItemServings[0].Entity.Name = "changed"
	cp.FoodItemServings[0].Entity.FoodGroupsPerServing[0].Entity.Name = "changed"

	if orig.Name != "Monday lunch" || lunch.Name != "Lunch" || salad.Name != "Salad" || veg.Name != "Vegetables" {
		t.Fatalf("clone shares state with original")
	}
	if !orig.FoodItemServings[0].Quantity.Equal(dec("1")) {
		t.Fatalf("serving quantity leaked into original")
	}
}

func TestCopyFromKeepsReceiverIdentity(t *testing.T) {
	stored := item("Apple", "50", NewServing(group("Fruit"), dec("1")))
	ptr := stored
	update := stored.Clone()
	update.Name = "Green apple"
	update.FoodGroupsPerServing = append(update.FoodGroupsPerServing, NewServing(group("Fiber"), dec("0.5")))

	stored.CopyFrom(update)
	if ptr != stored || stored.Name != "Green apple" || len(stored.FoodGroupsPerServing) != 2 {
		t.Fatalf("unexpected merge result %+v", stored)
	}
	update.FoodGroupsPerServing[0].Quantity = dec("7")
	if stored.FoodGroupsPerServing[0].Quantity.Equal(dec("7")) {
		t.Fatalf("CopyFrom must not alias the source slices")
	}
}

func TestCloneNil(t *testing.T) {
	var g *FoodGroup
	if g.Clone() != nil {
		t.Fatalf("expected nil clone")
	}
	var m *Meal
	if m.Clone() != nil {
		t.Fatalf("expected nil clone")
	}
}

func checkRecordCopy[T Record[T]](t *testing.T, rec T) {
	t.Helper()
	cp := rec.Clone()
	if cp == rec {
		t.Fatalf("%s: clone returned the same instance", rec.EntityName())
	}
	if cp.EntityID() != rec.EntityID() || cp.EntityName() != rec.EntityName() {
		t.Fatalf("%s: clone lost identity fields", rec.EntityName())
	}
	target := cp.Clone()
	target.CopyFrom(rec)
	if target.EntityID() != rec.EntityID() {
		t.Fatalf("%s: CopyFrom did not copy the ID", rec.EntityName())
	}
}

func TestEntitiesSatisfyRecord(t *testing.T) {
	veg := group("Vegetables")
	salad := item("Salad", "80", NewServing(veg, dec("1")))
	lunch := &MealType{Base: Base{ID: NewID(), Name: "Lunch"}}
	base := MealBase{Base: Base{ID: NewID(), Name: "Usual"}, TypeOfMeal: lunch}

	checkRecordCopy(t, veg)
	checkRecordCopy(t, salad)
	checkRecordCopy(t, lunch)
	checkRecordCopy(t, &Meal{MealBase: base})
	checkRecordCopy(t, &MealTemplate{MealBase: base})
}
