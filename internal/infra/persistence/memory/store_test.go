package memory

import (
	"context"
	"errors"
	"mealtrack/pkg/domain"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type recordingPersister struct {
	calls int
	last  domain.Snapshot
	err   error
}

func (p *recordingPersister) Persist(_ context.Context, snap domain.Snapshot) error {
	p.calls++
	p.last = snap
	return p.err
}

type recordingMetrics struct {
	ops []string
	ok  []bool
}

func (m *recordingMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.ops = append(m.ops, op)
	m.ok = append(m.ok, success)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newGroup(name string) *domain.FoodGroup {
	return &domain.FoodGroup{Base: domain.Base{ID: domain.NewID(), Name: name}}
}

func newItem(name string, g *domain.FoodGroup) *domain.FoodItem {
	return &domain.FoodItem{
		Base:                 domain.Base{ID: domain.NewID(), Name: name},
		CaloriesPerServing:   dec("100"),
		FoodGroupsPerServing: []domain.Serving[domain.FoodGroup]{domain.NewServing(g, dec("1"))},
	}
}

func newMealType(name string) *domain.MealType {
	return &domain.MealType{Base: domain.Base{ID: domain.NewID(), Name: name}}
}

func TestSaveInsertsCopy(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{}
	s := NewStore(WithPersister(p))
	g := newGroup("Fruit")
	if err := s.FoodGroups().SaveItem(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	g.Name = "mutated by caller"
	got, ok := s.FoodGroups().Get(g.ID)
	if !ok || got.Name != "Fruit" {
		t.Fatalf("expected stored copy, got %+v", got)
	}
	got.Name = "mutated copy"
	again, _ := s.FoodGroups().Get(g.ID)
	if again.Name != "Fruit" {
		t.Fatalf("returned value aliases stored instance")
	}
	if p.calls != 1 || len(p.last.FoodGroups) != 1 {
		t.Fatalf("expected one persist with one group, got %d calls", p.calls)
	}
}

func TestSaveMergesInPlaceAndRaisesEvents(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	var events []Event[*domain.FoodGroup]
	var changes []domain.Change
	s.FoodGroups().Subscribe(func(e Event[*domain.FoodGroup]) { events = append(events, e) })
	s.Subscribe(func(c domain.Change) { changes = append(changes, c) })

	g := newGroup("Fruit")
	if err := s.FoodGroups().SaveItem(ctx, g); err != nil {
		t.Fatalf("insert: %v", err)
	}
	before := s.FoodGroups().stored()[0]
	edit := g.Clone()
	edit.Name = "Fruits"
	if err := s.FoodGroups().SaveItem(ctx, edit); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if s.FoodGroups().Len() != 1 {
		t.Fatalf("merge must not add a second record")
	}
	if after := s.FoodGroups().stored()[0]; after != before || after.Name != "Fruits" {
		t.Fatalf("merge replaced the stored instance")
	}
	if len(events) != 2 || events[0].Action != domain.ActionAdded || events[1].Action != domain.ActionModified {
		t.Fatalf("unexpected events %+v", events)
	}
	if events[1].Item.Name != "Fruits" || events[1].Item == before {
		t.Fatalf("modified event should carry a copy of the merged record")
	}
	if len(changes) != 2 || changes[0].Entity != domain.EntityFoodGroup {
		t.Fatalf("unexpected store changes %+v", changes)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{}
	s := NewStore(WithPersister(p))
	g := newGroup("Dairy")
	fi := newItem("Milk", g)
	_ = s.FoodGroups().SaveItem(ctx, g)
	_ = s.FoodItems().SaveItem(ctx, fi)
	calls := p.calls

	if !s.FoodGroups().ItemIsUsed(g) {
		t.Fatalf("group referenced by Milk should be in use")
	}
	// removal is unconditional even when referenced
	if err := s.FoodGroups().Remove(ctx, g); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.FoodGroups().Contains(g) || p.calls != calls+1 {
		t.Fatalf("expected removal and one persist")
	}
	if err := s.FoodGroups().Remove(ctx, g); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if p.calls != calls+1 {
		t.Fatalf("removing a missing record must not persist")
	}
}

func TestNilArguments(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	if err := s.Meals().SaveItem(ctx, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := s.Meals().Remove(ctx, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if s.Meals().Contains(nil) || s.FoodGroups().NameIsDuplicate(nil) || s.FoodGroups().ItemIsUsed(nil) {
		t.Fatalf("nil candidates must report false")
	}
}

func TestNameIsDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := newGroup("Grain")
	_ = s.FoodGroups().SaveItem(ctx, a)
	if s.FoodGroups().NameIsDuplicate(a) {
		t.Fatalf("a record is not a duplicate of itself")
	}
	if !s.FoodGroups().NameIsDuplicate(newGroup("Grain")) {
		t.Fatalf("expected duplicate name")
	}
	if s.FoodGroups().NameIsDuplicate(newGroup("grain")) {
		t.Fatalf("name comparison is case sensitive")
	}

	lunch := newMealType("Lunch")
	m1 := &domain.Meal{MealBase: domain.MealBase{Base: domain.Base{ID: domain.NewID(), Name: "x"}, TypeOfMeal: lunch}}
	_ = s.Meals().SaveItem(ctx, m1)
	m2 := &domain.Meal{MealBase: domain.MealBase{Base: domain.Base{ID: domain.NewID(), Name: "x"}, TypeOfMeal: lunch}}
	if s.Meals().NameIsDuplicate(m2) {
		t.Fatalf("meals are never duplicates")
	}
}

func TestItemIsUsed(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	g := newGroup("Veg")
	fi := newItem("Carrot", g)
	mt := newMealType("Snack")
	_ = s.FoodGroups().SaveItem(ctx, g)
	_ = s.FoodItems().SaveItem(ctx, fi)
	_ = s.MealTypes().SaveItem(ctx, mt)

	meal := &domain.Meal{MealBase: domain.MealBase{
		Base:             domain.Base{ID: domain.NewID()},
		TypeOfMeal:       mt,
		FoodItemServings: []domain.Serving[domain.FoodItem]{domain.NewServing(fi, dec("1"))},
	}}
	_ = s.Meals().SaveItem(ctx, meal)
	if s.FoodItems().ItemIsUsed(fi) || s.MealTypes().ItemIsUsed(mt) {
		t.Fatalf("references from meals do not count as use")
	}

	tmpl := &domain.MealTemplate{MealBase: domain.MealBase{
		Base:             domain.Base{ID: domain.NewID(), Name: "Carrot snack"},
		TypeOfMeal:       mt,
		FoodItemServings: []domain.Serving[domain.FoodItem]{domain.NewServing(fi, dec("2"))},
	}}
	_ = s.MealTemplates().SaveItem(ctx, tmpl)
	if !s.FoodItems().ItemIsUsed(fi) || !s.MealTypes().ItemIsUsed(mt) {
		t.Fatalf("template references should count as use")
	}
	if s.MealTemplates().ItemIsUsed(tmpl) || s.Meals().ItemIsUsed(meal) {
		t.Fatalf("templates and meals are never used")
	}
}

func TestSaveRebindsReferencesToStoredInstances(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	g := newGroup("Meat")
	_ = s.FoodGroups().SaveItem(ctx, g)
	fi := newItem("Steak", g.Clone())
	orphan := newGroup("Unknown")
	fi.FoodGroupsPerServing = append(fi.FoodGroupsPerServing, domain.NewServing(orphan, dec("1")))
	_ = s.FoodItems().SaveItem(ctx, fi)

	storedGroup := s.FoodGroups().stored()[0]
	storedItem := s.FoodItems().stored()[0]
	if storedItem.FoodGroupsPerServing[0].Entity != storedGroup {
		t.Fatalf("serving should point at the stored group")
	}
	if storedItem.FoodGroupsPerServing[1].Entity != nil {
		t.Fatalf("unknown group should become an unresolved reference")
	}

	rename := g.Clone()
	rename.Name = "Red meat"
	_ = s.FoodGroups().SaveItem(ctx, rename)
	got, _ := s.FoodItems().Get(fi.ID)
	if got.FoodGroupsPerServing[0].Entity.Name != "Red meat" {
		t.Fatalf("group rename should be visible through the item")
	}
}

func TestReinsertedRecordReplacesStaleReferences(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	g := newGroup("Meat")
	mt := newMealType("Lunch")
	fi := newItem("Burger", g)
	_ = s.FoodGroups().SaveItem(ctx, g)
	_ = s.FoodItems().SaveItem(ctx, fi)
	_ = s.MealTypes().SaveItem(ctx, mt)
	meal := &domain.Meal{MealBase: domain.MealBase{
		Base:             domain.Base{ID: domain.NewID()},
		TypeOfMeal:       mt,
		FoodItemServings: []domain.Serving[domain.FoodItem]{domain.NewServing(fi, dec("1"))},
	}}
	_ = s.Meals().SaveItem(ctx, meal)

	_ = s.FoodGroups().Remove(ctx, g)
	_ = s.FoodItems().Remove(ctx, fi)
	_ = s.MealTypes().Remove(ctx, mt)

	protein := g.Clone()
	protein.Name = "Protein"
	_ = s.FoodGroups().SaveItem(ctx, protein)
	burger := fi.Clone()
	burger.Name = "Cheeseburger"
	_ = s.FoodItems().SaveItem(ctx, burger)
	dinner := mt.Clone()
	dinner.Name = "Dinner"
	_ = s.MealTypes().SaveItem(ctx, dinner)

	got, _ := s.FoodItems().Get(fi.ID)
	if name := got.FoodGroupsPerServing[0].Entity.Name; name != "Protein" {
		t.Fatalf("item still sees removed group %q", name)
	}
	snap := s.ExportState()
	if name := snap.FoodItems[0].FoodGroupsPerServing[0].Entity.Name; name != "Protein" {
		t.Fatalf("export sees %q", name)
	}

	storedMeal := s.Meals().stored()[0]
	if storedMeal.TypeOfMeal != s.MealTypes().stored()[0] || storedMeal.FoodItemServings[0].Entity != s.FoodItems().stored()[0] {
		t.Fatalf("meal references should point at the re-inserted instances")
	}
	if storedMeal.FoodItemServings[0].Entity.FoodGroupsPerServing[0].Entity != s.FoodGroups().stored()[0] {
		t.Fatalf("re-inserted item should resolve its group")
	}
	m, _ := s.Meals().Get(meal.ID)
	if m.TypeOfMeal.Name != "Dinner" || m.FoodItemServings[0].Entity.Name != "Cheeseburger" {
		t.Fatalf("meal read returned stale references: %+v", m)
	}
}

func TestAddedEventCarriesCallerItem(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	orphan := newGroup("Unknown")
	fi := newItem("Mystery", orphan)
	var events []Event[*domain.FoodItem]
	s.FoodItems().Subscribe(func(e Event[*domain.FoodItem]) { events = append(events, e) })

	_ = s.FoodItems().SaveItem(ctx, fi)
	if len(events) != 1 || events[0].Action != domain.ActionAdded {
		t.Fatalf("expected one added event, got %+v", events)
	}
	if events[0].Item == fi || events[0].Item.FoodGroupsPerServing[0].Entity == nil {
		t.Fatalf("added event should carry a copy of the caller's references")
	}
	stored, _ := s.FoodItems().Get(fi.ID)
	if stored.FoodGroupsPerServing[0].Resolved() {
		t.Fatalf("stored item should hold the unknown group as unresolved")
	}

	_ = s.FoodItems().SaveItem(ctx, fi)
	if len(events) != 2 || events[1].Action != domain.ActionModified || events[1].Item.FoodGroupsPerServing[0].Entity != nil {
		t.Fatalf("modified event should carry the stored, rebound state: %+v", events)
	}
}

func TestPersistFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	m := &recordingMetrics{}
	s := NewStore(WithPersister(&recordingPersister{err: boom}), WithMetrics(m))
	var raised int
	s.Subscribe(func(domain.Change) { raised++ })

	g := newGroup("Sweets")
	err := s.FoodGroups().SaveItem(ctx, g)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped persistence error, got %v", err)
	}
	if !s.FoodGroups().Contains(g) || raised != 1 {
		t.Fatalf("in-memory change and event should survive a persistence failure")
	}
	if len(m.ops) != 1 || m.ops[0] != "food_group.save" || m.ok[0] {
		t.Fatalf("unexpected metrics %+v %+v", m.ops, m.ok)
	}
}

func TestMealsForDate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	mt := newMealType("Dinner")
	_ = s.MealTypes().SaveItem(ctx, mt)
	day := time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC)
	for _, when := range []time.Time{day, day.Add(-2 * time.Hour), day.AddDate(0, 0, 1)} {
		_ = s.Meals().SaveItem(ctx, &domain.Meal{MealBase: domain.MealBase{
			Base:              domain.Base{ID: domain.NewID()},
			TypeOfMeal:        mt,
			DateAndTimeOfMeal: when,
		}})
	}
	if got := s.MealsForDate(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)); len(got) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(got))
	}
}

func TestExportImportState(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	g := newGroup("Fruit")
	fi := newItem("Apple", g)
	_ = s.FoodGroups().SaveItem(ctx, g)
	_ = s.FoodItems().SaveItem(ctx, fi)

	snap := s.ExportState()
	snap.FoodGroups[0].Name = "changed"
	if got, _ := s.FoodGroups().Get(g.ID); got.Name != "Fruit" {
		t.Fatalf("export must not alias stored state")
	}
	if snap.FoodItems[0].FoodGroupsPerServing[0].Entity != snap.FoodGroups[0] {
		t.Fatalf("export should link references inside the snapshot")
	}

	other := NewStore()
	var raised int
	other.Subscribe(func(domain.Change) { raised++ })
	other.ImportState(snap)
	if other.FoodItems().Len() != 1 || raised != 0 {
		t.Fatalf("import should load silently")
	}
	storedGroup := other.FoodGroups().stored()[0]
	if other.FoodItems().stored()[0].FoodGroupsPerServing[0].Entity != storedGroup {
		t.Fatalf("imported references should resolve to stored instances")
	}
}

func TestUnsubscribe(t *testing.T) {
	s := NewStore()
	var n int
	cancel := s.FoodGroups().Subscribe(func(Event[*domain.FoodGroup]) { n++ })
	_ = s.FoodGroups().SaveItem(context.Background(), newGroup("A"))
	cancel()
	_ = s.FoodGroups().SaveItem(context.Background(), newGroup("B"))
	if n != 1 {
		t.Fatalf("expected one notification, got %d", n)
	}
}
