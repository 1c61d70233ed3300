package codec

import (
	"mealtrack/pkg/domain"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const timeLayout = time.RFC3339Nano

// ToDocument flattens snap into its ID-referencing form. Unresolved
// references are written as the nil UUID.
func ToDocument(snap domain.Snapshot) Document {
	var doc Document
	for _, g := range snap.FoodGroups {
		if g == nil {
			continue
		}
		doc.FoodGroups = append(doc.FoodGroups, FoodGroup{ID: g.ID.String(), Name: g.Name, Description: g.Description})
	}
	for _, fi := range snap.FoodItems {
		if fi == nil {
			continue
		}
		out := FoodItem{
			ID:                 fi.ID.String(),
			Name:               fi.Name,
			Description:        fi.Description,
			CaloriesPerServing: fi.CaloriesPerServing.String(),
		}
		for _, sv := range fi.FoodGroupsPerServing {
			out.Servings = append(out.Servings, FoodGroupServing{FoodGroupID: refID(sv.Entity), Quantity: sv.Quantity.String()})
		}
		doc.FoodItems = append(doc.FoodItems, out)
	}
	for _, mt := range snap.MealTypes {
		if mt == nil {
			continue
		}
		doc.MealTypes = append(doc.MealTypes, MealType{
			ID:                 mt.ID.String(),
			Name:               mt.Name,
			Description:        mt.Description,
			DefaultTimeOfMeal:  formatTime(mt.DefaultTimeOfMeal),
			UseDefaultMealTime: mt.UseDefaultMealTime,
		})
	}
	for _, t := range snap.MealTemplates {
		if t == nil {
			continue
		}
		doc.MealTemplates = append(doc.MealTemplates, mealToDocument(t.MealBase))
	}
	for _, m := range snap.Meals {
		if m == nil {
			continue
		}
		doc.Meals = append(doc.Meals, Meal(mealToDocument(m.MealBase)))
	}
	return doc
}

// FromDocument rebuilds a snapshot, resolving references in dependency order.
// IDs that do not resolve become nil references. Records whose own ID cannot
// be parsed are skipped.
func FromDocument(doc Document) domain.Snapshot {
	var snap domain.Snapshot

	groups := make(map[uuid.UUID]*domain.FoodGroup, len(doc.FoodGroups))
	for _, in := range doc.FoodGroups {
		id, ok := parseID(in.ID)
		if !ok {
			continue
		}
		g := &domain.FoodGroup{Base: domain.Base{ID: id, Name: in.Name, Description: in.Description}}
		snap.FoodGroups = append(snap.FoodGroups, g)
		groups[id] = g
	}

	items := make(map[uuid.UUID]*domain.FoodItem, len(doc.FoodItems))
	for _, in := range doc.FoodItems {
		id, ok := parseID(in.ID)
		if !ok {
			continue
		}
		fi := &domain.FoodItem{
			Base:               domain.Base{ID: id, Name: in.Name, Description: in.Description},
			CaloriesPerServing: parseDecimal(in.CaloriesPerServing),
		}
		for _, sv := range in.Servings {
			fi.FoodGroupsPerServing = append(fi.FoodGroupsPerServing,
				domain.NewServing(lookup(groups, sv.FoodGroupID), parseDecimal(sv.Quantity)))
		}
		snap.FoodItems = append(snap.FoodItems, fi)
		items[id] = fi
	}

	types := make(map[uuid.UUID]*domain.MealType, len(doc.MealTypes))
	for _, in := range doc.MealTypes {
		id, ok := parseID(in.ID)
		if !ok {
			continue
		}
		mt := &domain.MealType{
			Base:               domain.Base{ID: id, Name: in.Name, Description: in.Description},
			DefaultTimeOfMeal:  parseTime(in.DefaultTimeOfMeal),
			UseDefaultMealTime: in.UseDefaultMealTime,
		}
		snap.MealTypes = append(snap.MealTypes, mt)
		types[id] = mt
	}

	for _, in := range doc.MealTemplates {
		if base, ok := mealFromDocument(in, types, items); ok {
			snap.MealTemplates = append(snap.MealTemplates, &domain.MealTemplate{MealBase: base})
		}
	}
	for _, in := range doc.Meals {
		if base, ok := mealFromDocument(MealTemplate(in), types, items); ok {
			snap.Meals = append(snap.Meals, &domain.Meal{MealBase: base})
		}
	}
	return snap
}

func mealToDocument(m domain.MealBase) MealTemplate {
	out := MealTemplate{
		ID:                m.ID.String(),
		Name:              m.Name,
		Description:       m.Description,
		MealTypeID:        refID(m.TypeOfMeal),
		DateAndTimeOfMeal: formatTime(m.DateAndTimeOfMeal),
	}
	for _, sv := range m.FoodItemServings {
		out.Servings = append(out.Servings, FoodItemServing{FoodItemID: refID(sv.Entity), Quantity: sv.Quantity.String()})
	}
	return out
}

func mealFromDocument(in MealTemplate, types map[uuid.UUID]*domain.MealType, items map[uuid.UUID]*domain.FoodItem) (domain.MealBase, bool) {
	id, ok := parseID(in.ID)
	if !ok {
		return domain.MealBase{}, false
	}
	m := domain.MealBase{
		Base:              domain.Base{ID: id, Name: in.Name, Description: in.Description},
		TypeOfMeal:        lookup(types, in.MealTypeID),
		DateAndTimeOfMeal: parseTime(in.DateAndTimeOfMeal),
	}
	for _, sv := range in.Servings {
		m.FoodItemServings = append(m.FoodItemServings,
			domain.NewServing(lookup(items, sv.FoodItemID), parseDecimal(sv.Quantity)))
	}
	return m, true
}

func refID[T interface {
	comparable
	EntityID() uuid.UUID
}](ref T) string {
	var zero T
	if ref == zero {
		return uuid.Nil.String()
	}
	return ref.EntityID().String()
}

func lookup[T any](index map[uuid.UUID]*T, raw string) *T {
	id, ok := parseID(raw)
	if !ok {
		return nil
	}
	return index[id]
}

func parseID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
