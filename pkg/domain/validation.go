package domain

import (
	"fmt"
	"strings"
)

// Validator is implemented by every entity that can report per-field errors.
type Validator interface {
	Validate() error
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates field errors in the order they were detected.
type ValidationError []FieldError

func (v ValidationError) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.String()
	}
	return strings.Join(parts, "; ")
}

// Field returns the messages reported for the named field.
func (v ValidationError) Field(name string) []string {
	var out []string
	for _, fe := range v {
		if fe.Field == name {
			out = append(out, fe.Message)
		}
	}
	return out
}

// IsValid reports whether v validates without errors.
func IsValid(v Validator) bool {
	return v.Validate() == nil
}

type fieldErrors struct {
	errs ValidationError
}

func (f *fieldErrors) add(field, format string, args ...any) {
	f.errs = append(f.errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (f *fieldErrors) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return f.errs
}

func (b Base) validateName(f *fieldErrors) {
	if strings.TrimSpace(b.Name) == "" {
		f.add("Name", "a name must be entered")
	}
}

// Validate checks the serving's entity reference and quantity.
func (s Serving[T]) Validate() error {
	var f fieldErrors
	if s.Entity == nil {
		f.add("Entity", "the referenced item could not be found")
	}
	if !s.Quantity.IsPositive() {
		f.add("Quantity", "quantity must be greater than zero")
	}
	return f.err()
}

func validateServings[T any](f *fieldErrors, field string, servings []Serving[T]) {
	if len(servings) == 0 {
		f.add(field, "at least one serving is required")
		return
	}
	for i, s := range servings {
		if err := s.Validate(); err != nil {
			f.add(field, "serving %d: %v", i+1, err)
		}
	}
}

// Validate checks the food group.
func (g *FoodGroup) Validate() error {
	var f fieldErrors
	g.validateName(&f)
	return f.err()
}

// Validate checks the food item.
func (fi *FoodItem) Validate() error {
	var f fieldErrors
	fi.validateName(&f)
	if fi.CaloriesPerServing.IsNegative() {
		f.add("CaloriesPerServing", "calories per serving cannot be negative")
	}
	validateServings(&f, "FoodGroupsPerServing", fi.FoodGroupsPerServing)
	return f.err()
}

// Validate checks the meal type.
func (t *MealType) Validate() error {
	var f fieldErrors
	t.validateName(&f)
	return f.err()
}

func (m MealBase) validate(f *fieldErrors) {
	if m.TypeOfMeal == nil {
		f.add("TypeOfMeal", "a meal type must be selected")
	}
	validateServings(f, "FoodItemServings", m.FoodItemServings)
}

// Validate checks the meal. Meals do not require a name.
func (m *Meal) Validate() error {
	var f fieldErrors
	m.validate(&f)
	return f.err()
}

// Validate checks the meal template.
func (t *MealTemplate) Validate() error {
	var f fieldErrors
	t.validateName(&f)
	t.validate(&f)
	return f.err()
}
