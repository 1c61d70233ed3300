// Package codec converts the in-memory model to and from the flat
// ID-referencing document stored on disk. XML is the default format; JSON and
// CBOR carry the same document.
package codec

import "encoding/xml"

// Document is the serialised form of a domain.Snapshot. References between
// records are expressed as IDs.
type Document struct {
	XMLName       xml.Name       `xml:"HealthTracker" json:"-" cbor:"-"`
	FoodGroups    []FoodGroup    `xml:"FoodGroups>FoodGroup" json:"foodGroups,omitempty" cbor:"foodGroups,omitempty"`
	FoodItems     []FoodItem     `xml:"FoodItems>FoodItem" json:"foodItems,omitempty" cbor:"foodItems,omitempty"`
	MealTypes     []MealType     `xml:"MealTypes>MealType" json:"mealTypes,omitempty" cbor:"mealTypes,omitempty"`
	MealTemplates []MealTemplate `xml:"MealTemplates>MealTemplate" json:"mealTemplates,omitempty" cbor:"mealTemplates,omitempty"`
	Meals         []Meal         `xml:"Meals>Meal" json:"meals,omitempty" cbor:"meals,omitempty"`
}

// FoodGroup is the stored form of domain.FoodGroup.
type FoodGroup struct {
	ID          string `xml:"id,attr" json:"id" cbor:"id"`
	Name        string `xml:"name,attr" json:"name" cbor:"name"`
	Description string `xml:"description,attr,omitempty" json:"description,omitempty" cbor:"description,omitempty"`
}

// FoodGroupServing references a food group by ID.
type FoodGroupServing struct {
	FoodGroupID string `xml:"foodGroupId,attr" json:"foodGroupId" cbor:"foodGroupId"`
	Quantity    string `xml:"quantity,attr" json:"quantity" cbor:"quantity"`
}

// FoodItem is the stored form of domain.FoodItem.
type FoodItem struct {
	ID                 string             `xml:"id,attr" json:"id" cbor:"id"`
	Name               string             `xml:"name,attr" json:"name" cbor:"name"`
	Description        string             `xml:"description,attr,omitempty" json:"description,omitempty" cbor:"description,omitempty"`
	CaloriesPerServing string             `xml:"caloriesPerServing,attr" json:"caloriesPerServing" cbor:"caloriesPerServing"`
	Servings           []FoodGroupServing `xml:"FoodGroupServing" json:"foodGroupServings,omitempty" cbor:"foodGroupServings,omitempty"`
}

// MealType is the stored form of domain.MealType.
type MealType struct {
	ID                 string `xml:"id,attr" json:"id" cbor:"id"`
	Name               string `xml:"name,attr" json:"name" cbor:"name"`
	Description        string `xml:"description,attr,omitempty" json:"description,omitempty" cbor:"description,omitempty"`
	DefaultTimeOfMeal  string `xml:"defaultTimeOfMeal,attr,omitempty" json:"defaultTimeOfMeal,omitempty" cbor:"defaultTimeOfMeal,omitempty"`
	UseDefaultMealTime bool   `xml:"useDefaultMealTime,attr" json:"useDefaultMealTime" cbor:"useDefaultMealTime"`
}

// FoodItemServing references a food item by ID.
type FoodItemServing struct {
	FoodItemID string `xml:"foodItemId,attr" json:"foodItemId" cbor:"foodItemId"`
	Quantity   string `xml:"quantity,attr" json:"quantity" cbor:"quantity"`
}

// MealTemplate is the stored form of domain.MealTemplate.
type MealTemplate struct {
	ID                string            `xml:"id,attr" json:"id" cbor:"id"`
	Name              string            `xml:"name,attr" json:"name" cbor:"name"`
	Description       string            `xml:"description,attr,omitempty" json:"description,omitempty" cbor:"description,omitempty"`
	MealTypeID        string            `xml:"mealTypeId,attr" json:"mealTypeId" cbor:"mealTypeId"`
	DateAndTimeOfMeal string            `xml:"dateAndTimeOfMeal,attr,omitempty" json:"dateAndTimeOfMeal,omitempty" cbor:"dateAndTimeOfMeal,omitempty"`
	Servings          []FoodItemServing `xml:"FoodItemServing" json:"foodItemServings,omitempty" cbor:"foodItemServings,omitempty"`
}

// Meal is the stored form of domain.Meal. It shares the template layout.
type Meal MealTemplate
