package domain

import (
	"errors"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidDishID = errors.New("dish id must be <programId>-<menuItemId>")

// legacy category names still used by older clients
var mealCategoryAliases = map[string]MealCategory{
	"breakfast":      MealBreakfast,
	"petit-dejeuner": MealBreakfast,
	"lunch":          MealLunch,
	"dejeuner":       MealLunch,
	"dinner":         MealDinner,
	"diner":          MealDinner,
	"snack":          MealSnack,
	"collation":      MealSnack,
}

// ParseMealCategory resolves a category filter. "" and "all" mean no filter and return "".
func ParseMealCategory(raw string) (MealCategory, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return "", true
	}
	c, ok := mealCategoryAliases[raw]
	return c, ok
}

// Dish is a menu item as listed in the dish catalog, tied to the program serving it.
type Dish struct {
	ID          string             `json:"id"`
	ProgramID   primitive.ObjectID `json:"programId"`
	ProgramName string             `json:"programName"`
	Item        MenuItem           `json:"item"`
}

// DishID identifies a menu item across the whole catalog.
func DishID(programID primitive.ObjectID, itemID int) string {
	return programID.Hex() + "-" + strconv.Itoa(itemID)
}

// ParseDishID splits an id built by DishID.
func ParseDishID(id string) (primitive.ObjectID, int, error) {
	hex, item, ok := strings.Cut(id, "-")
	if !ok {
		return primitive.NilObjectID, 0, ErrInvalidDishID
	}
	programID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, 0, ErrInvalidDishID
	}
	itemID, err := strconv.Atoi(item)
	if err != nil {
		return primitive.NilObjectID, 0, ErrInvalidDishID
	}
	return programID, itemID, nil
}

// Dishes lists the program's menu items in menu order, optionally limited to one category.
func (p *Program) Dishes(category MealCategory) []Dish {
	if p == nil {
		return nil
	}
	var out []Dish
	for _, m := range p.MenuItems {
		if category != "" && m.Category != category {
			continue
		}
		out = append(out, Dish{ID: DishID(p.ID, m.ID), ProgramID: p.ID, ProgramName: p.Name, Item: m})
	}
	return out
}
