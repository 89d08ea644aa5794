package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Objective is the goal tag of a program.
type Objective string

const (
	ObjectiveWeightLoss  Objective = "weight-loss"
	ObjectiveMassGain    Objective = "mass-gain"
	ObjectiveMaintenance Objective = "maintenance"
	ObjectiveEndurance   Objective = "endurance"
)

// IsValid reports whether o is one of the known objectives.
func (o Objective) IsValid() bool {
	switch o {
	case ObjectiveWeightLoss, ObjectiveMassGain, ObjectiveMaintenance, ObjectiveEndurance:
		return true
	}
	return false
}

// MealCategory tells when a menu item is meant to be eaten.
type MealCategory string

const (
	MealBreakfast MealCategory = "breakfast"
	MealLunch     MealCategory = "lunch"
	MealDinner    MealCategory = "dinner"
	MealSnack     MealCategory = "snack"
)

// MenuItem is a dish that belongs to a program's menu.
// IDs are unique within their program only.
type MenuItem struct {
	ID                 int          `bson:"id" json:"id"`
	Name               string       `bson:"name" json:"name"`
	Description        string       `bson:"description,omitempty" json:"description,omitempty"`
	Ingredients        []string     `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	Calories           int          `bson:"calories" json:"calories"`
	Category           MealCategory `bson:"category,omitempty" json:"category,omitempty"`
	PreparationMinutes int          `bson:"preparationMinutes,omitempty" json:"preparationMinutes,omitempty"`
}

// Activity is a physical activity that belongs to a program.
type Activity struct {
	ID              int    `bson:"id" json:"id"`
	Name            string `bson:"name" json:"name"`
	Description     string `bson:"description,omitempty" json:"description,omitempty"`
	DurationMinutes int    `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	CaloriesBurned  int    `bson:"caloriesBurned" json:"caloriesBurned"`
}

// Program is a nutrition/fitness program from the catalog.
// Immutable once published; clients only ever read it.
type Program struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	DurationDays   int                `bson:"durationDays" json:"durationDays"`
	Objective      Objective          `bson:"objective" json:"objective"`
	MenuItems      []MenuItem         `bson:"menuItems,omitempty" json:"menuItems"`
	Activities     []Activity         `bson:"activities,omitempty" json:"activities"`
	Advice         []string           `bson:"advice,omitempty" json:"advice,omitempty"`
	ImageObjectKey string             `bson:"imageObjectKey,omitempty" json:"-"`
	ImageURL       string             `bson:"-" json:"imageUrl,omitempty"` // Presigned, never stored
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasContent reports whether the program has anything a day can be logged against.
func (p *Program) HasContent() bool {
	return p != nil && (len(p.MenuItems) > 0 || len(p.Activities) > 0)
}

// MenuItemByID returns the menu item with the given id, if any.
func (p *Program) MenuItemByID(id int) (MenuItem, bool) {
	if p == nil {
		return MenuItem{}, false
	}
	for _, m := range p.MenuItems {
		if m.ID == id {
			return m, true
		}
	}
	return MenuItem{}, false
}

// ActivityByID returns the activity with the given id, if any.
func (p *Program) ActivityByID(id int) (Activity, bool) {
	if p == nil {
		return Activity{}, false
	}
	for _, a := range p.Activities {
		if a.ID == id {
			return a, true
		}
	}
	return Activity{}, false
}
