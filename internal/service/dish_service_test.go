package service

import (
	"context"
	"testing"

	"alcyxob/healthera/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDishService_ListDishes(t *testing.T) {
	lean := sampleProgram()
	bulk := sampleProgram()
	bulk.Name = "Bulk 60"
	bulk.MenuItems = []domain.MenuItem{{ID: 1, Name: "Rice bowl", Calories: 800, Category: domain.MealDinner}}
	svc := NewDishService(newFakeProgramRepo(lean, bulk))
	ctx := context.Background()

	all, err := svc.ListDishes(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Rice bowl", all[0].Item.Name, "programs sorted by name")
	assert.Equal(t, domain.DishID(lean.ID, 1), all[1].ID)

	breakfast, err := svc.ListDishes(ctx, "petit-dejeuner")
	require.NoError(t, err)
	require.Len(t, breakfast, 1)
	assert.Equal(t, "Oats", breakfast[0].Item.Name)
	assert.Equal(t, "Lean 30", breakfast[0].ProgramName)

	snacks, err := svc.ListDishes(ctx, "snack")
	require.NoError(t, err)
	assert.NotNil(t, snacks)
	assert.Empty(t, snacks)

	_, err = svc.ListDishes(ctx, "brunch")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestDishService_GetDish(t *testing.T) {
	lean := sampleProgram()
	svc := NewDishService(newFakeProgramRepo(lean))
	ctx := context.Background()

	dish, err := svc.GetDish(ctx, domain.DishID(lean.ID, 2))
	require.NoError(t, err)
	assert.Equal(t, "Salad", dish.Item.Name)
	assert.Equal(t, 420, dish.Item.Calories)
	assert.Equal(t, lean.ID, dish.ProgramID)

	_, err = svc.GetDish(ctx, domain.DishID(lean.ID, 99))
	assert.ErrorIs(t, err, ErrDishNotFound)

	_, err = svc.GetDish(ctx, domain.DishID(primitive.NewObjectID(), 1))
	assert.ErrorIs(t, err, ErrDishNotFound)

	_, err = svc.GetDish(ctx, "oats")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
